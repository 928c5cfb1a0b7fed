// Package network implements the client capability contract over HTTP(S)
// against a real API server.
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/crossplane/function-sdk-go/logging"
	pkgerrors "github.com/pkg/errors"

	"github.com/novelcore/kubeclient/pkg/client"
	"github.com/novelcore/kubeclient/pkg/errors"
	"github.com/novelcore/kubeclient/pkg/model"
)

// Client issues requests against a base URL through an injected
// authenticated agent. It trusts the server's error semantics: non-2xx
// responses are decoded as Status payloads and surfaced verbatim, and
// transport failures propagate unwrapped. The client never retries;
// retry policy belongs to the caller.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	log        logging.Logger
}

var _ client.Interface = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient injects the authenticated agent to send requests through
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(log logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the API server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid base URL %q", baseURL)
	}
	c := &Client{
		base:       base,
		httpClient: http.DefaultClient,
		log:        logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// collectionPath returns the URL path of the collection holding objects
// of kind in namespace
func collectionPath(kind, namespace string) (string, error) {
	plural, err := model.KindPlural(kind)
	if err != nil {
		return "", err
	}
	namespaced, err := model.KindIsNamespaced(kind)
	if err != nil {
		return "", err
	}
	if namespaced {
		if namespace == "" {
			return "", errors.Newf(errors.ErrorCodeInvalidObject, "kind %q requires a namespace", kind)
		}
		return "/api/v1/namespaces/" + namespace + "/" + plural, nil
	}
	if namespace != "" {
		return "", errors.Newf(errors.ErrorCodeInvalidObject, "kind %q is not namespaced", kind)
	}
	return "/api/v1/" + plural, nil
}

func objectPath(kind, namespace, name string) (string, error) {
	collection, err := collectionPath(kind, namespace)
	if err != nil {
		return "", err
	}
	return collection + "/" + name, nil
}

// do sends one request and returns the decoded 2xx response body. Non-2xx
// bodies are decoded as Status payloads and returned as StatusErrors
// carrying the server's code and payload untouched. Cancelling ctx
// cancels the underlying request.
func (c *Client) do(ctx context.Context, method, path string, body map[string]interface{}) (map[string]interface{}, error) {
	target := c.base.JoinPath(path)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "cannot encode request body")
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "cannot build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("Sending request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors reach the caller unmodified.
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var status errors.Status
		if err := json.Unmarshal(payload, &status); err != nil || status.Status == "" {
			return nil, errors.Newf(errors.ErrorCodeMalformedObject,
				"server returned %d with undecodable body", resp.StatusCode)
		}
		return nil, errors.FromStatus(int32(resp.StatusCode), status)
	}

	if len(payload) == 0 {
		return nil, nil
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrorCodeMalformedObject, "cannot decode response body")
	}
	return raw, nil
}

// Create POSTs the object to its collection and decodes the stored object
// the server returns.
func (c *Client) Create(ctx context.Context, obj model.Object) (model.Object, error) {
	path, err := collectionPath(obj.Kind(), obj.Metadata().Namespace())
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodPost, path, obj.ToRaw())
	if err != nil {
		return nil, err
	}
	return model.FromRaw(raw, obj.Kind())
}

// List GETs the collection of the given kind.
func (c *Client) List(ctx context.Context, kind, namespace string) (model.ObjectCollection, error) {
	path, err := collectionPath(kind, namespace)
	if err != nil {
		return model.ObjectCollection{}, err
	}
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return model.ObjectCollection{}, err
	}
	return model.CollectionFromRaw(raw, kind+"List")
}

// Replace PUTs the object to its own location.
func (c *Client) Replace(ctx context.Context, obj model.Object) (model.Object, error) {
	path, err := objectPath(obj.Kind(), obj.Metadata().Namespace(), obj.Metadata().Name())
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodPut, path, obj.ToRaw())
	if err != nil {
		return nil, err
	}
	return model.FromRaw(raw, obj.Kind())
}

// Delete DELETEs the named object.
func (c *Client) Delete(ctx context.Context, kind, namespace, name string) error {
	path, err := objectPath(kind, namespace, name)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, path, nil)
	return err
}
