package memory

import (
	"context"
	"strings"

	"github.com/crossplane/function-sdk-go/logging"
	"github.com/google/uuid"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/novelcore/kubeclient/pkg/client"
	"github.com/novelcore/kubeclient/pkg/errors"
	"github.com/novelcore/kubeclient/pkg/model"
)

// Client implements the capability contract against a Store.
type Client struct {
	store  *Store
	agency Agency
	log    logging.Logger
}

var _ client.Interface = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithAgency injects the mutation-intercepting strategy
func WithAgency(a Agency) Option {
	return func(c *Client) { c.agency = a }
}

// WithLogger sets the logger
func WithLogger(log logging.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client over store. Clients created over the same
// store share state. A nil store gets a fresh one.
func NewClient(store *Store, opts ...Option) *Client {
	if store == nil {
		store = NewStore()
	}
	c := &Client{
		store:  store,
		agency: NullAgency{},
		log:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the client's backing store
func (c *Client) Store() *Store { return c.store }

func validateName(name string) error {
	if msgs := validation.IsDNS1123Subdomain(name); len(msgs) > 0 {
		return errors.Newf(errors.ErrorCodeInvalidName, "invalid name %q: %s", name, strings.Join(msgs, ", "))
	}
	return nil
}

// Create stores a new object, assigning a uid when the caller supplied
// none and a fresh resource version.
func (c *Client) Create(ctx context.Context, obj model.Object) (model.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	namespaced, err := model.KindIsNamespaced(obj.Kind())
	if err != nil {
		return nil, err
	}
	if err := obj.Metadata().Validate(namespaced); err != nil {
		return nil, err
	}
	if err := validateName(obj.Metadata().Name()); err != nil {
		return nil, err
	}

	obj, err = c.agency.BeforeCreate(ctx, obj)
	if err != nil {
		return nil, err
	}
	if obj.Metadata().UID() == "" {
		obj = obj.WithMetadata(obj.Metadata().With(model.MetaUID, uuid.NewString()))
	}
	stored, err := c.store.Create(obj)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Created object", "kind", stored.Kind(),
		"namespace", stored.Metadata().Namespace(), "name", stored.Metadata().Name(),
		"resourceVersion", stored.Metadata().ResourceVersion())
	return c.agency.AfterCreate(ctx, stored)
}

// List returns every stored object of kind, restricted to namespace for
// namespaced kinds.
func (c *Client) List(ctx context.Context, kind, namespace string) (model.ObjectCollection, error) {
	if err := ctx.Err(); err != nil {
		return model.ObjectCollection{}, err
	}
	if err := validateScope(kind, namespace); err != nil {
		return model.ObjectCollection{}, err
	}
	items := c.store.List(kind, namespace)
	return model.NewObjectCollection(kind+"List", items...), nil
}

// Replace overwrites an existing object under optimistic concurrency.
func (c *Client) Replace(ctx context.Context, obj model.Object) (model.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	namespaced, err := model.KindIsNamespaced(obj.Kind())
	if err != nil {
		return nil, err
	}
	if err := obj.Metadata().Validate(namespaced); err != nil {
		return nil, err
	}

	old, _ := c.store.Get(obj.Kind(), obj.Metadata().Namespace(), obj.Metadata().Name())
	obj, err = c.agency.BeforeReplace(ctx, old, obj)
	if err != nil {
		return nil, err
	}
	stored, err := c.store.Replace(obj)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Replaced object", "kind", stored.Kind(),
		"namespace", stored.Metadata().Namespace(), "name", stored.Metadata().Name(),
		"resourceVersion", stored.Metadata().ResourceVersion())
	return stored, nil
}

// validateScope rejects a namespace supplied for a cluster-scoped kind,
// matching the path validation of the network backend.
func validateScope(kind, namespace string) error {
	namespaced, err := model.KindIsNamespaced(kind)
	if err != nil {
		return err
	}
	if !namespaced && namespace != "" {
		return errors.Newf(errors.ErrorCodeInvalidObject, "kind %q is not namespaced", kind)
	}
	return nil
}

// Delete removes the named object.
func (c *Client) Delete(ctx context.Context, kind, namespace, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateScope(kind, namespace); err != nil {
		return err
	}
	return c.store.Delete(kind, namespace, name)
}

// Get returns the stored object, or a NotFound status error. Get is not
// part of the capability contract but the HTTP handler needs it.
func (c *Client) Get(ctx context.Context, kind, namespace, name string) (model.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateScope(kind, namespace); err != nil {
		return nil, err
	}
	obj, ok := c.store.Get(kind, namespace, name)
	if !ok {
		return nil, errors.NewNotFound(kind, name)
	}
	return obj, nil
}
