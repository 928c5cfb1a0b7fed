package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/novelcore/kubeclient/pkg/errors"
	"github.com/novelcore/kubeclient/pkg/memory"
	"github.com/novelcore/kubeclient/pkg/model"
)

// newTestClient serves a fresh in-memory backend over real HTTP and
// returns a network client pointed at it.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	server := httptest.NewServer(memory.NewHandler(memory.NewClient(nil)))
	t.Cleanup(server.Close)

	c, err := New(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return c
}

func namespace(name string) model.Namespace {
	return model.NewNamespace(model.NewObjectMetadata(map[string]string{
		model.MetaName: name,
	}))
}

func configMap(ns, name string) model.ConfigMap {
	return model.NewConfigMap(model.NewObjectMetadata(map[string]string{
		model.MetaName:      name,
		model.MetaNamespace: ns,
	}))
}

func TestCreateAndList(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	stored, err := c.Create(ctx, namespace("ns1"))
	require.NoError(t, err)
	assert.Equal(t, "Namespace", stored.Kind())
	assert.Equal(t, "1", stored.Metadata().ResourceVersion())
	assert.NotEmpty(t, stored.Metadata().UID())

	cm, err := c.Create(ctx, configMap("ns1", "cm1"))
	require.NoError(t, err)
	assert.Equal(t, "ConfigMap", cm.Kind())

	list, err := c.List(ctx, "ConfigMap", "ns1")
	require.NoError(t, err)
	assert.Equal(t, "ConfigMapList", list.Kind())
	require.Equal(t, 1, list.Len())
	obj, found := list.ItemByName("cm1")
	require.True(t, found)
	assert.Equal(t, "ns1", obj.Metadata().Namespace())
}

func TestCreateDuplicate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Create(ctx, namespace("ns1"))
	require.NoError(t, err)

	// The server's AlreadyExists status crosses the wire intact.
	_, err = c.Create(ctx, namespace("ns1"))
	assert.True(t, kerrors.IsAlreadyExists(err))
}

func TestReplace(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	stored, err := c.Create(ctx, configMap("ns1", "cm1"))
	require.NoError(t, err)

	replaced, err := c.Replace(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, "2", replaced.Metadata().ResourceVersion())

	// Replaying the original version conflicts.
	_, err = c.Replace(ctx, stored)
	assert.True(t, kerrors.IsConflict(err))
}

func TestDelete(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Create(ctx, namespace("ns1"))
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "Namespace", "", "ns1"))

	err = c.Delete(ctx, "Namespace", "", "ns1")
	assert.True(t, kerrors.IsNotFound(err))
}

func TestPathValidation(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	// Namespaced kinds need a namespace; cluster kinds must not have one.
	_, err := c.List(ctx, "ConfigMap", "")
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeInvalidObject))

	_, err = c.List(ctx, "Namespace", "ns1")
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeInvalidObject))

	_, err = c.List(ctx, "Deployment", "")
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeUnrecognizedKind))
}

func TestStatusPassthrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{
			"kind": "Status",
			"apiVersion": "v1",
			"status": "Failure",
			"message": "namespaces \"ghost\" not found",
			"reason": "NotFound",
			"code": 404
		}`))
	}))
	defer server.Close()

	c, err := New(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	err = c.Delete(context.Background(), "Namespace", "", "ghost")
	require.True(t, kerrors.IsNotFound(err))

	// The payload reaches the caller exactly as the server sent it.
	var se *kerrors.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, `namespaces "ghost" not found`, se.ErrStatus.Message)
	assert.Equal(t, int32(404), se.ErrStatus.Code)
}

func TestUndecodableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>proxy error</html>"))
	}))
	defer server.Close()

	c, err := New(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = c.List(context.Background(), "Namespace", "")
	assert.True(t, kerrors.IsErrorCode(err, kerrors.ErrorCodeMalformedObject))
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.List(ctx, "Namespace", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBaseURLPathPrefixPreserved(t *testing.T) {
	var seenPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		seenPath = req.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind": "NamespaceList", "apiVersion": "v1", "items": []}`))
	}))
	defer server.Close()

	// A base URL behind a proxy prefix keeps that prefix on every request.
	c, err := New(server.URL+"/k8s-proxy", WithHTTPClient(server.Client()))
	require.NoError(t, err)

	_, err = c.List(context.Background(), "Namespace", "")
	require.NoError(t, err)
	assert.Equal(t, "/k8s-proxy/api/v1/namespaces", seenPath)
}

func TestInvalidBaseURL(t *testing.T) {
	_, err := New("://nope")
	assert.Error(t, err)
}
