package memory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandlerCreateAndGet(t *testing.T) {
	h := NewHandler(NewClient(nil))

	rec := doRequest(t, h, http.MethodPost, "/api/v1/namespaces",
		`{"kind": "Namespace", "apiVersion": "v1", "metadata": {"name": "ns1"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode(t, rec)
	meta := created["metadata"].(map[string]interface{})
	assert.Equal(t, "1", meta["resourceVersion"])
	assert.NotEmpty(t, meta["uid"])

	rec = doRequest(t, h, http.MethodGet, "/api/v1/namespaces/ns1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Namespace", decode(t, rec)["kind"])
}

func TestHandlerCreateInjectsPathNamespace(t *testing.T) {
	h := NewHandler(NewClient(nil))

	// The body omits the namespace; the path supplies it.
	rec := doRequest(t, h, http.MethodPost, "/api/v1/namespaces/ns1/configmaps",
		`{"kind": "ConfigMap", "metadata": {"name": "cm1"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	meta := decode(t, rec)["metadata"].(map[string]interface{})
	assert.Equal(t, "ns1", meta["namespace"])
}

func TestHandlerDuplicateCreate(t *testing.T) {
	h := NewHandler(NewClient(nil))

	body := `{"kind": "Namespace", "metadata": {"name": "ns1"}}`
	rec := doRequest(t, h, http.MethodPost, "/api/v1/namespaces", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/namespaces", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	status := decode(t, rec)
	assert.Equal(t, "Failure", status["status"])
	assert.Equal(t, "AlreadyExists", status["reason"])
}

func TestHandlerDeleteReturnsSuccessStatus(t *testing.T) {
	h := NewHandler(NewClient(nil))

	doRequest(t, h, http.MethodPost, "/api/v1/namespaces",
		`{"kind": "Namespace", "metadata": {"name": "ns1"}}`)

	rec := doRequest(t, h, http.MethodDelete, "/api/v1/namespaces/ns1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode(t, rec)
	assert.Equal(t, "Status", status["kind"])
	assert.Equal(t, "Success", status["status"])

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/namespaces/ns1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerUnknownResource(t *testing.T) {
	h := NewHandler(NewClient(nil))

	rec := doRequest(t, h, http.MethodGet, "/api/v1/deployments", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	h := NewHandler(NewClient(nil))

	rec := doRequest(t, h, http.MethodPatch, "/api/v1/namespaces/ns1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandlerMalformedBody(t *testing.T) {
	h := NewHandler(NewClient(nil))

	rec := doRequest(t, h, http.MethodPost, "/api/v1/namespaces", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
