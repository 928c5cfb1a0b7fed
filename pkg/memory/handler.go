package memory

import (
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/novelcore/kubeclient/pkg/errors"
	"github.com/novelcore/kubeclient/pkg/model"
)

// Handler exposes a memory client through the same wire protocol the
// network backend speaks, so the network client can be pointed at the
// in-memory state double. Only the /api/v1 surface the client uses is
// served.
type Handler struct {
	client *Client
}

// NewHandler creates an http.Handler over client
func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

var _ http.Handler = (*Handler)(nil)

// route is one parsed request target
type route struct {
	kind      string
	namespace string
	name      string
}

func parsePath(path string) (route, error) {
	trimmed := strings.Trim(strings.TrimPrefix(path, "/api/v1"), "/")
	if trimmed == "" {
		return route{}, errors.New(errors.ErrorCodeUnrecognizedKind, "no resource in request path")
	}
	segments := strings.Split(trimmed, "/")

	if len(segments) >= 3 && segments[0] == "namespaces" {
		// /api/v1/namespaces/<ns>/<plural>[/<name>]
		kind, err := model.KindForPlural(segments[2])
		if err != nil {
			return route{}, err
		}
		r := route{kind: kind, namespace: segments[1]}
		if len(segments) > 3 {
			r.name = segments[3]
		}
		return r, nil
	}

	// /api/v1/<plural>[/<name>]
	kind, err := model.KindForPlural(segments[0])
	if err != nil {
		return route{}, err
	}
	r := route{kind: kind}
	if len(segments) > 1 {
		r.name = segments[1]
	}
	return r, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r, err := parsePath(req.URL.Path)
	if err != nil {
		writeError(w, errors.NewNotFound("Path", req.URL.Path))
		return
	}

	switch {
	case r.name == "" && req.Method == http.MethodGet:
		h.list(w, req, r)
	case r.name == "" && req.Method == http.MethodPost:
		h.create(w, req, r)
	case r.name != "" && req.Method == http.MethodGet:
		h.get(w, req, r)
	case r.name != "" && req.Method == http.MethodPut:
		h.replace(w, req, r)
	case r.name != "" && req.Method == http.MethodDelete:
		h.delete(w, req, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) list(w http.ResponseWriter, req *http.Request, r route) {
	collection, err := h.client.List(req.Context(), r.kind, r.namespace)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collection.ToRaw())
}

func (h *Handler) create(w http.ResponseWriter, req *http.Request, r route) {
	obj, err := decodeBody(req, r.kind)
	if err != nil {
		writeError(w, err)
		return
	}
	if r.namespace != "" && obj.Metadata().Namespace() == "" {
		obj = obj.WithMetadata(obj.Metadata().With(model.MetaNamespace, r.namespace))
	}
	stored, err := h.client.Create(req.Context(), obj)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored.ToRaw())
}

func (h *Handler) get(w http.ResponseWriter, req *http.Request, r route) {
	obj, err := h.client.Get(req.Context(), r.kind, r.namespace, r.name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obj.ToRaw())
}

func (h *Handler) replace(w http.ResponseWriter, req *http.Request, r route) {
	obj, err := decodeBody(req, r.kind)
	if err != nil {
		writeError(w, err)
		return
	}
	stored, err := h.client.Replace(req.Context(), obj)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored.ToRaw())
}

func (h *Handler) delete(w http.ResponseWriter, req *http.Request, r route) {
	if err := h.client.Delete(req.Context(), r.kind, r.namespace, r.name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, errors.Status{
		Kind:       "Status",
		APIVersion: model.APIVersion,
		Status:     "Success",
	})
}

func decodeBody(req *http.Request, kindHint string) (model.Object, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrorCodeMalformedObject, "cannot decode request body")
	}
	return model.FromRaw(raw, kindHint)
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps errors to wire Status payloads. Domain errors carry
// their own code and payload; anything else becomes a 400 with the
// message, which is enough for a test double.
func writeError(w http.ResponseWriter, err error) {
	var se *errors.StatusError
	if pkgerrors.As(err, &se) {
		writeJSON(w, int(se.ErrStatus.Code), se.ErrStatus)
		return
	}
	writeJSON(w, http.StatusBadRequest, errors.Status{
		Kind:       "Status",
		APIVersion: model.APIVersion,
		Status:     "Failure",
		Message:    err.Error(),
		Code:       http.StatusBadRequest,
	})
}
