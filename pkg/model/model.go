// Package model holds hand-authored types for the core resources the
// client supports natively, together with the raw-JSON dispatch that turns
// wire objects into typed values.
package model

import (
	"strings"

	"github.com/novelcore/kubeclient/pkg/errors"
)

// APIVersion is the only API group/version this model covers.
const APIVersion = "v1"

// Object is a typed, immutable view of one Kubernetes resource
type Object interface {
	// Kind returns the Kubernetes kind tag, e.g. "Namespace".
	Kind() string
	// Metadata returns the object's metadata.
	Metadata() ObjectMetadata
	// WithMetadata returns a copy of the object carrying the given metadata.
	WithMetadata(meta ObjectMetadata) Object
	// ToRaw converts the object to its wire representation.
	ToRaw() map[string]interface{}
}

// kindInfo records the static facts the client needs about a kind
type kindInfo struct {
	namespaced bool
	plural     string
	load       func(raw map[string]interface{}) (Object, error)
}

var kinds = map[string]kindInfo{
	"Namespace": {
		namespaced: false,
		plural:     "namespaces",
		load: func(raw map[string]interface{}) (Object, error) {
			return NamespaceFromRaw(raw)
		},
	},
	"ConfigMap": {
		namespaced: true,
		plural:     "configmaps",
		load: func(raw map[string]interface{}) (Object, error) {
			return ConfigMapFromRaw(raw)
		},
	},
}

// SupportedKinds returns the kinds this model decodes natively
func SupportedKinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	return out
}

// KindIsNamespaced reports whether objects of the kind live in a namespace
func KindIsNamespaced(kind string) (bool, error) {
	info, ok := kinds[strings.TrimSuffix(kind, "List")]
	if !ok {
		return false, errors.Newf(errors.ErrorCodeUnrecognizedKind, "unrecognized kind %q", kind)
	}
	return info.namespaced, nil
}

// KindPlural returns the lowercase plural URL segment for the kind
func KindPlural(kind string) (string, error) {
	info, ok := kinds[kind]
	if !ok {
		return "", errors.Newf(errors.ErrorCodeUnrecognizedKind, "unrecognized kind %q", kind)
	}
	return info.plural, nil
}

// KindForPlural returns the kind served at the given plural URL segment
func KindForPlural(plural string) (string, error) {
	for kind, info := range kinds {
		if info.plural == plural {
			return kind, nil
		}
	}
	return "", errors.Newf(errors.ErrorCodeUnrecognizedKind, "no kind served at %q", plural)
}

// FromRaw decodes a raw wire object into its typed model. The kind is
// taken from the document itself, falling back to hint when the document
// omits it (list items do). Kinds ending in "List" decode as an
// ObjectCollection; anything else goes through the static kind table.
func FromRaw(raw map[string]interface{}, hint string) (Object, error) {
	kind := hint
	if k, ok := raw["kind"].(string); ok && k != "" {
		kind = k
	}
	if kind == "" {
		return nil, errors.New(errors.ErrorCodeUnrecognizedKind, "object has no kind and no hint was supplied")
	}
	if v, ok := raw["apiVersion"].(string); ok && v != "" && v != APIVersion {
		return nil, errors.Newf(errors.ErrorCodeUnrecognizedKind, "unsupported apiVersion %q for kind %q", v, kind)
	}
	if strings.HasSuffix(kind, "List") {
		c, err := CollectionFromRaw(raw, kind)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	info, ok := kinds[kind]
	if !ok {
		return nil, errors.Newf(errors.ErrorCodeUnrecognizedKind, "unrecognized kind %q", kind)
	}
	return info.load(raw)
}

// rawObject is the shared wire shape for the resources modeled here: kind,
// apiVersion, metadata, and empty placeholders for the payload sections
// this model deliberately ignores.
func rawObject(kind string, meta ObjectMetadata) map[string]interface{} {
	return map[string]interface{}{
		"kind":       kind,
		"apiVersion": APIVersion,
		"metadata":   meta.ToRaw(),
		"spec":       map[string]interface{}{},
		"status":     map[string]interface{}{},
	}
}

// Namespace models a v1 Namespace. Only metadata is represented; spec and
// status payloads are dropped on decode and emitted empty on encode.
type Namespace struct {
	metadata ObjectMetadata
}

// NewNamespace creates a Namespace with the given metadata
func NewNamespace(meta ObjectMetadata) Namespace {
	return Namespace{metadata: meta}
}

// DefaultNamespace returns the cluster's default namespace object
func DefaultNamespace() Namespace {
	return NewNamespace(NewObjectMetadata(map[string]string{MetaName: "default"}))
}

// NamespaceFromRaw decodes a Namespace from its wire representation
func NamespaceFromRaw(raw map[string]interface{}) (Namespace, error) {
	meta, err := metadataFromRaw(raw)
	if err != nil {
		return Namespace{}, err
	}
	ns := Namespace{metadata: meta}
	if err := meta.Validate(false); err != nil {
		return Namespace{}, err
	}
	return ns, nil
}

// Kind returns "Namespace"
func (n Namespace) Kind() string { return "Namespace" }

// Metadata returns the namespace's metadata
func (n Namespace) Metadata() ObjectMetadata { return n.metadata }

// WithMetadata returns a copy with the given metadata
func (n Namespace) WithMetadata(meta ObjectMetadata) Object {
	return Namespace{metadata: meta}
}

// ToRaw converts the namespace to its wire representation
func (n Namespace) ToRaw() map[string]interface{} {
	return rawObject("Namespace", n.metadata)
}

// ConfigMap models a v1 ConfigMap. As with Namespace, only metadata is
// represented.
type ConfigMap struct {
	metadata ObjectMetadata
}

// NewConfigMap creates a ConfigMap with the given metadata
func NewConfigMap(meta ObjectMetadata) ConfigMap {
	return ConfigMap{metadata: meta}
}

// ConfigMapFromRaw decodes a ConfigMap from its wire representation
func ConfigMapFromRaw(raw map[string]interface{}) (ConfigMap, error) {
	meta, err := metadataFromRaw(raw)
	if err != nil {
		return ConfigMap{}, err
	}
	cm := ConfigMap{metadata: meta}
	if err := meta.Validate(true); err != nil {
		return ConfigMap{}, err
	}
	return cm, nil
}

// Kind returns "ConfigMap"
func (c ConfigMap) Kind() string { return "ConfigMap" }

// Metadata returns the config map's metadata
func (c ConfigMap) Metadata() ObjectMetadata { return c.metadata }

// WithMetadata returns a copy with the given metadata
func (c ConfigMap) WithMetadata(meta ObjectMetadata) Object {
	return ConfigMap{metadata: meta}
}

// ToRaw converts the config map to its wire representation
func (c ConfigMap) ToRaw() map[string]interface{} {
	return rawObject("ConfigMap", c.metadata)
}
