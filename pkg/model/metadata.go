package model

import (
	"sort"

	"github.com/novelcore/kubeclient/pkg/errors"
)

// Well-known metadata keys.
const (
	MetaName            = "name"
	MetaNamespace       = "namespace"
	MetaUID             = "uid"
	MetaResourceVersion = "resourceVersion"
)

// ObjectMetadata is an immutable mapping of string keys to string values
// describing a resource object. Mutation always produces a new instance;
// the underlying map is never shared with callers.
type ObjectMetadata struct {
	items map[string]string
}

// NewObjectMetadata creates metadata from the given entries
func NewObjectMetadata(items map[string]string) ObjectMetadata {
	copied := make(map[string]string, len(items))
	for k, v := range items {
		copied[k] = v
	}
	return ObjectMetadata{items: copied}
}

// Name returns the object's name, or ""
func (m ObjectMetadata) Name() string {
	return m.items[MetaName]
}

// Namespace returns the object's namespace, or ""
func (m ObjectMetadata) Namespace() string {
	return m.items[MetaNamespace]
}

// UID returns the server-assigned unique identifier, or "" for an object
// that has not been stored yet
func (m ObjectMetadata) UID() string {
	return m.items[MetaUID]
}

// ResourceVersion returns the opaque optimistic-concurrency token, or ""
func (m ObjectMetadata) ResourceVersion() string {
	return m.items[MetaResourceVersion]
}

// Get returns an arbitrary metadata entry
func (m ObjectMetadata) Get(key string) (string, bool) {
	v, ok := m.items[key]
	return v, ok
}

// With returns new metadata with key set to value
func (m ObjectMetadata) With(key, value string) ObjectMetadata {
	copied := make(map[string]string, len(m.items)+1)
	for k, v := range m.items {
		copied[k] = v
	}
	copied[key] = value
	return ObjectMetadata{items: copied}
}

// Without returns new metadata with key removed
func (m ObjectMetadata) Without(key string) ObjectMetadata {
	copied := make(map[string]string, len(m.items))
	for k, v := range m.items {
		if k != key {
			copied[k] = v
		}
	}
	return ObjectMetadata{items: copied}
}

// Len returns the number of entries
func (m ObjectMetadata) Len() int {
	return len(m.items)
}

// Keys returns the metadata keys in sorted order
func (m ObjectMetadata) Keys() []string {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the structural invariants of the metadata. Every object
// needs a name; namespaced objects additionally need a namespace. The uid
// is assigned by the server and is only present on stored objects.
func (m ObjectMetadata) Validate(namespaced bool) error {
	if m.Name() == "" {
		return errors.New(errors.ErrorCodeInvalidObject, "metadata has no name")
	}
	if namespaced && m.Namespace() == "" {
		return errors.New(errors.ErrorCodeInvalidObject, "metadata has no namespace")
	}
	return nil
}

// ToRaw converts the metadata to its wire representation
func (m ObjectMetadata) ToRaw() map[string]interface{} {
	raw := make(map[string]interface{}, len(m.items))
	for k, v := range m.items {
		raw[k] = v
	}
	return raw
}

// metadataFromRaw extracts metadata from a raw object. Non-string values
// (labels, timestamps, and other structures this model does not cover) are
// dropped rather than rejected.
func metadataFromRaw(raw map[string]interface{}) (ObjectMetadata, error) {
	section, ok := raw["metadata"]
	if !ok {
		return ObjectMetadata{items: map[string]string{}}, nil
	}
	entries, ok := section.(map[string]interface{})
	if !ok {
		return ObjectMetadata{}, errors.New(errors.ErrorCodeMalformedObject, "metadata is not an object")
	}
	items := make(map[string]string, len(entries))
	for k, v := range entries {
		if s, ok := v.(string); ok {
			items[k] = s
		}
	}
	return ObjectMetadata{items: items}, nil
}
