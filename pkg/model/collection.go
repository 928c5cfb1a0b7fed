package model

import (
	"strings"

	"github.com/novelcore/kubeclient/pkg/errors"
)

// ObjectCollection is an unordered collection of heterogeneous resource
// objects, corresponding to the Kubernetes *List kinds. The collection is
// immutable: Add returns a new collection.
type ObjectCollection struct {
	kind     string
	metadata ObjectMetadata
	items    []Object
}

// NewObjectCollection creates a collection of the given objects. kind must
// carry the "List" suffix, e.g. "ConfigMapList".
func NewObjectCollection(kind string, items ...Object) ObjectCollection {
	if !strings.HasSuffix(kind, "List") {
		kind += "List"
	}
	return ObjectCollection{kind: kind, items: append([]Object(nil), items...)}
}

// CollectionFromRaw decodes an ObjectCollection from its wire
// representation. List items omit their own kind on the wire, so the item
// kind is derived by stripping the trailing "List" from the collection's
// kind and threaded into per-item decoding as the hint.
func CollectionFromRaw(raw map[string]interface{}, hint string) (ObjectCollection, error) {
	kind := hint
	if k, ok := raw["kind"].(string); ok && k != "" {
		kind = k
	}
	if !strings.HasSuffix(kind, "List") {
		return ObjectCollection{}, errors.Newf(errors.ErrorCodeUnrecognizedKind, "%q is not a collection kind", kind)
	}
	itemKind := strings.TrimSuffix(kind, "List")

	meta, err := metadataFromRaw(raw)
	if err != nil {
		return ObjectCollection{}, err
	}

	var items []Object
	if rawItems, ok := raw["items"]; ok && rawItems != nil {
		list, ok := rawItems.([]interface{})
		if !ok {
			return ObjectCollection{}, errors.New(errors.ErrorCodeMalformedObject, "items is not an array")
		}
		items = make([]Object, 0, len(list))
		for _, entry := range list {
			rawItem, ok := entry.(map[string]interface{})
			if !ok {
				return ObjectCollection{}, errors.New(errors.ErrorCodeMalformedObject, "collection item is not an object")
			}
			obj, err := FromRaw(rawItem, itemKind)
			if err != nil {
				return ObjectCollection{}, err
			}
			items = append(items, obj)
		}
	}
	return ObjectCollection{kind: kind, metadata: meta, items: items}, nil
}

// Kind returns the collection's kind, e.g. "NamespaceList"
func (c ObjectCollection) Kind() string { return c.kind }

// Metadata returns the collection's list metadata
func (c ObjectCollection) Metadata() ObjectMetadata { return c.metadata }

// WithMetadata returns a copy with the given list metadata
func (c ObjectCollection) WithMetadata(meta ObjectMetadata) Object {
	return ObjectCollection{kind: c.kind, metadata: meta, items: c.items}
}

// Len returns the number of items
func (c ObjectCollection) Len() int { return len(c.items) }

// Items returns a copy of the collection's items
func (c ObjectCollection) Items() []Object {
	return append([]Object(nil), c.items...)
}

// ItemByName returns the first item with the given name
func (c ObjectCollection) ItemByName(name string) (Object, bool) {
	for _, obj := range c.items {
		if obj.Metadata().Name() == name {
			return obj, true
		}
	}
	return nil, false
}

// Add returns a new collection additionally containing obj
func (c ObjectCollection) Add(obj Object) ObjectCollection {
	items := make([]Object, 0, len(c.items)+1)
	items = append(items, c.items...)
	items = append(items, obj)
	return ObjectCollection{kind: c.kind, metadata: c.metadata, items: items}
}

// ToRaw converts the collection to its wire representation. Items are
// emitted without their own kind and apiVersion, matching the server's
// list encoding.
func (c ObjectCollection) ToRaw() map[string]interface{} {
	rawItems := make([]interface{}, 0, len(c.items))
	for _, obj := range c.items {
		raw := obj.ToRaw()
		delete(raw, "kind")
		delete(raw, "apiVersion")
		rawItems = append(rawItems, raw)
	}
	return map[string]interface{}{
		"kind":       c.kind,
		"apiVersion": APIVersion,
		"metadata":   c.metadata.ToRaw(),
		"items":      rawItems,
	}
}
