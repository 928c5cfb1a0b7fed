// Package client declares the capability contract satisfied by every
// backend, decoupling calling code from transport details.
package client

import (
	"context"

	"github.com/novelcore/kubeclient/pkg/model"
)

// Interface is the client capability contract. The network backend issues
// real HTTP requests; the in-memory backend mutates a versioned store. Both
// produce structurally identical domain errors, so code and tests written
// against one are valid against the other.
type Interface interface {
	// Create stores a new object and returns it with server-assigned
	// metadata (uid, resourceVersion). Fails with an AlreadyExists status
	// error when an object with the same (kind, namespace, name) exists.
	Create(ctx context.Context, obj model.Object) (model.Object, error)

	// List returns every stored object of the given kind. namespace
	// restricts the result for namespaced kinds and must be empty for
	// cluster-scoped ones.
	List(ctx context.Context, kind, namespace string) (model.ObjectCollection, error)

	// Replace overwrites an existing object. The object's resourceVersion
	// must match the stored version; a stale version fails with a Conflict
	// status error, a missing object with NotFound.
	Replace(ctx context.Context, obj model.Object) (model.Object, error)

	// Delete removes the named object, failing with NotFound if absent.
	Delete(ctx context.Context, kind, namespace, name string) error
}
