// Package memory implements the client capability contract against an
// in-process, resource-versioned object store. It replicates server-side
// semantics (uid assignment, monotonic resource versions, conflict
// detection, domain errors) closely enough that integration tests written
// against it hold against a real cluster.
package memory

import (
	"sort"
	"strconv"
	"sync"

	"github.com/novelcore/kubeclient/pkg/errors"
	"github.com/novelcore/kubeclient/pkg/model"
)

// conflictMessage matches the server's optimistic-lock failure text.
const conflictMessage = "the object has been modified; please apply your changes to the latest version and try again"

type objectKey struct {
	kind      string
	namespace string
	name      string
}

func keyFor(obj model.Object) objectKey {
	return objectKey{
		kind:      obj.Kind(),
		namespace: obj.Metadata().Namespace(),
		name:      obj.Metadata().Name(),
	}
}

// Store holds versioned object state. All mutation goes through Create,
// Replace, and Delete, each of which runs its check-then-write sequence
// under one mutex; the conflict check in Replace would otherwise race.
// Resource versions come from a counter that is monotonic for the life of
// the store and never reused; the first assigned version is "1".
type Store struct {
	mu      sync.Mutex
	version uint64
	objects map[objectKey]model.Object
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{objects: make(map[objectKey]model.Object)}
}

// nextVersion increments the version counter. Caller holds s.mu.
func (s *Store) nextVersion() string {
	s.version++
	return strconv.FormatUint(s.version, 10)
}

// Create inserts obj, assigning it a fresh resource version. The store is
// left untouched when the (kind, namespace, name) key is already present.
func (s *Store) Create(obj model.Object) (model.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyFor(obj)
	if _, exists := s.objects[key]; exists {
		return nil, errors.NewAlreadyExists(key.kind, key.name)
	}
	stored := obj.WithMetadata(obj.Metadata().With(model.MetaResourceVersion, s.nextVersion()))
	s.objects[key] = stored
	return stored, nil
}

// Replace overwrites the stored object, enforcing optimistic concurrency:
// the caller's resource version must equal the stored one.
func (s *Store) Replace(obj model.Object) (model.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyFor(obj)
	current, exists := s.objects[key]
	if !exists {
		return nil, errors.NewNotFound(key.kind, key.name)
	}
	if obj.Metadata().ResourceVersion() != current.Metadata().ResourceVersion() {
		return nil, errors.NewConflict(key.kind, key.name, conflictMessage)
	}
	stored := obj.WithMetadata(obj.Metadata().With(model.MetaResourceVersion, s.nextVersion()))
	s.objects[key] = stored
	return stored, nil
}

// Delete removes the named object
func (s *Store) Delete(kind, namespace, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := objectKey{kind: kind, namespace: namespace, name: name}
	if _, exists := s.objects[key]; !exists {
		return errors.NewNotFound(kind, name)
	}
	delete(s.objects, key)
	return nil
}

// Get returns the stored object with the given key
func (s *Store) Get(kind, namespace, name string) (model.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[objectKey{kind: kind, namespace: namespace, name: name}]
	return obj, ok
}

// List returns every stored object of the given kind, restricted to
// namespace when non-empty. Storage has set semantics; the returned order
// is by (namespace, name) purely for predictability.
func (s *Store) List(kind, namespace string) []model.Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Object
	for key, obj := range s.objects {
		if key.kind != kind {
			continue
		}
		if namespace != "" && key.namespace != namespace {
			continue
		}
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Metadata(), out[j].Metadata()
		if a.Namespace() != b.Namespace() {
			return a.Namespace() < b.Namespace()
		}
		return a.Name() < b.Name()
	})
	return out
}

// Len returns the number of live objects
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
