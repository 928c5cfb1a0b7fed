package memory

import (
	"context"

	"github.com/novelcore/kubeclient/pkg/model"
)

// Agency intercepts store mutations, modeling admission-control style
// extension points. A hook may transform the object by returning a
// different one, or veto the operation by returning an error. Agencies are
// injected into the client explicitly rather than looked up ambiently.
type Agency interface {
	// BeforeCreate runs before an object is inserted.
	BeforeCreate(ctx context.Context, obj model.Object) (model.Object, error)
	// AfterCreate runs on the stored object before it is returned.
	AfterCreate(ctx context.Context, obj model.Object) (model.Object, error)
	// BeforeReplace runs before an object is overwritten. old is the
	// currently stored object, or nil when none exists.
	BeforeReplace(ctx context.Context, old, new model.Object) (model.Object, error)
}

// NullAgency is the no-op pass-through Agency
type NullAgency struct{}

var _ Agency = NullAgency{}

func (NullAgency) BeforeCreate(_ context.Context, obj model.Object) (model.Object, error) {
	return obj, nil
}

func (NullAgency) AfterCreate(_ context.Context, obj model.Object) (model.Object, error) {
	return obj, nil
}

func (NullAgency) BeforeReplace(_ context.Context, _, new model.Object) (model.Object, error) {
	return new, nil
}
