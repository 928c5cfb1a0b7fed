package swagger

import (
	"fmt"
	"reflect"

	"github.com/novelcore/kubeclient/pkg/errors"
)

// Field describes one property of a generated record type
type Field struct {
	Name        string
	Description string
	Required    bool
	Default     interface{}
	Model       TypeModel
}

// RecordType is a named composite type generated from a class-like
// definition, with one field per schema property. Its identity is the
// definition name; the registry guarantees at most one instance per name.
type RecordType struct {
	name   string
	doc    string
	fields map[string]Field
	order  []string
}

// Name returns the definition name the type was generated from
func (rt *RecordType) Name() string { return rt.name }

// Doc returns the definition's description
func (rt *RecordType) Doc() string { return rt.doc }

// Fields returns the type's field descriptors in sorted order
func (rt *RecordType) Fields() []Field {
	out := make([]Field, 0, len(rt.order))
	for _, name := range rt.order {
		out = append(out, rt.fields[name])
	}
	return out
}

// Field returns the descriptor for the named field
func (rt *RecordType) Field(name string) (Field, bool) {
	f, ok := rt.fields[name]
	return f, ok
}

// New constructs a record from a raw object, validating every field
// invariant atomically: either all fields are admissible and a record is
// returned, or a single ValidationError names every offending field.
// Absent optional fields take their schema default, or nil. The constant
// kind and apiVersion keys are tolerated and dropped when the type does
// not declare them; any other unknown key is rejected.
func (rt *RecordType) New(raw map[string]interface{}) (*Record, error) {
	values := make(map[string]interface{}, len(rt.order))
	var fieldErrs []errors.FieldError

	for _, name := range rt.order {
		f := rt.fields[name]
		value, present := raw[name]
		if !present || value == nil {
			switch {
			case f.Required:
				fieldErrs = append(fieldErrs, errors.FieldError{
					Field:    name,
					Expected: f.Model.Describe(),
					Missing:  true,
				})
			case f.Default != nil:
				coerced, fe := f.Model.Coerce(name, f.Default)
				if fe != nil {
					fieldErrs = append(fieldErrs, *fe)
					continue
				}
				values[name] = coerced
			default:
				values[name] = nil
			}
			continue
		}
		coerced, fe := f.Model.Coerce(name, value)
		if fe != nil {
			fieldErrs = append(fieldErrs, *fe)
			continue
		}
		values[name] = coerced
	}

	for key := range raw {
		if _, ok := rt.fields[key]; ok {
			continue
		}
		if key == "kind" || key == "apiVersion" {
			continue
		}
		fieldErrs = append(fieldErrs, errors.FieldError{
			Field:    key,
			Expected: "no such field",
			Actual:   fmt.Sprintf("%T", raw[key]),
			Value:    raw[key],
		})
	}

	if len(fieldErrs) > 0 {
		return nil, errors.NewValidationError(rt.name, fieldErrs...)
	}
	return &Record{rt: rt, values: values}, nil
}

// Record is an immutable instance of a generated record type
type Record struct {
	rt     *RecordType
	values map[string]interface{}
}

// Type returns the record's type
func (r *Record) Type() *RecordType { return r.rt }

// Get returns the canonical value of the named field. The second return
// is false when the type has no such field.
func (r *Record) Get(name string) (interface{}, bool) {
	if _, ok := r.rt.fields[name]; !ok {
		return nil, false
	}
	return r.values[name], true
}

// With returns a new record with the named field replaced, validating the
// new value against the field's model
func (r *Record) With(name string, value interface{}) (*Record, error) {
	f, ok := r.rt.fields[name]
	if !ok {
		return nil, errors.NewValidationError(r.rt.name, errors.FieldError{
			Field:    name,
			Expected: "no such field",
		})
	}
	coerced, fe := f.Model.Coerce(name, value)
	if fe != nil {
		return nil, errors.NewValidationError(r.rt.name, *fe)
	}
	values := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		values[k] = v
	}
	values[name] = coerced
	return &Record{rt: r.rt, values: values}, nil
}

// ToRaw converts the record back to a raw object. Optional fields holding
// nil are omitted.
func (r *Record) ToRaw() map[string]interface{} {
	raw := make(map[string]interface{}, len(r.values))
	for _, name := range r.rt.order {
		value := r.values[name]
		if value == nil {
			continue
		}
		raw[name] = r.rt.fields[name].Model.Serialize(value)
	}
	return raw
}

// Equal reports whether two records of the same type serialize
// identically
func (r *Record) Equal(other *Record) bool {
	if other == nil || r.rt != other.rt {
		return false
	}
	return reflect.DeepEqual(r.ToRaw(), other.ToRaw())
}
