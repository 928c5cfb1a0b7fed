package swagger

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/novelcore/kubeclient/pkg/errors"
)

// TypeModel describes how a raw JSON value maps to and from a typed
// in-memory value for one schema node.
type TypeModel interface {
	// Coerce validates value and returns its canonical in-memory form.
	// path names the location being coerced, for error reporting.
	Coerce(path string, value interface{}) (interface{}, *errors.FieldError)
	// Serialize converts a canonical value back to its raw JSON form.
	Serialize(value interface{}) interface{}
	// Describe returns the admissible types, for error messages.
	Describe() string
}

type typeFormat struct {
	kind   string
	format string
}

// basicTypes maps the simple Swagger (type, format) pairs to their models.
// Kubernetes uses int32/int64 to mean unsigned integers of that width, so
// the ranges here follow Kubernetes rather than the Swagger reading.
var basicTypes = map[typeFormat]TypeModel{
	{kind: "boolean"}:                          &boolModel{},
	{kind: "integer", format: "int32"}:         &integerModel{rng: rangeFromUnsignedBits(32)},
	{kind: "integer", format: "int64"}:         &integerModel{rng: rangeFromUnsignedBits(64)},
	{kind: "string"}:                           &stringModel{},
	{kind: "string", format: "byte"}:           &bytesModel{},
	{kind: "string", format: "date-time"}:      &timestampModel{},
	{kind: "string", format: "int-or-string"}:  &intOrStringModel{},
}

func typeError(path, expected string, value interface{}) *errors.FieldError {
	return &errors.FieldError{
		Field:    path,
		Expected: expected,
		Actual:   fmt.Sprintf("%T", value),
		Value:    value,
	}
}

// IntegerRange is an inclusive range invariant on an integer field
type IntegerRange struct {
	Min uint64
	Max uint64
}

func rangeFromUnsignedBits(n uint) IntegerRange {
	if n >= 64 {
		return IntegerRange{Min: 0, Max: math.MaxUint64}
	}
	return IntegerRange{Min: 0, Max: (uint64(1) << n) - 1}
}

func (r IntegerRange) contains(v uint64) bool {
	return v >= r.Min && v <= r.Max
}

func (r IntegerRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

type boolModel struct{}

func (m *boolModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	b, ok := value.(bool)
	if !ok {
		return nil, typeError(path, m.Describe(), value)
	}
	return b, nil
}

func (m *boolModel) Serialize(value interface{}) interface{} { return value }

func (m *boolModel) Describe() string { return "boolean" }

// integerModel canonicalizes to uint64. JSON numbers arrive as float64 or
// json.Number depending on the decoder; already-typed Go integers are
// accepted too.
type integerModel struct {
	rng IntegerRange
}

func (m *integerModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	var v uint64
	switch n := value.(type) {
	case uint64:
		v = n
	case uint:
		v = uint64(n)
	case uint32:
		v = uint64(n)
	case int:
		if n < 0 {
			return nil, m.rangeError(path, value)
		}
		v = uint64(n)
	case int32:
		if n < 0 {
			return nil, m.rangeError(path, value)
		}
		v = uint64(n)
	case int64:
		if n < 0 {
			return nil, m.rangeError(path, value)
		}
		v = uint64(n)
	case float64:
		if n < 0 || n != math.Trunc(n) {
			return nil, m.rangeError(path, value)
		}
		v = uint64(n)
	case json.Number:
		parsed, err := parseUnsigned(string(n))
		if err != nil {
			return nil, m.rangeError(path, value)
		}
		v = parsed
	default:
		return nil, typeError(path, m.Describe(), value)
	}
	if !m.rng.contains(v) {
		return nil, m.rangeError(path, value)
	}
	return v, nil
}

func (m *integerModel) rangeError(path string, value interface{}) *errors.FieldError {
	fe := typeError(path, m.Describe(), value)
	fe.Detail = fmt.Sprintf("%v out of required range %s", value, m.rng)
	return fe
}

func parseUnsigned(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func (m *integerModel) Serialize(value interface{}) interface{} { return value }

func (m *integerModel) Describe() string {
	return fmt.Sprintf("integer in %s", m.rng)
}

type stringModel struct{}

func (m *stringModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	s, ok := value.(string)
	if !ok {
		return nil, typeError(path, m.Describe(), value)
	}
	return s, nil
}

func (m *stringModel) Serialize(value interface{}) interface{} { return value }

func (m *stringModel) Describe() string { return "string" }

// bytesModel canonicalizes to []byte, accepting base64 strings off the
// wire.
type bytesModel struct{}

func (m *bytesModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			fe := typeError(path, m.Describe(), value)
			fe.Detail = fmt.Sprintf("invalid base64: %v", err)
			return nil, fe
		}
		return decoded, nil
	default:
		return nil, typeError(path, m.Describe(), value)
	}
}

func (m *bytesModel) Serialize(value interface{}) interface{} {
	return base64.StdEncoding.EncodeToString(value.([]byte))
}

func (m *bytesModel) Describe() string { return "base64 string" }

// timestampModel canonicalizes to time.Time, accepting ISO-8601 strings.
// Serialization always emits ISO-8601.
type timestampModel struct{}

func (m *timestampModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			fe := typeError(path, m.Describe(), value)
			fe.Detail = fmt.Sprintf("cannot parse timestamp: %v", err)
			return nil, fe
		}
		return t, nil
	default:
		return nil, typeError(path, m.Describe(), value)
	}
}

func (m *timestampModel) Serialize(value interface{}) interface{} {
	return value.(time.Time).UTC().Format(time.RFC3339)
}

func (m *timestampModel) Describe() string { return "RFC3339 timestamp" }

// intOrStringModel is the union type Kubernetes uses for fields like
// targetPort. Strings pass through; integers canonicalize to int64.
type intOrStringModel struct{}

func (m *intOrStringModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, typeError(path, m.Describe(), value)
		}
		return int64(v), nil
	default:
		return nil, typeError(path, m.Describe(), value)
	}
}

func (m *intOrStringModel) Serialize(value interface{}) interface{} { return value }

func (m *intOrStringModel) Describe() string { return "string or integer" }

// arrayModel requires an ordered sequence whose every element satisfies
// the element model. Canonical form is []interface{} of canonical
// elements.
type arrayModel struct {
	element TypeModel
}

func (m *arrayModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	list, ok := value.([]interface{})
	if !ok {
		return nil, typeError(path, m.Describe(), value)
	}
	out := make([]interface{}, len(list))
	for i, elem := range list {
		coerced, fe := m.element.Coerce(fmt.Sprintf("%s[%d]", path, i), elem)
		if fe != nil {
			return nil, fe
		}
		out[i] = coerced
	}
	return out, nil
}

func (m *arrayModel) Serialize(value interface{}) interface{} {
	list := value.([]interface{})
	out := make([]interface{}, len(list))
	for i, elem := range list {
		out[i] = m.element.Serialize(elem)
	}
	return out
}

func (m *arrayModel) Describe() string {
	return fmt.Sprintf("array of %s", m.element.Describe())
}

// mappingModel requires a mapping with string keys and values satisfying
// the value model.
type mappingModel struct {
	value TypeModel
}

func (m *mappingModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	entries, ok := value.(map[string]interface{})
	if !ok {
		return nil, typeError(path, m.Describe(), value)
	}
	out := make(map[string]interface{}, len(entries))
	for k, v := range entries {
		coerced, fe := m.value.Coerce(fmt.Sprintf("%s[%q]", path, k), v)
		if fe != nil {
			return nil, fe
		}
		out[k] = coerced
	}
	return out, nil
}

func (m *mappingModel) Serialize(value interface{}) interface{} {
	entries := value.(map[string]interface{})
	out := make(map[string]interface{}, len(entries))
	for k, v := range entries {
		out[k] = m.value.Serialize(v)
	}
	return out
}

func (m *mappingModel) Describe() string {
	return fmt.Sprintf("map of string to %s", m.value.Describe())
}

// recordModel types a field as another generated record type. It accepts
// an already-constructed *Record of the right type or a raw object, which
// is put through the record type's validating constructor.
type recordModel struct {
	rt *RecordType
}

func (m *recordModel) Coerce(path string, value interface{}) (interface{}, *errors.FieldError) {
	switch v := value.(type) {
	case *Record:
		if v.rt != m.rt {
			return nil, typeError(path, m.Describe(), value)
		}
		return v, nil
	case map[string]interface{}:
		rec, err := m.rt.New(v)
		if err != nil {
			fe := typeError(path, m.Describe(), value)
			fe.Detail = err.Error()
			fe.Value = nil
			return nil, fe
		}
		return rec, nil
	default:
		return nil, typeError(path, m.Describe(), value)
	}
}

func (m *recordModel) Serialize(value interface{}) interface{} {
	return value.(*Record).ToRaw()
}

func (m *recordModel) Describe() string { return m.rt.Name() }
