// Package swagger derives record types from the definitions of a Swagger
// specification document. Generated types enforce the constraints the
// specification declares and round-trip losslessly to and from raw JSON
// objects.
package swagger

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/crossplane/function-sdk-go/logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/kube-openapi/pkg/validation/spec"
	"sigs.k8s.io/yaml"

	kerrors "github.com/novelcore/kubeclient/pkg/errors"
)

const definitionRefPrefix = "#/definitions/"

// NoSuchDefinitionError reports a definition name absent from the
// specification.
type NoSuchDefinitionError struct {
	Name string
}

func (e *NoSuchDefinitionError) Error() string {
	return fmt.Sprintf("no definition named %q in the specification", e.Name)
}

// NotClassLikeError reports an attempt to build a record type from a
// definition that has no properties (a plain scalar or array alias, for
// example). The raw schema node is carried so callers can fall back to a
// plain type model for it.
type NotClassLikeError struct {
	Name   string
	Schema *spec.Schema
}

func (e *NotClassLikeError) Error() string {
	return fmt.Sprintf("definition %q is not class-like", e.Name)
}

// Specification is an immutable view over one parsed Swagger document,
// plus the registry of record types generated from its definitions. At
// most one record type exists per definition name per Specification.
type Specification struct {
	doc *spec.Swagger
	log logging.Logger

	mu        sync.Mutex
	records   map[string]*RecordType
	resolving map[string]*RecordType
}

// FromDocument parses a specification from JSON or YAML bytes
func FromDocument(data []byte, log logging.Logger) (*Specification, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	doc := &spec.Swagger{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, kerrors.Wrap(err, kerrors.ErrorCodeMalformedDocument, "cannot parse specification document")
	}
	return &Specification{
		doc:       doc,
		log:       log,
		records:   make(map[string]*RecordType),
		resolving: make(map[string]*RecordType),
	}, nil
}

// FromPath loads a specification from a file
func FromPath(path string, log logging.Logger) (*Specification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read specification from %s", path)
	}
	return FromDocument(data, log)
}

// Definitions returns the names of every definition, sorted
func (s *Specification) Definitions() []string {
	names := make([]string, 0, len(s.doc.Definitions))
	for name := range s.doc.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the raw schema node for the named definition
func (s *Specification) Definition(name string) (*spec.Schema, error) {
	def, ok := s.doc.Definitions[name]
	if !ok {
		return nil, &NoSuchDefinitionError{Name: name}
	}
	return &def, nil
}

// RecordTypeFor returns the record type generated for the named
// definition. Generation is lazy and memoized: two calls for the same name
// return the identical *RecordType. Definitions without properties fail
// with NotClassLikeError; an unrecognized (type, format) pair anywhere in
// the definition's fields aborts generation.
func (s *Specification) RecordTypeFor(name string) (*RecordType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordTypeLocked(name)
}

// recordTypeLocked builds (or fetches) a record type. The caller holds
// s.mu. The placeholder is written to s.resolving before any field is
// constructed, so self-referential and mutually-referential definitions
// resolve to the forward-declared handle instead of recursing forever.
func (s *Specification) recordTypeLocked(name string) (*RecordType, error) {
	var visited map[string]bool
	for {
		if rt, ok := s.records[name]; ok {
			return rt, nil
		}
		if rt, ok := s.resolving[name]; ok {
			return rt, nil
		}
		def, ok := s.doc.Definitions[name]
		if !ok {
			return nil, &NoSuchDefinitionError{Name: name}
		}
		if ref := def.Ref.String(); ref != "" {
			// An alias definition. Restart with the target, refusing to
			// revisit an alias already followed in this walk.
			if visited[name] {
				return nil, kerrors.Newf(kerrors.ErrorCodeMalformedSchema,
					"alias definition %q refers back to itself", name)
			}
			if visited == nil {
				visited = make(map[string]bool)
			}
			visited[name] = true
			target, err := definitionNameFromRef(ref)
			if err != nil {
				return nil, err
			}
			name = target
			continue
		}
		if def.Properties == nil {
			node := def
			return nil, &NotClassLikeError{Name: name, Schema: &node}
		}

		rt := &RecordType{name: name, doc: def.Description}
		s.resolving[name] = rt
		fields, order, err := s.fieldsFor(&def)
		delete(s.resolving, name)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot generate record type for %q", name)
		}
		rt.fields = fields
		rt.order = order
		s.records[name] = rt
		s.log.Debug("Generated record type", "definition", name, "fields", len(order))
		return rt, nil
	}
}

// fieldsFor builds one field descriptor per property of a class-like
// definition. Property order is sorted for determinism.
func (s *Specification) fieldsFor(def *spec.Schema) (map[string]Field, []string, error) {
	required := make(map[string]bool, len(def.Required))
	for _, name := range def.Required {
		required[name] = true
	}

	order := make([]string, 0, len(def.Properties))
	for name := range def.Properties {
		order = append(order, name)
	}
	sort.Strings(order)

	fields := make(map[string]Field, len(order))
	for _, name := range order {
		prop := def.Properties[name]
		tm, err := s.typeModelFor(&prop)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "property %q", name)
		}
		fields[name] = Field{
			Name:        name,
			Description: prop.Description,
			Required:    required[name],
			Default:     prop.Default,
			Model:       tm,
		}
	}
	return fields, order, nil
}

// typeModelFor interprets one schema node as a type model, dispatching on
// the node's shape: arrays recurse into the element schema, object maps
// into the value schema, references resolve through the registry, and
// anything else must match the static basic-type table.
func (s *Specification) typeModelFor(node *spec.Schema) (TypeModel, error) {
	if node.Type.Contains("array") {
		if node.Items == nil || node.Items.Schema == nil {
			return nil, kerrors.New(kerrors.ErrorCodeMalformedSchema, "array schema has no items")
		}
		elem, err := s.typeModelFor(node.Items.Schema)
		if err != nil {
			return nil, err
		}
		return &arrayModel{element: elem}, nil
	}

	if node.Type.Contains("object") {
		if node.AdditionalProperties == nil || node.AdditionalProperties.Schema == nil {
			return nil, kerrors.New(kerrors.ErrorCodeMalformedSchema, "object schema has no additionalProperties")
		}
		value, err := s.typeModelFor(node.AdditionalProperties.Schema)
		if err != nil {
			return nil, err
		}
		return &mappingModel{value: value}, nil
	}

	if ref := node.Ref.String(); ref != "" {
		target, err := definitionNameFromRef(ref)
		if err != nil {
			return nil, err
		}
		rt, err := s.recordTypeLocked(target)
		if err != nil {
			var notClass *NotClassLikeError
			if errors.As(err, &notClass) {
				// The target is a plain scalar or array alias. Model the
				// referenced schema directly.
				return s.typeModelFor(notClass.Schema)
			}
			return nil, err
		}
		return &recordModel{rt: rt}, nil
	}

	if len(node.Type) == 0 {
		return nil, kerrors.New(kerrors.ErrorCodeMalformedSchema, "schema has neither type nor $ref")
	}
	key := typeFormat{kind: node.Type[0], format: node.Format}
	tm, ok := basicTypes[key]
	if !ok {
		// A hole in the generator's rules or a malformed specification.
		// Either way generation must abort rather than silently degrade.
		return nil, kerrors.Newf(kerrors.ErrorCodeUnrecognizedType,
			"no type model for type %q format %q", key.kind, key.format)
	}
	return tm, nil
}

func definitionNameFromRef(ref string) (string, error) {
	if !strings.HasPrefix(ref, definitionRefPrefix) {
		return "", kerrors.Newf(kerrors.ErrorCodeMalformedSchema, "unsupported $ref %q", ref)
	}
	return strings.TrimPrefix(ref, definitionRefPrefix), nil
}

// Prime generates record types for many definitions concurrently. Targets
// that turn out not to be class-like are skipped; any other generation
// failure aborts the whole warm-up.
func (s *Specification) Prime(ctx context.Context, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.RecordTypeFor(name)
			var notClass *NotClassLikeError
			if errors.As(err, &notClass) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// Versioned looks up definitions by bare kind name, qualifying it with
// each version prefix in turn. Kubernetes specifications name definitions
// like "v1.Namespace"; Versioned lets callers ask for just "Namespace".
type Versioned struct {
	spec     *Specification
	versions []string
}

// Versioned returns a version-qualified view of the specification
func (s *Specification) Versioned(versions ...string) *Versioned {
	return &Versioned{spec: s, versions: versions}
}

// RecordTypeFor resolves kind against each version prefix in order
func (v *Versioned) RecordTypeFor(kind string) (*RecordType, error) {
	for _, version := range v.versions {
		rt, err := v.spec.RecordTypeFor(version + "." + kind)
		if err != nil {
			var missing *NoSuchDefinitionError
			if errors.As(err, &missing) {
				continue
			}
			return nil, err
		}
		return rt, nil
	}
	return nil, &NoSuchDefinitionError{Name: kind}
}
