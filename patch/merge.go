package patch

import (
	"errors"
	"fmt"
	"maps"

	"github.com/palewire/datawrapper-mcp/schema"
)

// Constructor validates field maps into values of T and dumps them back.
// schema.Validator implements it.
type Constructor[T any] interface {
	Construct(fields map[string]any) (T, error)
	Describe() *schema.Description
	Dump(value T, exclude ...string) (map[string]any, error)
}

// Policy names the fields a patch may never change.
type Policy struct {
	// Identity is assigned by the remote store at creation.
	Identity string
	// Discriminator is the kind tag. The schema requires it, a patch
	// cannot change it.
	Discriminator string
	// Tabular is written through a separate data path.
	Tabular string
	// Immutable lists further fields kept from the current value.
	Immutable []string
	// SchemaHint tells the caller where to look up valid fields.
	SchemaHint string
}

// Result is a successful merge.
type Result[T any] struct {
	Validated T
	// Writable holds the attributes to write back onto the remote object.
	Writable map[string]any
}

// Merger applies patches for one configuration kind. It holds no mutable
// state and is safe for concurrent use.
type Merger[T any] struct {
	c       Constructor[T]
	aliases *AliasTable
	policy  Policy
	fixed   map[string]bool
}

// NewMerger builds the alias table once from c's description.
func NewMerger[T any](c Constructor[T], policy Policy) *Merger[T] {
	fixed := map[string]bool{}
	if policy.Identity != "" {
		fixed[policy.Identity] = true
	}
	for _, name := range policy.Immutable {
		fixed[name] = true
	}
	return &Merger[T]{
		c:       c,
		aliases: NewAliasTable(c.Describe()),
		policy:  policy,
		fixed:   fixed,
	}
}

// Aliases returns the merger's alias table.
func (m *Merger[T]) Aliases() *AliasTable { return m.aliases }

// Describe returns the description of the merged kind.
func (m *Merger[T]) Describe() *schema.Description { return m.c.Describe() }

// Policy returns the field policy the merger enforces.
func (m *Merger[T]) Policy() Policy { return m.policy }

// MergeAndValidate applies patch over current and validates the result.
// Patch values for the identity and immutable fields are dropped and the
// discriminator always keeps its current value.
func (m *Merger[T]) MergeAndValidate(current T, patch map[string]any) (*Result[T], error) {
	resolved := m.aliases.ResolveAll(patch)

	currentRaw, err := m.c.Dump(current)
	if err != nil {
		return nil, err
	}
	candidate := maps.Clone(currentRaw)
	delete(candidate, m.policy.Discriminator)
	for name := range m.fixed {
		delete(candidate, name)
	}

	for key, value := range resolved {
		if m.fixed[key] || key == m.policy.Discriminator {
			continue
		}
		candidate[key] = value
	}
	for name := range m.fixed {
		if value, ok := currentRaw[name]; ok {
			candidate[name] = value
		}
	}
	if value, ok := currentRaw[m.policy.Discriminator]; ok {
		candidate[m.policy.Discriminator] = value
	}

	validated, err := m.c.Construct(candidate)
	if err != nil {
		return nil, m.invalid(err)
	}
	writable, err := m.c.Dump(validated, m.excluded()...)
	if err != nil {
		return nil, err
	}
	return &Result[T]{Validated: validated, Writable: writable}, nil
}

// Construct validates a new value of the merger's kind. Aliases are
// resolved, identity and immutable fields are dropped and the discriminator
// is set to the kind.
func (m *Merger[T]) Construct(fields map[string]any) (T, error) {
	candidate := m.aliases.ResolveAll(fields)
	for name := range m.fixed {
		delete(candidate, name)
	}
	candidate[m.policy.Discriminator] = m.c.Describe().Kind
	value, err := m.c.Construct(candidate)
	if err != nil {
		var zero T
		return zero, m.invalid(err)
	}
	return value, nil
}

// Load validates a value read back from the remote store, identity included.
func (m *Merger[T]) Load(fields map[string]any) (T, error) {
	value, err := m.c.Construct(m.aliases.ResolveAll(fields))
	if err != nil {
		var zero T
		return zero, m.invalid(err)
	}
	return value, nil
}

// Writable dumps value without the fields a write-back must not touch.
func (m *Merger[T]) Writable(value T) (map[string]any, error) {
	return m.c.Dump(value, m.excluded()...)
}

func (m *Merger[T]) excluded() []string {
	out := []string{m.policy.Identity, m.policy.Discriminator, m.policy.Tabular}
	return append(out, m.policy.Immutable...)
}

func (m *Merger[T]) invalid(err error) *ValidationError {
	var fe schema.FieldErrors
	if !errors.As(err, &fe) {
		fe = schema.FieldErrors{{Field: "(root)", Message: err.Error()}}
	}
	hint := m.policy.SchemaHint
	if hint == "" {
		hint = fmt.Sprintf("Check the schema of %q for the accepted fields.", m.c.Describe().Kind)
	}
	return &ValidationError{FieldErrors: fe, SchemaHint: hint, Err: err}
}
