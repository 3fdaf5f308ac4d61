package resources

import (
	"fmt"

	"github.com/diwise/resource-serializer/pkg/serialization/include"
	"github.com/stretchr/objx"
)

type Macro int

const (
	HasOneMacro Macro = iota
	HasManyMacro
	BelongsToMacro
)

func (m Macro) String() string {
	switch m {
	case HasManyMacro:
		return "has_many"
	case BelongsToMacro:
		return "belongs_to"
	default:
		return "has_one"
	}
}

type Cardinality int

const (
	ToOne Cardinality = iota
	ToMany
)

func (m Macro) Cardinality() Cardinality {
	if m == HasManyMacro {
		return ToMany
	}
	return ToOne
}

// Relationship is a declared association between a descriptor and the
// objects it refers to
type Relationship struct {
	Name  string
	Macro Macro

	key        string
	condition  Predicate
	unless     bool
	include    include.Tree
	serializer *Descriptor
	virtual    bool
	accessor   AccessorFunc
	options    objx.Map
}

type RelationshipOption func(r *Relationship) error

func newRelationship(name string, macro Macro, options ...RelationshipOption) (Relationship, error) {
	if name == "" {
		return Relationship{}, fmt.Errorf("a relationship requires a name")
	}

	r := Relationship{
		Name:      name,
		Macro:     macro,
		condition: Always(),
		include:   include.Tree{},
		options:   objx.Map{},
	}

	for _, option := range options {
		if err := option(&r); err != nil {
			return Relationship{}, err
		}
	}

	return r, nil
}

func (r Relationship) Cardinality() Cardinality {
	return r.Macro.Cardinality()
}

// Key is the output field name
func (r Relationship) Key() string {
	if r.key != "" {
		return r.key
	}
	return r.Name
}

// DefaultInclude is the inclusion tree declared on the relationship itself
func (r Relationship) DefaultInclude() include.Tree {
	return r.include.Clone()
}

func (r Relationship) Serializer() (*Descriptor, bool) {
	return r.serializer, r.serializer != nil
}

func (r Relationship) IsVirtual() bool {
	return r.virtual
}

// Options returns a copy of the static options declared on the relationship
func (r Relationship) Options() objx.Map {
	return r.options.Copy()
}

// Visible evaluates the relationship condition against e
func (r Relationship) Visible(e Entity) (bool, error) {
	ok, err := r.condition.Evaluate(e)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate condition of relationship %s: %w", r.Name, err)
	}

	if r.unless {
		return !ok, nil
	}

	return ok, nil
}

func Key(key string) RelationshipOption {
	return func(r *Relationship) error {
		r.key = key
		return nil
	}
}

// Include declares the default inclusion below the relationship. It accepts
// the same forms as include.Parse.
func Include(directive any) RelationshipOption {
	return func(r *Relationship) error {
		r.include = r.include.Merge(include.Parse(directive))
		return nil
	}
}

func Serializer(d *Descriptor) RelationshipOption {
	return func(r *Relationship) error {
		if d == nil {
			return fmt.Errorf("relationship \"%s\" declared with a nil serializer", r.Name)
		}
		r.serializer = d
		return nil
	}
}

// Virtual marks the accessor result as pre serialized
func Virtual() RelationshipOption {
	return func(r *Relationship) error {
		r.virtual = true
		return nil
	}
}

func Accessor(fn AccessorFunc) RelationshipOption {
	return func(r *Relationship) error {
		if fn == nil {
			return fmt.Errorf("relationship \"%s\" declared with a nil accessor", r.Name)
		}
		r.accessor = fn
		return nil
	}
}

// If makes the relationship visible only when cond holds. Supported forms are
// a Predicate, a check name, func(Entity) bool, func(any) bool and func() bool.
func If(cond any) RelationshipOption {
	return condition("if", cond, false)
}

// Unless is the negation of If
func Unless(cond any) RelationshipOption {
	return condition("unless", cond, true)
}

func condition(option string, cond any, negate bool) RelationshipOption {
	return func(r *Relationship) error {
		p, err := predicateFrom(r.Name, option, cond)
		if err != nil {
			return err
		}
		r.condition = p
		r.unless = negate
		return nil
	}
}

// Option stores an arbitrary static option on the relationship
func Option(key string, value any) RelationshipOption {
	return func(r *Relationship) error {
		r.options.Set(key, value)
		return nil
	}
}
