package resources

import (
	"errors"
	"fmt"
	"slices"

	serrors "github.com/diwise/resource-serializer/pkg/serialization/errors"
	"github.com/samber/lo"
)

// AccessorFunc reads a value from an entity
type AccessorFunc func(e Entity) (any, error)

type Attribute struct {
	Name     string
	accessor AccessorFunc
}

func (a Attribute) Value(e Entity) (any, error) {
	if a.accessor != nil {
		return a.accessor(e)
	}
	return read(e.object, a.Name)
}

// CachePolicy enables fragment caching for a descriptor. Only and Except
// select the cacheable attribute subset; attributes outside of it are
// rendered fresh on every call.
type CachePolicy struct {
	Key    string
	Only   []string
	Except []string
}

// Descriptor describes how objects of one type are rendered. It is immutable
// once built and may be shared between concurrent render calls.
type Descriptor struct {
	typeName    string
	root        string
	jsonapiType string

	id            AccessorFunc
	attributes    []Attribute
	relationships []Relationship
	methods       map[string]func(Entity) bool
	cache         *CachePolicy
}

type DescriptorDecoratorFunc func(d *Descriptor) error

// New builds a descriptor for typeName. Decorators are applied in order and
// any configuration errors they report are joined and returned.
func New(typeName string, decorators ...DescriptorDecoratorFunc) (*Descriptor, error) {
	if typeName == "" {
		return nil, serrors.NewConfigurationError("a descriptor requires a type name")
	}

	d := &Descriptor{
		typeName: typeName,
		methods:  map[string]func(Entity) bool{},
	}

	return d.decorate(decorators...)
}

// Extend builds a new descriptor starting from a copy of parent's attribute
// and relationship tables
func Extend(parent *Descriptor, typeName string, decorators ...DescriptorDecoratorFunc) (*Descriptor, error) {
	if parent == nil {
		return nil, serrors.NewConfigurationError("a descriptor can not extend a nil parent")
	}

	if typeName == "" {
		typeName = parent.typeName
	}

	d := &Descriptor{
		typeName:      typeName,
		root:          parent.root,
		jsonapiType:   parent.jsonapiType,
		id:            parent.id,
		attributes:    slices.Clone(parent.attributes),
		relationships: slices.Clone(parent.relationships),
		methods:       map[string]func(Entity) bool{},
	}

	for k, v := range parent.methods {
		d.methods[k] = v
	}

	if parent.cache != nil {
		cp := *parent.cache
		d.cache = &cp
	}

	return d.decorate(decorators...)
}

// Must panics if New or Extend failed. Intended for package level declarations.
func Must(d *Descriptor, err error) *Descriptor {
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Descriptor) decorate(decorators ...DescriptorDecoratorFunc) (*Descriptor, error) {
	errs := []error{}

	for _, decorator := range decorators {
		if err := decorator(d); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid descriptor for %s: %w", d.typeName, errors.Join(errs...))
	}

	return d, nil
}

func (d *Descriptor) TypeName() string {
	return d.typeName
}

// Root is the key used by rooted adapters, defaulting to the type name
func (d *Descriptor) Root() string {
	if d.root != "" {
		return d.root
	}
	return d.typeName
}

// JSONAPIType returns the explicitly declared resource type, if any
func (d *Descriptor) JSONAPIType() (string, bool) {
	return d.jsonapiType, d.jsonapiType != ""
}

func (d *Descriptor) Attributes() []Attribute {
	return slices.Clone(d.attributes)
}

func (d *Descriptor) AttributeNames() []string {
	return lo.Map(d.attributes, func(a Attribute, _ int) string { return a.Name })
}

func (d *Descriptor) Relationships() []Relationship {
	return slices.Clone(d.relationships)
}

// Relationship returns the first relationship declared with name
func (d *Descriptor) Relationship(name string) (Relationship, bool) {
	return lo.Find(d.relationships, func(r Relationship) bool { return r.Name == name })
}

func (d *Descriptor) Cache() (CachePolicy, bool) {
	if d.cache == nil {
		return CachePolicy{}, false
	}
	return *d.cache, true
}

// CacheableAttributes lists the attributes stored in a cached fragment
func (d *Descriptor) CacheableAttributes() []string {
	if d.cache == nil {
		return nil
	}

	names := d.AttributeNames()

	if len(d.cache.Only) > 0 {
		return lo.Filter(names, func(n string, _ int) bool { return slices.Contains(d.cache.Only, n) })
	}

	return lo.Without(names, d.cache.Except...)
}

// ID returns the identity of the entity as a string
func (d *Descriptor) ID(e Entity) (string, error) {
	var v any
	var err error

	if d.id != nil {
		v, err = d.id(e)
	} else {
		v, err = read(e.object, "id")
	}

	if err != nil {
		return "", err
	}

	return fmt.Sprint(v), nil
}

// Attributes declares attributes read through the default accessor
func Attributes(names ...string) DescriptorDecoratorFunc {
	return func(d *Descriptor) error {
		for _, n := range names {
			d.addAttribute(Attribute{Name: n})
		}
		return nil
	}
}

// Attr declares a single attribute with a custom accessor
func Attr(name string, accessor AccessorFunc) DescriptorDecoratorFunc {
	return func(d *Descriptor) error {
		if accessor == nil {
			return fmt.Errorf("attribute \"%s\" declared with a nil accessor", name)
		}
		d.addAttribute(Attribute{Name: name, accessor: accessor})
		return nil
	}
}

func (d *Descriptor) addAttribute(a Attribute) {
	idx := slices.IndexFunc(d.attributes, func(existing Attribute) bool { return existing.Name == a.Name })
	if idx >= 0 {
		d.attributes[idx] = a
		return
	}
	d.attributes = append(d.attributes, a)
}

func ID(accessor AccessorFunc) DescriptorDecoratorFunc {
	return func(d *Descriptor) error {
		d.id = accessor
		return nil
	}
}

func Root(key string) DescriptorDecoratorFunc {
	return func(d *Descriptor) error {
		d.root = key
		return nil
	}
}

// Type declares the JSON:API resource type
func Type(resourceType string) DescriptorDecoratorFunc {
	return func(d *Descriptor) error {
		d.jsonapiType = resourceType
		return nil
	}
}

// Method registers a check that Named predicates can refer to
func Method(name string, check func(Entity) bool) DescriptorDecoratorFunc {
	return func(d *Descriptor) error {
		if check == nil {
			return fmt.Errorf("method \"%s\" declared without a func", name)
		}
		d.methods[name] = check
		return nil
	}
}

func Cache(policy CachePolicy) DescriptorDecoratorFunc {
	return func(d *Descriptor) error {
		if len(policy.Only) > 0 && len(policy.Except) > 0 {
			return fmt.Errorf("cache policy can not combine only and except")
		}
		d.cache = &policy
		return nil
	}
}

func HasMany(name string, options ...RelationshipOption) DescriptorDecoratorFunc {
	return relationship(name, HasManyMacro, options...)
}

func HasOne(name string, options ...RelationshipOption) DescriptorDecoratorFunc {
	return relationship(name, HasOneMacro, options...)
}

func BelongsTo(name string, options ...RelationshipOption) DescriptorDecoratorFunc {
	return relationship(name, BelongsToMacro, options...)
}

func relationship(name string, macro Macro, options ...RelationshipOption) DescriptorDecoratorFunc {
	return func(d *Descriptor) error {
		r, err := newRelationship(name, macro, options...)
		if err != nil {
			return err
		}

		idx := slices.IndexFunc(d.relationships, func(existing Relationship) bool {
			return existing.Name == r.Name && existing.Key() == r.Key()
		})
		if idx >= 0 {
			d.relationships[idx] = r
			return nil
		}

		d.relationships = append(d.relationships, r)
		return nil
	}
}
