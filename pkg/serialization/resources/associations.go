package resources

import (
	"iter"
	"reflect"

	serrors "github.com/diwise/resource-serializer/pkg/serialization/errors"
	"github.com/diwise/resource-serializer/pkg/serialization/include"
	"github.com/stretchr/objx"
)

// Value is the resolved value of an association: NoValue, Single, Many or VirtualValue
type Value interface {
	isValue()
}

type NoValue struct{}

type Single struct {
	Entity Entity
}

type Many struct {
	Entities []Entity
}

// VirtualValue holds a raw value that is rendered as is
type VirtualValue struct {
	Raw any
}

func (NoValue) isValue()      {}
func (Single) isValue()       {}
func (Many) isValue()         {}
func (VirtualValue) isValue() {}

// Association is a relationship resolved against one entity
type Association struct {
	Relationship Relationship
	Include      include.Tree
	Value        Value
}

func (a Association) Key() string {
	return a.Relationship.Key()
}

// Options merges the static relationship options with the effective include
func (a Association) Options() objx.Map {
	opts := a.Relationship.Options()
	if !a.Include.IsEmpty() {
		opts.Set("include", a.Include)
	}
	return opts
}

// Resolve returns the associations of e that are selected by tree and
// visible for e, in declaration order. An empty tree selects every declared
// relationship.
func Resolve(e Entity, tree include.Tree) ([]Association, error) {
	if e.descriptor == nil {
		return nil, nil
	}

	associations := make([]Association, 0, len(e.descriptor.relationships))

	for _, r := range e.descriptor.relationships {
		if !tree.IsEmpty() && !tree.Has(r.Name) {
			continue
		}

		visible, err := r.Visible(e)
		if err != nil {
			return nil, err
		}

		if !visible {
			continue
		}

		value, err := resolveValue(e, r)
		if err != nil {
			return nil, err
		}

		associations = append(associations, Association{
			Relationship: r,
			Include:      r.include.Merge(tree.Child(r.Name)),
			Value:        value,
		})
	}

	return associations, nil
}

func resolveValue(e Entity, r Relationship) (Value, error) {
	var raw any
	var err error

	if r.accessor != nil {
		raw, err = r.accessor(e)
	} else {
		raw, err = read(e.object, r.Name)
	}

	if err != nil {
		return nil, err
	}

	if r.virtual {
		return VirtualValue{Raw: raw}, nil
	}

	if r.Cardinality() == ToMany {
		return resolveMany(e, r, raw)
	}

	return resolveOne(e, r, raw), nil
}

func resolveOne(e Entity, r Relationship, raw any) Value {
	if isNil(raw) {
		return NoValue{}
	}

	if nested, ok := raw.(Entity); ok {
		if nested.IsNil() {
			return NoValue{}
		}
		return Single{Entity: nested}
	}

	d, ok := descriptorFor(e, r, raw)
	if !ok {
		return VirtualValue{Raw: raw}
	}

	return Single{Entity: e.nested(raw, d)}
}

func resolveMany(e Entity, r Relationship, raw any) (Value, error) {
	if isNil(raw) {
		return Many{Entities: []Entity{}}, nil
	}

	if entities, ok := raw.([]Entity); ok {
		return Many{Entities: entities}, nil
	}

	items, ok := Collect(raw)
	if !ok {
		return nil, serrors.NewUnexpectedValueError(r.Name, raw)
	}

	entities := make([]Entity, 0, len(items))

	for _, item := range items {
		if nested, ok := item.(Entity); ok {
			entities = append(entities, nested)
			continue
		}

		d, ok := descriptorFor(e, r, item)
		if !ok {
			return VirtualValue{Raw: items}, nil
		}

		entities = append(entities, e.nested(item, d))
	}

	return Many{Entities: entities}, nil
}

func descriptorFor(e Entity, r Relationship, object any) (*Descriptor, bool) {
	if r.serializer != nil {
		return r.serializer, true
	}
	return e.registry.Lookup(object)
}

// Collect iterates a slice, array or iter.Seq once and returns its items
func Collect(raw any) ([]any, bool) {
	switch c := raw.(type) {
	case []any:
		return c, true
	case iter.Seq[any]:
		items := []any{}
		for item := range c {
			items = append(items, item)
		}
		return items, true
	}

	v := reflect.ValueOf(raw)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, false
	}

	items := make([]any, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		items = append(items, v.Index(i).Interface())
	}

	return items, true
}

