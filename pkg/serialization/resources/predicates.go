package resources

import (
	"fmt"
	"reflect"

	serrors "github.com/diwise/resource-serializer/pkg/serialization/errors"
)

type predicateKind int

const (
	always predicateKind = iota
	namedCheck
	callable
)

// Predicate decides whether a relationship is visible for a given entity.
// The zero value is always true.
type Predicate struct {
	kind predicateKind
	name string
	fn   func(Entity) bool
}

func Always() Predicate {
	return Predicate{kind: always}
}

// Named refers to a check method declared on the descriptor with Method, or
// to an exported method without arguments returning bool on the entity's object
func Named(name string) Predicate {
	return Predicate{kind: namedCheck, name: name}
}

func Callable(fn func(Entity) bool) Predicate {
	return Predicate{kind: callable, fn: fn}
}

func (p Predicate) IsAlways() bool {
	return p.kind == always
}

func (p Predicate) Evaluate(e Entity) (bool, error) {
	switch p.kind {
	case namedCheck:
		return e.check(p.name)
	case callable:
		return p.fn(e), nil
	default:
		return true, nil
	}
}

func (p Predicate) String() string {
	switch p.kind {
	case namedCheck:
		return "named(" + p.name + ")"
	case callable:
		return "callable"
	default:
		return "always"
	}
}

// predicateFrom converts the supported condition forms into a Predicate
func predicateFrom(relationship, option string, cond any) (Predicate, error) {
	switch c := cond.(type) {
	case Predicate:
		return c, nil
	case string:
		if c != "" {
			return Named(c), nil
		}
	case func(Entity) bool:
		if c != nil {
			return Callable(c), nil
		}
	case func() bool:
		if c != nil {
			return Callable(func(Entity) bool { return c() }), nil
		}
	case func(any) bool:
		if c != nil {
			return Callable(func(e Entity) bool { return c(e.Object()) }), nil
		}
	}

	return Predicate{}, serrors.NewInvalidPredicateError(relationship, option, cond)
}

func (e Entity) check(name string) (bool, error) {
	if e.descriptor != nil {
		if m, ok := e.descriptor.methods[name]; ok {
			return m(e), nil
		}
	}

	if c, ok := e.object.(Checker); ok {
		if result, found := c.Check(name); found {
			return result, nil
		}
	}

	if m, ok := findMethod(reflect.ValueOf(e.object), name); ok {
		if m.Type().NumIn() == 0 && m.Type().NumOut() == 1 && m.Type().Out(0).Kind() == reflect.Bool {
			return m.Call(nil)[0].Bool(), nil
		}
	}

	return false, fmt.Errorf("no check named \"%s\" found for %T", name, e.object)
}
