package resources

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
	"github.com/stretchr/objx"
)

// Entity pairs a domain object with the descriptor used to render it
type Entity struct {
	ctx        context.Context
	object     any
	descriptor *Descriptor
	options    objx.Map
	registry   *Registry
}

type EntityDecoratorFunc func(e *Entity)

func NewEntity(object any, d *Descriptor, decorators ...EntityDecoratorFunc) Entity {
	e := Entity{
		object:     object,
		descriptor: d,
		options:    objx.Map{},
	}

	for _, decorator := range decorators {
		decorator(&e)
	}

	return e
}

// WithOptions attaches custom options that are handed down to nested entities
func WithOptions(options objx.Map) EntityDecoratorFunc {
	return func(e *Entity) {
		if options != nil {
			e.options = options
		}
	}
}

// WithContext attaches the context of the current render call. Conditions
// read it through Context.
func WithContext(ctx context.Context) EntityDecoratorFunc {
	return func(e *Entity) {
		e.ctx = ctx
	}
}

// WithRegistry sets the registry used to find descriptors for related objects
func WithRegistry(r *Registry) EntityDecoratorFunc {
	return func(e *Entity) {
		e.registry = r
	}
}

// Context returns the context attached with WithContext, or a background context
func (e Entity) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

func (e Entity) Object() any {
	return e.object
}

func (e Entity) Descriptor() *Descriptor {
	return e.descriptor
}

func (e Entity) Options() objx.Map {
	return e.options
}

func (e Entity) Registry() *Registry {
	return e.registry
}

// IsNil reports whether the entity wraps no object
func (e Entity) IsNil() bool {
	return isNil(e.object)
}

func (e Entity) ID() (string, error) {
	return e.descriptor.ID(e)
}

// nested wraps a related object. Everything but the object and descriptor is inherited.
func (e Entity) nested(object any, d *Descriptor) Entity {
	return Entity{
		ctx:        e.ctx,
		object:     object,
		descriptor: d,
		options:    e.options,
		registry:   e.registry,
	}
}

// AttributeReader can be implemented by objects that want to control how
// attributes and relationships are read from them
type AttributeReader interface {
	ReadAttribute(name string) (any, error)
}

// Checker can be implemented by objects that answer named checks themselves
type Checker interface {
	Check(name string) (result bool, found bool)
}

// Serializable objects name their own descriptor
type Serializable interface {
	SerializationDescriptor() *Descriptor
}

// Registry maps Go types to descriptors
type Registry struct {
	mu          sync.RWMutex
	descriptors map[reflect.Type]*Descriptor
}

func NewRegistry() *Registry {
	return &Registry{
		descriptors: map[reflect.Type]*Descriptor{},
	}
}

// Register associates the type of sample with d. Pointer and value types
// resolve to the same descriptor.
func (r *Registry) Register(sample any, d *Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	r.descriptors[t] = d
}

func (r *Registry) Lookup(object any) (*Descriptor, bool) {
	if s, ok := object.(Serializable); ok {
		if d := s.SerializationDescriptor(); d != nil {
			return d, true
		}
	}

	if r == nil || object == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	t := reflect.TypeOf(object)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	d, ok := r.descriptors[t]
	return d, ok
}

func isNil(object any) bool {
	if object == nil {
		return true
	}

	v := reflect.ValueOf(object)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}

	return false
}

type memberKey struct {
	t    reflect.Type
	name string
}

type member struct {
	field  []int
	method string
}

var members sync.Map

// read is the default accessor. It supports AttributeReader, string keyed
// maps, exported niladic methods and exported struct fields whose snake case
// name or json tag matches name.
func read(object any, name string) (any, error) {
	if ar, ok := object.(AttributeReader); ok {
		return ar.ReadAttribute(name)
	}

	if m, ok := object.(map[string]any); ok {
		return m[name], nil
	}

	if m, ok := object.(objx.Map); ok {
		return m.Get(name).Data(), nil
	}

	v := reflect.ValueOf(object)
	if !v.IsValid() {
		return nil, fmt.Errorf("unable to read \"%s\" from nil", name)
	}

	if method, ok := findMethod(v, name); ok && method.Type().NumIn() == 0 {
		return callAccessor(method, name)
	}

	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("unable to read \"%s\" from nil %s", name, v.Type())
		}
		v = v.Elem()
	}

	if v.Kind() == reflect.Struct {
		if f, ok := findField(v.Type(), name); ok {
			return v.FieldByIndex(f).Interface(), nil
		}
	}

	return nil, fmt.Errorf("%T has no attribute \"%s\"", object, name)
}

func callAccessor(method reflect.Value, name string) (any, error) {
	out := method.Call(nil)

	switch len(out) {
	case 1:
		return out[0].Interface(), nil
	case 2:
		if err, ok := out[1].Interface().(error); ok && err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}

	return nil, fmt.Errorf("accessor method for \"%s\" must return a value and an optional error", name)
}

func findMethod(v reflect.Value, name string) (reflect.Value, bool) {
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	key := memberKey{t: v.Type(), name: name}
	if cached, ok := members.Load(key); ok {
		m := cached.(member)
		if m.method == "" {
			return reflect.Value{}, false
		}
		return v.MethodByName(m.method), true
	}

	snake := strcase.ToSnake(name)
	found := member{}

	for i := 0; i < v.Type().NumMethod(); i++ {
		candidate := v.Type().Method(i).Name
		if candidate == name || strcase.ToSnake(candidate) == snake {
			found.method = candidate
			break
		}
	}

	members.Store(key, found)

	if found.method == "" {
		return reflect.Value{}, false
	}

	return v.MethodByName(found.method), true
}

func findField(t reflect.Type, name string) ([]int, bool) {
	key := memberKey{t: t, name: "field:" + name}
	if cached, ok := members.Load(key); ok {
		m := cached.(member)
		return m.field, m.field != nil
	}

	snake := strcase.ToSnake(name)
	found := member{}

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}

		tag := f.Tag.Get("json")
		if tag != "" {
			if tagName, _, _ := strings.Cut(tag, ","); tagName == name {
				found.field = f.Index
				break
			}
		}

		if f.Name == name || strcase.ToSnake(f.Name) == snake {
			found.field = f.Index
			break
		}
	}

	members.Store(key, found)

	return found.field, found.field != nil
}
