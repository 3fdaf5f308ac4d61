// Package serialization renders application objects into documents of maps,
// slices and scalars that are ready to be encoded as JSON.
//
// Objects are described by resources.Descriptor values, selected relationships
// are controlled by an inclusion tree and the final document shape is decided
// by a named adapter.
package serialization

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"reflect"

	"github.com/diwise/resource-serializer/pkg/serialization/adapters"
	"github.com/diwise/resource-serializer/pkg/serialization/cache"
	serrors "github.com/diwise/resource-serializer/pkg/serialization/errors"
	"github.com/diwise/resource-serializer/pkg/serialization/include"
	"github.com/diwise/resource-serializer/pkg/serialization/render"
	"github.com/diwise/resource-serializer/pkg/serialization/resources"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/stretchr/objx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("resource-serializer/serialization")

const DefaultAdapter string = adapters.AttributesAdapter

var defaultAdapters = adapters.NewDefaultRegistry()

type config struct {
	include     include.Tree
	adapter     string
	adapters    *adapters.Registry
	store       cache.Store
	descriptor  *resources.Descriptor
	descriptors *resources.Registry
	options     objx.Map
	rootKey     string
	meta        any
	metaKey     string
}

type Option func(*config)

// WithInclude adds directive to the inclusion tree. Repeated calls are merged.
func WithInclude(directive any) Option {
	return func(c *config) {
		c.include = c.include.Merge(include.Parse(directive))
	}
}

func WithAdapter(name string) Option {
	return func(c *config) {
		c.adapter = name
	}
}

func WithAdapterRegistry(r *adapters.Registry) Option {
	return func(c *config) {
		c.adapters = r
	}
}

func WithCache(store cache.Store) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithSerializer overrides the descriptor of the root object, or of every
// element of a root collection
func WithSerializer(d *resources.Descriptor) Option {
	return func(c *config) {
		c.descriptor = d
	}
}

func WithDescriptorRegistry(r *resources.Registry) Option {
	return func(c *config) {
		c.descriptors = r
	}
}

// WithOptions hands custom options to the root entity and every nested entity
func WithOptions(options objx.Map) Option {
	return func(c *config) {
		c.options = options
	}
}

func WithRoot(key string) Option {
	return func(c *config) {
		c.rootKey = key
	}
}

func WithMeta(meta any) Option {
	return func(c *config) {
		c.meta = meta
	}
}

func WithMetaKey(key string) Option {
	return func(c *config) {
		c.metaKey = key
	}
}

// SerializableResource binds an object, or a collection of objects, to the
// options it should be serialized with
type SerializableResource struct {
	object     any
	collection bool
	cfg        config
}

func New(object any, options ...Option) *SerializableResource {
	return newResource(object, false, options)
}

func NewCollection(objects any, options ...Option) *SerializableResource {
	return newResource(objects, true, options)
}

func newResource(object any, collection bool, options []Option) *SerializableResource {
	cfg := config{
		include:  include.Tree{},
		adapter:  DefaultAdapter,
		adapters: defaultAdapters,
	}

	for _, option := range options {
		option(&cfg)
	}

	return &SerializableResource{object: object, collection: collection, cfg: cfg}
}

// Serialize renders object, detecting collections from slices, arrays and
// iter.Seq[any] values that have no descriptor of their own
func Serialize(ctx context.Context, object any, options ...Option) (any, error) {
	r := New(object, options...)
	r.collection = r.isCollection()
	return r.SerializableHash(ctx)
}

func (r *SerializableResource) isCollection() bool {
	switch r.object.(type) {
	case resources.Entity:
		return false
	case iter.Seq[any]:
		return true
	}

	if _, ok := r.cfg.descriptors.Lookup(r.object); ok {
		return false
	}

	k := reflect.ValueOf(r.object).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func (r *SerializableResource) SerializableHash(ctx context.Context) (doc any, err error) {
	ctx, span := tracer.Start(ctx, "serialize",
		trace.WithAttributes(attribute.String("adapter", r.cfg.adapter), attribute.String("include", r.cfg.include.String())),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	adapter, err := r.cfg.adapters.Lookup(r.cfg.adapter)
	if err != nil {
		return nil, err
	}

	root, err := r.root(ctx)
	if err != nil {
		return nil, err
	}

	renderer := render.New()
	if r.cfg.store != nil {
		renderer = render.New(render.WithCache(r.cfg.store))
	}

	return adapter.SerializableHash(ctx, renderer, root, adapters.Options{
		Include: r.cfg.include,
		RootKey: r.cfg.rootKey,
		Meta:    r.cfg.meta,
		MetaKey: r.cfg.metaKey,
	})
}

func (r *SerializableResource) MarshalJSON() ([]byte, error) {
	doc, err := r.SerializableHash(context.Background())
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (r *SerializableResource) root(ctx context.Context) (adapters.Root, error) {
	if !r.collection {
		e, err := r.entity(ctx, r.object)
		if err != nil {
			return adapters.Root{}, err
		}
		return adapters.Single(e), nil
	}

	items, ok := resources.Collect(r.object)
	if !ok && r.object != nil {
		return adapters.Root{}, serrors.NewConfigurationError(fmt.Sprintf("%T is not a collection", r.object))
	}

	entities := make([]resources.Entity, 0, len(items))
	for _, item := range items {
		e, err := r.entity(ctx, item)
		if err != nil {
			return adapters.Root{}, err
		}
		entities = append(entities, e)
	}

	return adapters.Collection(r.cfg.descriptor, entities), nil
}

func (r *SerializableResource) entity(ctx context.Context, object any) (resources.Entity, error) {
	if e, ok := object.(resources.Entity); ok {
		return e, nil
	}

	d := r.cfg.descriptor
	if d == nil {
		var ok bool
		if d, ok = r.cfg.descriptors.Lookup(object); !ok {
			return resources.Entity{}, serrors.NewConfigurationError(fmt.Sprintf("no serializer found for %T", object))
		}
	}

	return resources.NewEntity(object, d,
		resources.WithContext(ctx),
		resources.WithRegistry(r.cfg.descriptors),
		resources.WithOptions(r.cfg.options),
	), nil
}
