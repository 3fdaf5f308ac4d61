package renderer

import (
	"context"
	"errors"

	"github.com/diwise/resource-serializer/internal/pkg/application/blog"
	"github.com/diwise/resource-serializer/pkg/serialization"
	"github.com/diwise/resource-serializer/pkg/serialization/adapters"
	"github.com/diwise/resource-serializer/pkg/serialization/cache"
	serrors "github.com/diwise/resource-serializer/pkg/serialization/errors"
	"github.com/diwise/resource-serializer/pkg/serialization/resources"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/stretchr/objx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("resource-renderer/application")

const (
	TraceAttributeResourceType string = "resource-type"
	TraceAttributeResourceID   string = "resource-id"
)

type Params struct {
	Include string
	Adapter string
	Options objx.Map
}

//go:generate moq -rm -out renderer_mock.go . Renderer
type Renderer interface {
	Adapter(requested string) string
	RenderResource(ctx context.Context, resourceType, id string, params Params) (any, error)
	RenderCollection(ctx context.Context, resourceType string, params Params) (any, error)
	ResourceTypes() []string
}

type rendererImpl struct {
	cfg         *Config
	repo        blog.Repository
	descriptors *resources.Registry
	adapters    *adapters.Registry
	store       cache.Store
}

type Option func(*rendererImpl)

// WithCacheStore enables fragment caching with store
func WithCacheStore(store cache.Store) Option {
	return func(r *rendererImpl) {
		r.store = store
	}
}

func New(cfg *Config, repo blog.Repository, descriptors *resources.Registry, options ...Option) (Renderer, error) {
	registry := adapters.NewDefaultRegistry()

	err := registry.Register(adapters.JSONAPIAdapter, adapters.NewJSONAPI(
		adapters.WithResourceType(adapters.Inflection(cfg.JSONAPI.ResourceType)),
	))
	if err != nil {
		return nil, err
	}

	if _, err = registry.Lookup(cfg.Adapter); err != nil {
		return nil, err
	}

	r := &rendererImpl{
		cfg:         cfg,
		repo:        repo,
		descriptors: descriptors,
		adapters:    registry,
	}

	for _, option := range options {
		option(r)
	}

	return r, nil
}

// Adapter returns the adapter used for a request that asked for requested,
// falling back to the configured default
func (r *rendererImpl) Adapter(requested string) string {
	if requested == "" {
		return r.cfg.Adapter
	}
	return requested
}

func (r *rendererImpl) ResourceTypes() []string {
	return r.repo.Types()
}

func (r *rendererImpl) RenderResource(ctx context.Context, resourceType, id string, params Params) (doc any, err error) {
	ctx, span := tracer.Start(ctx, "render-resource",
		trace.WithAttributes(
			attribute.String(TraceAttributeResourceType, resourceType),
			attribute.String(TraceAttributeResourceID, id),
		),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	object, err := r.repo.Find(ctx, resourceType, id)
	if err != nil {
		if errors.Is(err, blog.ErrNotFound) || errors.Is(err, blog.ErrUnknownType) {
			err = NewNotFoundError(err.Error())
		}
		return nil, err
	}

	return r.serialize(ctx, object, resourceType, params)
}

func (r *rendererImpl) RenderCollection(ctx context.Context, resourceType string, params Params) (doc any, err error) {
	ctx, span := tracer.Start(ctx, "render-collection",
		trace.WithAttributes(attribute.String(TraceAttributeResourceType, resourceType)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	objects, err := r.repo.List(ctx, resourceType)
	if err != nil {
		if errors.Is(err, blog.ErrUnknownType) {
			err = NewNotFoundError(err.Error())
		}
		return nil, err
	}

	items, _ := resources.Collect(objects)

	return r.serialize(ctx, objects, resourceType, params,
		serialization.WithRoot(resourceType),
		serialization.WithMeta(map[string]any{"count": len(items)}),
	)
}

func (r *rendererImpl) serialize(ctx context.Context, object any, resourceType string, params Params, extra ...serialization.Option) (any, error) {
	adapter := r.Adapter(params.Adapter)

	include := params.Include
	if include == "" {
		include = r.cfg.DefaultInclude(resourceType)
	}

	ctx = logging.NewContextWithLogger(ctx, logging.GetFromContext(ctx), "adapter", adapter, "include", include)

	options := []serialization.Option{
		serialization.WithAdapter(adapter),
		serialization.WithAdapterRegistry(r.adapters),
		serialization.WithDescriptorRegistry(r.descriptors),
		serialization.WithInclude(include),
		serialization.WithOptions(params.Options),
	}

	if r.store != nil {
		options = append(options, serialization.WithCache(r.store))
	}

	doc, err := serialization.Serialize(ctx, object, append(options, extra...)...)
	if err != nil {
		if errors.Is(err, serrors.ErrUnknownAdapter) {
			return nil, NewBadRequestDataError(err.Error())
		}
		return nil, err
	}

	return doc, nil
}
