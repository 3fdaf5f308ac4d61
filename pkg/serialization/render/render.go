// Package render turns resolved entities into nested documents of maps,
// slices and scalars.
//
// Recursion is bounded by the inclusion tree: a relationship is only rendered
// with its own relationships when its effective include is non-empty. Cyclic
// object graphs are therefore safe as long as the inclusion tree is finite,
// which is the responsibility of the caller.
package render

import (
	"context"
	"fmt"
	"slices"

	"github.com/diwise/resource-serializer/pkg/serialization/cache"
	"github.com/diwise/resource-serializer/pkg/serialization/include"
	"github.com/diwise/resource-serializer/pkg/serialization/resources"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

type Renderer struct {
	store cache.Store
}

type RendererOption func(*Renderer)

// WithCache enables fragment caching for descriptors that declare a cache policy
func WithCache(store cache.Store) RendererOption {
	return func(r *Renderer) {
		r.store = store
	}
}

func New(options ...RendererOption) *Renderer {
	r := &Renderer{}

	for _, option := range options {
		option(r)
	}

	return r
}

// Attributes renders the attributes of e, consulting the fragment cache when
// the descriptor declares a cache policy
func (r *Renderer) Attributes(ctx context.Context, e resources.Entity) (map[string]any, error) {
	d := e.Descriptor()
	if d == nil {
		return nil, fmt.Errorf("no descriptor available for %T", e.Object())
	}

	policy, cached := d.Cache()
	if !cached || r.store == nil {
		return attributes(e, d.Attributes())
	}

	key, err := cache.Key(e)
	if err != nil {
		return nil, err
	}

	cacheable := d.CacheableAttributes()
	fresh := slices.DeleteFunc(d.Attributes(), func(a resources.Attribute) bool {
		return slices.Contains(cacheable, a.Name)
	})

	log := logging.GetFromContext(ctx)

	fragment, hit, err := r.store.Get(ctx, key)
	if err != nil {
		fragmentCacheErrors.WithLabelValues(d.TypeName(), "get").Inc()
		log.Warn("fragment cache read failed", "key", key, "err", err.Error())
		hit = false
	}

	if hit {
		fragmentCacheHits.WithLabelValues(d.TypeName()).Inc()
		log.Debug("fragment cache hit", "key", key, "policy", policy.Key)
	} else {
		fragmentCacheMisses.WithLabelValues(d.TypeName()).Inc()

		cacheableAttributes := slices.DeleteFunc(d.Attributes(), func(a resources.Attribute) bool {
			return !slices.Contains(cacheable, a.Name)
		})

		fragment, err = attributes(e, cacheableAttributes)
		if err != nil {
			return nil, err
		}

		if err = r.store.Set(ctx, key, fragment); err != nil {
			fragmentCacheErrors.WithLabelValues(d.TypeName(), "set").Inc()
			log.Warn("fragment cache write failed", "key", key, "err", err.Error())
		}
	}

	result := make(map[string]any, len(fragment)+len(fresh))
	for k, v := range fragment {
		result[k] = v
	}

	for _, a := range fresh {
		v, err := a.Value(e)
		if err != nil {
			return nil, err
		}
		result[a.Name] = v
	}

	return result, nil
}

func attributes(e resources.Entity, attrs []resources.Attribute) (cache.Fragment, error) {
	result := make(cache.Fragment, len(attrs))

	for _, a := range attrs {
		v, err := a.Value(e)
		if err != nil {
			return nil, err
		}
		result[a.Name] = v
	}

	return result, nil
}

// Resource renders the attributes of e together with the relationships
// selected by tree
func (r *Renderer) Resource(ctx context.Context, e resources.Entity, tree include.Tree) (map[string]any, error) {
	doc, err := r.Attributes(ctx, e)
	if err != nil {
		return nil, err
	}

	associations, err := resources.Resolve(e, tree)
	if err != nil {
		return nil, err
	}

	for _, a := range associations {
		v, err := r.Association(ctx, a)
		if err != nil {
			return nil, err
		}
		doc[a.Key()] = v
	}

	return doc, nil
}

// Association renders the value of a resolved association. Nested entities
// are rendered with their own relationships only if the effective include of
// the association is non-empty.
func (r *Renderer) Association(ctx context.Context, a resources.Association) (any, error) {
	switch v := a.Value.(type) {
	case resources.NoValue:
		return nil, nil
	case resources.VirtualValue:
		return v.Raw, nil
	case resources.Single:
		return r.nested(ctx, v.Entity, a.Include)
	case resources.Many:
		items := make([]any, 0, len(v.Entities))
		for _, e := range v.Entities {
			item, err := r.nested(ctx, e, a.Include)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	return nil, fmt.Errorf("unsupported association value %T for %s", a.Value, a.Key())
}

func (r *Renderer) nested(ctx context.Context, e resources.Entity, tree include.Tree) (map[string]any, error) {
	if tree.IsEmpty() {
		return r.Attributes(ctx, e)
	}
	return r.Resource(ctx, e, tree)
}
