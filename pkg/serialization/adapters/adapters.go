// Package adapters shapes rendered resources into top level documents
package adapters

import (
	"context"

	serrors "github.com/diwise/resource-serializer/pkg/serialization/errors"
	"github.com/diwise/resource-serializer/pkg/serialization/include"
	"github.com/diwise/resource-serializer/pkg/serialization/render"
	"github.com/diwise/resource-serializer/pkg/serialization/resources"
	"github.com/jinzhu/inflection"
)

// Root is the resource, or collection of resources, at the top of a document
type Root struct {
	Entity       resources.Entity
	Collection   []resources.Entity
	IsCollection bool

	// Descriptor describes the collection elements and is used to infer
	// root keys for empty collections
	Descriptor *resources.Descriptor
}

func Single(e resources.Entity) Root {
	return Root{Entity: e, Descriptor: e.Descriptor()}
}

func Collection(d *resources.Descriptor, entities []resources.Entity) Root {
	if d == nil && len(entities) > 0 {
		d = entities[0].Descriptor()
	}
	return Root{Collection: entities, IsCollection: true, Descriptor: d}
}

type Options struct {
	Include include.Tree
	RootKey string
	Meta    any
	MetaKey string
}

// Adapter produces a document from a root using a renderer
type Adapter interface {
	SerializableHash(ctx context.Context, renderer *render.Renderer, root Root, opts Options) (any, error)
}

type AdapterFunc func(ctx context.Context, renderer *render.Renderer, root Root, opts Options) (any, error)

func (f AdapterFunc) SerializableHash(ctx context.Context, renderer *render.Renderer, root Root, opts Options) (any, error) {
	return f(ctx, renderer, root, opts)
}

// Attributes renders flat documents without root keys or meta data
type Attributes struct{}

func (Attributes) SerializableHash(ctx context.Context, renderer *render.Renderer, root Root, opts Options) (any, error) {
	if !root.IsCollection {
		return renderer.Resource(ctx, root.Entity, opts.Include)
	}

	docs := make([]any, 0, len(root.Collection))
	for _, e := range root.Collection {
		doc, err := renderer.Resource(ctx, e, opts.Include)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

const DefaultMetaKey string = "meta"

// JSON wraps the flat document under a root key
type JSON struct{}

func (JSON) SerializableHash(ctx context.Context, renderer *render.Renderer, root Root, opts Options) (any, error) {
	key, err := rootKey(root, opts)
	if err != nil {
		return nil, err
	}

	doc, err := Attributes{}.SerializableHash(ctx, renderer, root, opts)
	if err != nil {
		return nil, err
	}

	result := map[string]any{key: doc}

	if opts.Meta != nil {
		metaKey := opts.MetaKey
		if metaKey == "" {
			metaKey = DefaultMetaKey
		}
		result[metaKey] = opts.Meta
	}

	return result, nil
}

func rootKey(root Root, opts Options) (string, error) {
	if opts.RootKey != "" {
		return opts.RootKey, nil
	}

	if root.Descriptor == nil {
		return "", serrors.NewConfigurationError("unable to infer a root key without a descriptor")
	}

	key := root.Descriptor.Root()
	if root.IsCollection {
		key = inflection.Plural(key)
	}

	return key, nil
}

// Null renders an empty document
type Null struct{}

func (Null) SerializableHash(context.Context, *render.Renderer, Root, Options) (any, error) {
	return map[string]any{}, nil
}

var _ Adapter = Attributes{}
var _ Adapter = JSON{}
var _ Adapter = Null{}
var _ Adapter = (*JSONAPI)(nil)
var _ Adapter = AdapterFunc(nil)
