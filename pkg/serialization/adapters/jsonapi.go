package adapters

import (
	"context"
	"fmt"

	"github.com/diwise/resource-serializer/pkg/serialization/include"
	"github.com/diwise/resource-serializer/pkg/serialization/render"
	"github.com/diwise/resource-serializer/pkg/serialization/resources"
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

type Inflection string

const (
	Singular Inflection = "singular"
	Plural   Inflection = "plural"
)

// JSONAPI renders JSON:API documents with primary data, relationship
// linkage and included resources following the inclusion tree
type JSONAPI struct {
	resourceType Inflection
}

type JSONAPIOption func(*JSONAPI)

func WithResourceType(inflection Inflection) JSONAPIOption {
	return func(j *JSONAPI) {
		j.resourceType = inflection
	}
}

func NewJSONAPI(options ...JSONAPIOption) *JSONAPI {
	j := &JSONAPI{resourceType: Plural}

	for _, option := range options {
		option(j)
	}

	return j
}

type compoundDocument struct {
	renderer *render.Renderer
	seen     map[string]bool
	included []any
}

func (j *JSONAPI) SerializableHash(ctx context.Context, renderer *render.Renderer, root Root, opts Options) (any, error) {
	primary := root.Collection
	if !root.IsCollection {
		primary = []resources.Entity{root.Entity}
	}

	doc := &compoundDocument{
		renderer: renderer,
		seen:     map[string]bool{},
		included: []any{},
	}

	data := make([]any, 0, len(primary))

	for _, e := range primary {
		identifier, err := j.Identifier(e)
		if err != nil {
			return nil, err
		}
		doc.seen[identifier.key()] = true

		obj, err := j.resourceObject(ctx, renderer, e, identifier)
		if err != nil {
			return nil, err
		}
		data = append(data, obj)
	}

	for _, e := range primary {
		if err := j.walk(ctx, doc, e, opts.Include); err != nil {
			return nil, err
		}
	}

	result := map[string]any{}

	if root.IsCollection {
		result["data"] = data
	} else {
		result["data"] = data[0]
	}

	if len(doc.included) > 0 {
		result["included"] = doc.included
	}

	if opts.Meta != nil {
		result[DefaultMetaKey] = opts.Meta
	}

	return result, nil
}

type ResourceIdentifier struct {
	ID   string
	Type string
}

func (ri ResourceIdentifier) key() string {
	return ri.Type + "/" + ri.ID
}

func (ri ResourceIdentifier) AsMap() map[string]any {
	return map[string]any{"id": ri.ID, "type": ri.Type}
}

// Identifier returns the JSON:API resource identifier of e
func (j *JSONAPI) Identifier(e resources.Entity) (ResourceIdentifier, error) {
	d := e.Descriptor()
	if d == nil {
		return ResourceIdentifier{}, fmt.Errorf("no descriptor available for %T", e.Object())
	}

	id, err := e.ID()
	if err != nil {
		return ResourceIdentifier{}, err
	}

	resourceType, declared := d.JSONAPIType()
	if !declared {
		resourceType = d.TypeName()
		if j.resourceType == Plural {
			resourceType = inflection.Plural(resourceType)
		}
	}

	return ResourceIdentifier{ID: id, Type: strcase.ToKebab(resourceType)}, nil
}

func (j *JSONAPI) resourceObject(ctx context.Context, renderer *render.Renderer, e resources.Entity, identifier ResourceIdentifier) (map[string]any, error) {
	obj := identifier.AsMap()

	attributes, err := renderer.Attributes(ctx, e)
	if err != nil {
		return nil, err
	}

	delete(attributes, "id")
	if len(attributes) > 0 {
		obj["attributes"] = attributes
	}

	associations, err := resources.Resolve(e, include.Tree{})
	if err != nil {
		return nil, err
	}

	relationships := map[string]any{}

	for _, a := range associations {
		linkage, err := j.linkage(a.Value)
		if err != nil {
			return nil, err
		}
		relationships[a.Key()] = map[string]any{"data": linkage}
	}

	if len(relationships) > 0 {
		obj["relationships"] = relationships
	}

	return obj, nil
}

func (j *JSONAPI) linkage(value resources.Value) (any, error) {
	switch v := value.(type) {
	case resources.NoValue:
		return nil, nil
	case resources.VirtualValue:
		return v.Raw, nil
	case resources.Single:
		identifier, err := j.Identifier(v.Entity)
		if err != nil {
			return nil, err
		}
		return identifier.AsMap(), nil
	case resources.Many:
		identifiers := make([]any, 0, len(v.Entities))
		for _, e := range v.Entities {
			identifier, err := j.Identifier(e)
			if err != nil {
				return nil, err
			}
			identifiers = append(identifiers, identifier.AsMap())
		}
		return identifiers, nil
	}

	return nil, fmt.Errorf("unsupported association value %T", value)
}

// walk adds the resources selected by tree below e to the included set
func (j *JSONAPI) walk(ctx context.Context, doc *compoundDocument, e resources.Entity, tree include.Tree) error {
	if tree.IsEmpty() {
		return nil
	}

	associations, err := resources.Resolve(e, tree)
	if err != nil {
		return err
	}

	for _, a := range associations {
		var related []resources.Entity

		switch v := a.Value.(type) {
		case resources.Single:
			related = []resources.Entity{v.Entity}
		case resources.Many:
			related = v.Entities
		}

		for _, r := range related {
			identifier, err := j.Identifier(r)
			if err != nil {
				return err
			}

			if !doc.seen[identifier.key()] {
				doc.seen[identifier.key()] = true

				obj, err := j.resourceObject(ctx, doc.renderer, r, identifier)
				if err != nil {
					return err
				}
				doc.included = append(doc.included, obj)
			}

			if err := j.walk(ctx, doc, r, a.Include); err != nil {
				return err
			}
		}
	}

	return nil
}
