package blog

import (
	"github.com/diwise/resource-serializer/pkg/serialization/resources"
)

const (
	AuthorType  string = "author"
	PostType    string = "post"
	CommentType string = "comment"
	BlogType    string = "blog"
	BioType     string = "bio"
	RoleType    string = "role"
)

// Visibility decides, per relationship, if an entity may expose it
type Visibility interface {
	Visible(relationship string) func(resources.Entity) bool
}

type visibleToAll struct{}

func (visibleToAll) Visible(string) func(resources.Entity) bool {
	return func(resources.Entity) bool { return true }
}

type DescriptorOption func(*descriptorConfig)

type descriptorConfig struct {
	visibility Visibility
	cache      bool
}

func WithVisibility(v Visibility) DescriptorOption {
	return func(cfg *descriptorConfig) {
		if v != nil {
			cfg.visibility = v
		}
	}
}

// WithFragmentCache declares cache policies for authors and posts
func WithFragmentCache() DescriptorOption {
	return func(cfg *descriptorConfig) {
		cfg.cache = true
	}
}

// Descriptors returns a registry describing every type in the blog domain
func Descriptors(options ...DescriptorOption) (*resources.Registry, error) {
	cfg := &descriptorConfig{visibility: visibleToAll{}}
	for _, option := range options {
		option(cfg)
	}

	blog, err := resources.New(BlogType, resources.Attributes("id", "name"))
	if err != nil {
		return nil, err
	}

	bio, err := resources.New(BioType, resources.Attributes("id", "content", "rating"))
	if err != nil {
		return nil, err
	}

	role, err := resources.New(RoleType, resources.Attributes("id", "name", "description"))
	if err != nil {
		return nil, err
	}

	comment, err := resources.New(CommentType,
		resources.Attributes("id", "body"),
		resources.BelongsTo("post"),
		resources.BelongsTo("author"),
	)
	if err != nil {
		return nil, err
	}

	postDecorators := []resources.DescriptorDecoratorFunc{
		resources.Attributes("id", "title", "body"),
		resources.Attr("excerpt", func(e resources.Entity) (any, error) {
			return e.Object().(*Post).Excerpt(), nil
		}),
		resources.HasMany("comments"),
		resources.HasMany("tags", resources.Virtual()),
		resources.BelongsTo("blog"),
		resources.BelongsTo("author"),
	}

	if cfg.cache {
		postDecorators = append(postDecorators, resources.Cache(resources.CachePolicy{
			Key:    PostType,
			Except: []string{"excerpt"},
		}))
	}

	post, err := resources.New(PostType, postDecorators...)
	if err != nil {
		return nil, err
	}

	authorDecorators := []resources.DescriptorDecoratorFunc{
		resources.Attributes("id", "name"),
		resources.HasMany("posts"),
		resources.HasMany("roles", resources.If(cfg.visibility.Visible("author.roles"))),
		resources.HasOne("bio", resources.Unless(resources.Named("is_unpublished"))),
		resources.Method("is_unpublished", func(e resources.Entity) bool {
			return !e.Object().(*Author).IsPublished()
		}),
	}

	if cfg.cache {
		authorDecorators = append(authorDecorators, resources.Cache(resources.CachePolicy{
			Key:  AuthorType,
			Only: []string{"name"},
		}))
	}

	author, err := resources.New(AuthorType, authorDecorators...)
	if err != nil {
		return nil, err
	}

	registry := resources.NewRegistry()
	registry.Register(&Blog{}, blog)
	registry.Register(&Bio{}, bio)
	registry.Register(&Role{}, role)
	registry.Register(&Comment{}, comment)
	registry.Register(&Post{}, post)
	registry.Register(&Author{}, author)

	return registry, nil
}
