package renderer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/diwise/resource-serializer/internal/pkg/application/blog"
	"github.com/diwise/resource-serializer/pkg/serialization/cache"
	serrors "github.com/diwise/resource-serializer/pkg/serialization/errors"
	"github.com/matryer/is"
)

func TestRenderResourceUsesConfiguredAdapter(t *testing.T) {
	is, r := setupTest(t, &Config{Adapter: "json"})

	doc, err := r.RenderResource(context.Background(), "authors", "2", Params{})
	is.NoErr(err)
	is.Equal(toJSON(is, doc), `{"author":{"id":2,"name":"Anne A.","posts":[],"roles":[]}}`)
}

func TestAdapterFallsBackToConfiguredDefault(t *testing.T) {
	is, r := setupTest(t, &Config{Adapter: "json_api"})

	is.Equal(r.Adapter(""), "json_api")
	is.Equal(r.Adapter("json"), "json")
}

func TestRenderResourceWithRequestedInclude(t *testing.T) {
	is, r := setupTest(t, nil)

	doc, err := r.RenderResource(context.Background(), "comments", "1", Params{Include: "author"})
	is.NoErr(err)
	is.Equal(toJSON(is, doc), `{"author":{"id":2,"name":"Anne A."},"body":"ZOMG A COMMENT","id":1}`)
}

func TestRenderResourceWithDefaultInclude(t *testing.T) {
	is, r := setupTest(t, &Config{Resources: []ResourceConfig{{Type: "comments", DefaultInclude: "post"}}})

	doc, err := r.RenderResource(context.Background(), "comments", "2", Params{})
	is.NoErr(err)
	is.Equal(toJSON(is, doc), `{"body":"ZOMG ANOTHER COMMENT","id":2,"post":{"body":"Body of the new post. It has two sentences.","excerpt":"Body of the new post","id":42,"title":"New Post"}}`)
}

func TestRenderCollectionAsJSONAPI(t *testing.T) {
	is, r := setupTest(t, &Config{JSONAPI: JSONAPIConfig{ResourceType: "singular"}})

	doc, err := r.RenderCollection(context.Background(), "roles", Params{Adapter: "JsonApi"})
	is.NoErr(err)

	expected := `{"data":[{"attributes":{"description":"Can moderate comments","name":"admin"},"id":"1","type":"role"},{"attributes":{"description":"Can publish posts","name":"writer"},"id":"2","type":"role"}],"meta":{"count":2}}`
	is.Equal(toJSON(is, doc), expected)
}

func TestRenderCollectionUsesTypeAsRoot(t *testing.T) {
	is, r := setupTest(t, &Config{Adapter: "json"})

	doc, err := r.RenderCollection(context.Background(), "blogs", Params{})
	is.NoErr(err)
	is.Equal(toJSON(is, doc), `{"blogs":[{"id":1,"name":"AMS Blog"}],"meta":{"count":1}}`)
}

func TestRenderMissingResourceReturnsNotFound(t *testing.T) {
	is, r := setupTest(t, nil)

	_, err := r.RenderResource(context.Background(), "authors", "17", Params{})
	is.True(errors.As(err, &NotFoundError{}))

	_, err = r.RenderCollection(context.Background(), "planets", Params{})
	is.True(errors.As(err, &NotFoundError{}))
}

func TestRenderWithUnknownAdapterReturnsBadRequest(t *testing.T) {
	is, r := setupTest(t, nil)

	_, err := r.RenderResource(context.Background(), "authors", "1", Params{Adapter: "xml"})
	is.True(errors.As(err, &BadRequestDataError{}))
}

func TestNewFailsWithUnknownDefaultAdapter(t *testing.T) {
	is := is.New(t)
	descriptors, err := blog.Descriptors()
	is.NoErr(err)

	cfg := DefaultConfiguration()
	cfg.Adapter = "xml"

	_, err = New(cfg, blog.NewRepository(blog.SampleData()), descriptors)
	is.True(errors.Is(err, serrors.ErrUnknownAdapter))
}

func TestRenderWithCacheStore(t *testing.T) {
	is := is.New(t)
	descriptors, err := blog.Descriptors(blog.WithFragmentCache())
	is.NoErr(err)

	store := cache.NewMemoryStore()
	r, err := New(DefaultConfiguration(), blog.NewRepository(blog.SampleData()), descriptors, WithCacheStore(store))
	is.NoErr(err)

	first, err := r.RenderResource(context.Background(), "authors", "1", Params{Include: "posts"})
	is.NoErr(err)

	second, err := r.RenderResource(context.Background(), "authors", "1", Params{Include: "posts"})
	is.NoErr(err)

	is.Equal(toJSON(is, first), toJSON(is, second))
	is.Equal(store.Len(), 2) // one author and one post fragment
}

func setupTest(t *testing.T, cfg *Config) (*is.I, Renderer) {
	is := is.New(t)

	if cfg == nil {
		cfg = &Config{}
	}
	is.NoErr(cfg.validate())

	descriptors, err := blog.Descriptors()
	is.NoErr(err)

	r, err := New(cfg, blog.NewRepository(blog.SampleData()), descriptors)
	is.NoErr(err)

	return is, r
}

func toJSON(is *is.I, v any) string {
	b, err := json.Marshal(v)
	is.NoErr(err)
	return string(b)
}
