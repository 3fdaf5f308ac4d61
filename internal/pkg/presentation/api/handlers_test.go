package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diwise/resource-serializer/internal/pkg/application/blog"
	"github.com/diwise/resource-serializer/internal/pkg/application/renderer"
	"github.com/go-chi/chi/v5"
	"github.com/matryer/is"
)

func TestRetrieveResource(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/api/v1/authors/1?include=posts&include=bio&adapter=json", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), JSONContentType)
	is.Equal(body, `{"author":{"id":1}}`)

	is.Equal(len(app.RenderResourceCalls()), 1)
	call := app.RenderResourceCalls()[0]
	is.Equal(call.ResourceType, "authors")
	is.Equal(call.ID, "1")
	is.Equal(call.Params.Include, "posts,bio") // repeated include params should be joined
	is.Equal(call.Params.Adapter, "json")
}

func TestRetrieveResourceAsJSONAPI(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/api/v1/authors/1?adapter=JsonApi", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), JSONAPIContentType)
}

func TestDefaultAdapterDecidesContentType(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.AdapterFunc = func(requested string) string {
		if requested == "" {
			return "json_api"
		}
		return requested
	}

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/api/v1/authors/1", nil)
	is.Equal(resp.Header.Get("Content-Type"), JSONAPIContentType)

	resp, _ = newTestRequest(is, ts, http.MethodGet, "/api/v1/posts", nil)
	is.Equal(resp.Header.Get("Content-Type"), JSONAPIContentType)

	resp, _ = newTestRequest(is, ts, http.MethodGet, "/api/v1/authors/1?adapter=json", nil)
	is.Equal(resp.Header.Get("Content-Type"), JSONContentType)
}

func TestViewerRoleIsPassedAsOption(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/authors/1", nil)
	req.Header.Set(ViewerRoleHeader, "admin")

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err)
	defer resp.Body.Close()

	options := app.RenderResourceCalls()[0].Params.Options
	is.Equal(options.Get("viewer.role").Str(), "admin")
}

func TestRetrieveCollection(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/api/v1/posts?include=comments.author", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `[{"id":42}]`)
	is.Equal(app.RenderCollectionCalls()[0].ResourceType, "posts")
	is.Equal(app.RenderCollectionCalls()[0].Params.Include, "comments.author")
}

func TestRetrieveResourceTypes(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/api/v1/types", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `["authors","posts"]`)
}

func TestMissingResourceReturnsNotFound(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.RenderResourceFunc = func(context.Context, string, string, renderer.Params) (any, error) {
		return nil, renderer.NewNotFoundError("not found: authors/17")
	}

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/api/v1/authors/17", nil)

	is.Equal(resp.StatusCode, http.StatusNotFound)
	is.Equal(resp.Header.Get("Content-Type"), "application/problem+json")
}

func TestUnknownAdapterReturnsBadRequest(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.RenderCollectionFunc = func(context.Context, string, renderer.Params) (any, error) {
		return nil, renderer.NewBadRequestDataError(`unknown adapter "xml"`)
	}

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/api/v1/authors?adapter=xml", nil)

	is.Equal(resp.StatusCode, http.StatusBadRequest)
}

func TestRenderFailureReturnsInternalError(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.RenderResourceFunc = func(context.Context, string, string, renderer.Params) (any, error) {
		return nil, errors.New("accessor failed")
	}

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/api/v1/posts/42", nil)

	is.Equal(resp.StatusCode, http.StatusInternalServerError)
}

func TestHandlersWithBlogRenderer(t *testing.T) {
	is := is.New(t)

	descriptors, err := blog.Descriptors()
	is.NoErr(err)

	app, err := renderer.New(renderer.DefaultConfiguration(), blog.NewRepository(blog.SampleData()), descriptors)
	is.NoErr(err)

	r := chi.NewRouter()
	is.NoErr(RegisterHandlers(context.Background(), r, app))

	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/api/v1/comments/1?include=author&adapter=json", nil)

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(body, `{"comment":{"author":{"id":2,"name":"Anne A."},"body":"ZOMG A COMMENT","id":1}}`)

	cfg := renderer.DefaultConfiguration()
	cfg.Adapter = "json_api"
	jsonapi, err := renderer.New(cfg, blog.NewRepository(blog.SampleData()), descriptors)
	is.NoErr(err)

	r = chi.NewRouter()
	is.NoErr(RegisterHandlers(context.Background(), r, jsonapi))

	ts2 := httptest.NewServer(r)
	defer ts2.Close()

	resp, _ = newTestRequest(is, ts2, http.MethodGet, "/api/v1/comments/1", nil)
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), JSONAPIContentType) // configured default adapter decides the content type
}

func setupTest(t *testing.T) (*is.I, *httptest.Server, *renderer.RendererMock) {
	is := is.New(t)
	r := chi.NewRouter()

	app := &renderer.RendererMock{
		AdapterFunc: func(requested string) string {
			if requested == "" {
				return "attributes"
			}
			return requested
		},
		RenderResourceFunc: func(ctx context.Context, resourceType, id string, params renderer.Params) (any, error) {
			return map[string]any{"author": map[string]any{"id": 1}}, nil
		},
		RenderCollectionFunc: func(ctx context.Context, resourceType string, params renderer.Params) (any, error) {
			return []any{map[string]any{"id": 42}}, nil
		},
		ResourceTypesFunc: func() []string {
			return []string{"authors", "posts"}
		},
	}

	is.NoErr(RegisterHandlers(context.Background(), r, app))

	return is, httptest.NewServer(r), app
}

func newTestRequest(is *is.I, ts *httptest.Server, method, path string, body io.Reader) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, body)
	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	return resp, string(respBody)
}
