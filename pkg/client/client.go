package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type RendererClient interface {
	RetrieveResource(ctx context.Context, resourceType, id string, parameters ...RequestDecoratorFunc) (any, error)
	QueryCollection(ctx context.Context, resourceType string, parameters ...RequestDecoratorFunc) (any, error)
	ResourceTypes(ctx context.Context) ([]string, error)
}

type request struct {
	query   url.Values
	headers http.Header
}

type RequestDecoratorFunc func(*request)

// Include asks for the relationships described by one or more dot paths
func Include(paths ...string) RequestDecoratorFunc {
	return func(r *request) {
		for _, p := range paths {
			r.query.Add("include", p)
		}
	}
}

func Adapter(name string) RequestDecoratorFunc {
	return func(r *request) {
		r.query.Set("adapter", name)
	}
}

func ViewerRole(role string) RequestDecoratorFunc {
	return func(r *request) {
		r.headers.Set("X-Viewer-Role", role)
	}
}

func Debug(enabled string) func(*rendererClient) {
	return func(c *rendererClient) {
		c.debug = (enabled == "true")
	}
}

func NewRendererClient(baseURL string, options ...func(*rendererClient)) RendererClient {
	c := &rendererClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const (
	TraceAttributeResourceType string = "resource-type"
	TraceAttributeResourceID   string = "resource-id"
)

var tracer = otel.Tracer("resource-renderer-client")

type rendererClient struct {
	baseURL    string
	debug      bool
	httpClient http.Client
}

func (c *rendererClient) RetrieveResource(ctx context.Context, resourceType, id string, parameters ...RequestDecoratorFunc) (doc any, err error) {
	ctx, span := tracer.Start(ctx, "retrieve-resource",
		trace.WithAttributes(attribute.String(TraceAttributeResourceType, resourceType)),
		trace.WithAttributes(attribute.String(TraceAttributeResourceID, id)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	endpoint := c.baseURL + "/api/v1/" + url.PathEscape(resourceType) + "/" + url.PathEscape(id)

	return c.getDocument(ctx, endpoint, parameters)
}

func (c *rendererClient) QueryCollection(ctx context.Context, resourceType string, parameters ...RequestDecoratorFunc) (doc any, err error) {
	ctx, span := tracer.Start(ctx, "query-collection",
		trace.WithAttributes(attribute.String(TraceAttributeResourceType, resourceType)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	return c.getDocument(ctx, c.baseURL+"/api/v1/"+url.PathEscape(resourceType), parameters)
}

func (c *rendererClient) ResourceTypes(ctx context.Context) (types []string, err error) {
	ctx, span := tracer.Start(ctx, "resource-types")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	doc, err := c.getDocument(ctx, c.baseURL+"/api/v1/types", nil)
	if err != nil {
		return nil, err
	}

	items, ok := doc.([]any)
	if !ok {
		err = fmt.Errorf("unexpected resource types document %T (%w)", doc, ErrBadResponse)
		return nil, err
	}

	types = make([]string, 0, len(items))
	for _, item := range items {
		types = append(types, fmt.Sprint(item))
	}

	return types, nil
}

func (c *rendererClient) getDocument(ctx context.Context, endpoint string, parameters []RequestDecoratorFunc) (any, error) {
	r := &request{query: url.Values{}, headers: http.Header{}}
	for _, decorate := range parameters {
		decorate(r)
	}

	if len(r.query) > 0 {
		endpoint = endpoint + "?" + r.query.Encode()
	}

	resp, body, err := c.call(ctx, http.MethodGet, endpoint, r.headers)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, NewErrorFromProblemReport(resp.StatusCode, body)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response code %d (%w)", resp.StatusCode, ErrInternal)
	}

	var doc any
	if err = json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %s (%w)", err.Error(), ErrBadResponse)
	}

	return doc, nil
}

func (c *rendererClient) call(ctx context.Context, method, endpoint string, headers http.Header) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), ErrInternal)
	}

	req.Header.Add("Accept", "application/json")
	for header, values := range headers {
		for _, val := range values {
			req.Header.Add(header, val)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), ErrRequest)
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), ErrBadResponse)
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
	}

	return resp, respBody, nil
}
