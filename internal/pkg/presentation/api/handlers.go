package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/diwise/resource-serializer/internal/pkg/application/renderer"
	"github.com/diwise/resource-serializer/internal/pkg/presentation/api/problems"
	"github.com/diwise/resource-serializer/pkg/serialization/adapters"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/objx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("resource-renderer/api")

const (
	JSONContentType    string = "application/json"
	JSONAPIContentType string = "application/vnd.api+json"

	ViewerRoleHeader string = "X-Viewer-Role"

	TraceAttributeResourceType string = "resource-type"
	TraceAttributeAdapter      string = "adapter"
)

func RegisterHandlers(ctx context.Context, r chi.Router, app renderer.Renderer) error {
	logger := logging.GetFromContext(ctx)
	logger.Info("registering api handlers", "types", strings.Join(app.ResourceTypes(), ","))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/types", NewRetrieveResourceTypesHandler(app))
		r.Get("/{type}", NewRetrieveCollectionHandler(app))
		r.Get("/{type}/{id}", NewRetrieveResourceHandler(app))
	})

	return nil
}

func NewRetrieveResourceTypesHandler(app renderer.Renderer) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDocument(w, r, JSONContentType, app.ResourceTypes())
	})
}

func NewRetrieveCollectionHandler(app renderer.Renderer) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		resourceType := chi.URLParam(r, "type")
		params := paramsFromRequest(r)

		ctx, span := tracer.Start(r.Context(), "retrieve-collection")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		labelRequest(ctx, resourceType, params)

		var doc any
		doc, err = app.RenderCollection(ctx, resourceType, params)
		if err != nil {
			reportError(ctx, w, err)
			return
		}

		writeDocument(w, r, contentTypeFor(app.Adapter(params.Adapter)), doc)
	})
}

func NewRetrieveResourceHandler(app renderer.Renderer) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		resourceType := chi.URLParam(r, "type")
		resourceID := chi.URLParam(r, "id")
		params := paramsFromRequest(r)

		ctx, span := tracer.Start(r.Context(), "retrieve-resource")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		labelRequest(ctx, resourceType, params)

		var doc any
		doc, err = app.RenderResource(ctx, resourceType, resourceID, params)
		if err != nil {
			reportError(ctx, w, err)
			return
		}

		writeDocument(w, r, contentTypeFor(app.Adapter(params.Adapter)), doc)
	})
}

// paramsFromRequest reads the include and adapter query parameters. Repeated
// include parameters are joined into a single comma separated list.
func paramsFromRequest(r *http.Request) renderer.Params {
	query := r.URL.Query()

	params := renderer.Params{
		Include: strings.Join(query["include"], ","),
		Adapter: query.Get("adapter"),
		Options: objx.Map{},
	}

	if role := r.Header.Get(ViewerRoleHeader); role != "" {
		params.Options.Set("viewer", map[string]any{"role": role})
	}

	return params
}

func labelRequest(ctx context.Context, resourceType string, params renderer.Params) {
	if labeler, found := otelhttp.LabelerFromContext(ctx); found {
		labeler.Add(attribute.String(TraceAttributeResourceType, resourceType))
		labeler.Add(attribute.String(TraceAttributeAdapter, params.Adapter))
	}
}

func contentTypeFor(adapter string) string {
	if adapters.Normalize(adapter) == adapters.JSONAPIAdapter {
		return JSONAPIContentType
	}
	return JSONContentType
}

func reportError(ctx context.Context, w http.ResponseWriter, err error) {
	var notFound renderer.NotFoundError
	var badRequest renderer.BadRequestDataError

	switch {
	case errors.As(err, &notFound):
		problems.ReportNotFoundError(w, notFound.Error())
	case errors.As(err, &badRequest):
		problems.ReportNewBadRequestData(w, badRequest.Error())
	default:
		logging.GetFromContext(ctx).Error("failed to render resource", "err", err.Error())
		problems.ReportNewInternalError(w, "failed to render resource")
	}
}

func writeDocument(w http.ResponseWriter, r *http.Request, contentType string, doc any) {
	body, err := json.Marshal(doc)
	if err != nil {
		logging.GetFromContext(r.Context()).Error("failed to marshal document", "err", err.Error())
		problems.ReportNewInternalError(w, "failed to marshal document")
		return
	}

	w.Header().Add("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
