package problems

import (
	"encoding/json"
	"net/http"
)

// ProblemDetails stores details about a certain problem according to RFC7807
// See https://tools.ietf.org/html/rfc7807
type ProblemDetails interface {
	ContentType() string
	Type() string
	Title() string
	Detail() string
	MarshalJSON() ([]byte, error)
	WriteResponse(w http.ResponseWriter)
}

type problemDetailsImpl struct {
	typ    string
	title  string
	detail string
	code   int
}

const (
	// ProblemReportContentType as required by https://tools.ietf.org/html/rfc7807
	ProblemReportContentType string = "application/problem+json"

	problemTypeBase string = "https://diwise.io/problems/"
)

func newProblem(name, title, detail string, code int) ProblemDetails {
	return &problemDetailsImpl{
		typ:    problemTypeBase + name,
		title:  title,
		detail: detail,
		code:   code,
	}
}

// NewBadRequestData reports that the request includes input data which does not meet the requirements of the operation
func NewBadRequestData(detail string) ProblemDetails {
	return newProblem("BadRequestData", "Bad Request Data", detail, http.StatusBadRequest)
}

func ReportNewBadRequestData(w http.ResponseWriter, detail string) {
	NewBadRequestData(detail).WriteResponse(w)
}

// NewInternalError reports that there has been an error during the operation execution
func NewInternalError(detail string) ProblemDetails {
	return newProblem("InternalError", "Internal Error", detail, http.StatusInternalServerError)
}

func ReportNewInternalError(w http.ResponseWriter, detail string) {
	NewInternalError(detail).WriteResponse(w)
}

// NewNotFound reports that the requested resource or resource type does not exist
func NewNotFound(detail string) ProblemDetails {
	return newProblem("ResourceNotFound", "Not Found", detail, http.StatusNotFound)
}

func ReportNotFoundError(w http.ResponseWriter, detail string) {
	NewNotFound(detail).WriteResponse(w)
}

func (p *problemDetailsImpl) ContentType() string {
	return ProblemReportContentType
}

func (p *problemDetailsImpl) Type() string {
	return p.typ
}

func (p *problemDetailsImpl) Title() string {
	return p.title
}

func (p *problemDetailsImpl) Detail() string {
	return p.detail
}

func (p *problemDetailsImpl) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Status int    `json:"status"`
		Detail string `json:"detail"`
	}{
		Type:   p.typ,
		Title:  p.title,
		Status: p.responseCode(),
		Detail: p.detail,
	})
}

func (p *problemDetailsImpl) responseCode() int {
	if p.code != 0 {
		return p.code
	}
	return http.StatusBadRequest
}

// WriteResponse writes the contents of this instance to a http.ResponseWriter
func (p *problemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.responseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}
