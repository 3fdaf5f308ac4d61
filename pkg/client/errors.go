package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var ErrBadRequest = errors.New("bad request")
var ErrBadResponse = errors.New("bad response")
var ErrInternal = errors.New("internal error")
var ErrNotFound = errors.New("not found")
var ErrRequest = errors.New("request failed")

type problemError struct {
	detail string
	target error
}

func (p problemError) Error() string        { return p.detail }
func (p problemError) Is(target error) bool { return target == p.target }

// NewErrorFromProblemReport converts a RFC7807 problem report into an error
// that can be matched against the sentinel errors of this package
func NewErrorFromProblemReport(code int, body []byte) error {
	report := &struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}{}

	err := json.Unmarshal(body, report)
	if err != nil {
		return fmt.Errorf("failed to process problem report: %s (%w)", err.Error(), ErrBadResponse)
	}

	switch {
	case code == http.StatusNotFound || strings.HasSuffix(report.Type, "/ResourceNotFound"):
		return problemError{detail: report.Detail, target: ErrNotFound}
	case code == http.StatusBadRequest || strings.HasSuffix(report.Type, "/BadRequestData"):
		return problemError{detail: report.Detail, target: ErrBadRequest}
	}

	return problemError{
		detail: fmt.Sprintf("[code: %d] problem report of type \"%s\" with detail \"%s\" received", code, report.Type, report.Detail),
		target: ErrInternal,
	}
}
