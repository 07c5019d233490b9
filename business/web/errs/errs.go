// Package errs provides the error types the dispatch api hands back to
// its callers.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/dispatch/foundation/dispatch"
	"github.com/ardanlabs/dispatch/foundation/dispatch/huff"
	"github.com/ardanlabs/dispatch/foundation/selector"
	"github.com/ardanlabs/dispatch/foundation/tablestore"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap gives errors.Is access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// statuses maps the errors the dispatch packages return for bad input to
// the status reported to the caller.
var statuses = []struct {
	err    error
	status int
}{
	{selector.ErrMalformedSignature, http.StatusBadRequest},
	{dispatch.ErrDuplicateSignature, http.StatusBadRequest},
	{dispatch.ErrDuplicateSelector, http.StatusConflict},
	{dispatch.ErrInvalidConfig, http.StatusBadRequest},
	{dispatch.ErrTooManyFunctions, http.StatusBadRequest},
	{huff.ErrInvalidHandler, http.StatusBadRequest},
	{tablestore.ErrNotFound, http.StatusNotFound},
	{tablestore.ErrTooLarge, http.StatusRequestEntityTooLarge},
}

// FromDispatch wraps an error returned by the dispatch packages as a
// trusted error when it was caused by the request. Any other error is
// returned as is.
func FromDispatch(err error) error {
	for _, s := range statuses {
		if errors.Is(err, s.err) {
			return NewTrusted(err, s.status)
		}
	}
	return err
}
