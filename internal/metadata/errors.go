package metadata

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the error class a render was already started for
type ErrorType string

const (
	// ErrorTypeNone means a normal render
	ErrorTypeNone ErrorType = ""
	// ErrorTypeNotFound means the render is for a not-found fallback
	ErrorTypeNotFound ErrorType = "not-found"
	// ErrorTypeRedirect means the render is for a redirect
	ErrorTypeRedirect ErrorType = "redirect"
)

// Convention maps an error type to the error convention the resolver is run
// with. Redirects have no metadata convention of their own.
func (t ErrorType) Convention() ErrorConvention {
	if t == ErrorTypeNotFound {
		return ConventionNotFound
	}
	return ConventionNone
}

// ErrorConvention selects which segment module supplies metadata
type ErrorConvention string

const (
	// ConventionNone uses layouts and pages
	ConventionNone ErrorConvention = ""
	// ConventionNotFound uses not-found modules where segments define one
	ConventionNotFound ErrorConvention = "not-found"
)

// HTTPAccessError signals that the requested resource should be rendered as
// an HTTP access fallback (currently only 404)
type HTTPAccessError struct {
	Status int
}

func (e *HTTPAccessError) Error() string {
	return fmt.Sprintf("http access fallback: %d %s", e.Status, http.StatusText(e.Status))
}

// NotFound returns the error a metadata function raises to request the
// not-found fallback
func NotFound() error {
	return &HTTPAccessError{Status: http.StatusNotFound}
}

// IsNotFound reports whether err is (or wraps) a not-found condition
func IsNotFound(err error) bool {
	var ae *HTTPAccessError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// RedirectError asks the renderer to redirect to URL
type RedirectError struct {
	URL    string
	Status int
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect %d to %s", e.Status, e.URL)
}

// Redirect returns a temporary redirect error
func Redirect(url string) error {
	return &RedirectError{URL: url, Status: http.StatusTemporaryRedirect}
}

// IsRedirect reports whether err is (or wraps) a redirect
func IsRedirect(err error) bool {
	var re *RedirectError
	return errors.As(err, &re)
}

// DynamicUsageError is returned when request-time data is read while a route
// is being generated statically
type DynamicUsageError struct {
	Route      string
	Expression string
}

func (e *DynamicUsageError) Error() string {
	return fmt.Sprintf("route %s used %s during static generation", e.Route, e.Expression)
}

// IsDynamicUsage reports whether err is (or wraps) a DynamicUsageError
func IsDynamicUsage(err error) bool {
	var de *DynamicUsageError
	return errors.As(err, &de)
}
