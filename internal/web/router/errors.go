package router

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error  ErrorDetail `json:"error"`
	Status int         `json:"status"`
	Path   string      `json:"path,omitempty"`
	Method string      `json:"method,omitempty"`
}

// ErrorDetail contains detailed error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorHandler provides the JSON error handlers
type ErrorHandler struct {
	// ShowDetails adds the request path and method to responses
	ShowDetails bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(showDetails bool) *ErrorHandler {
	return &ErrorHandler{ShowDetails: showDetails}
}

// NotFoundHandler answers routes the router does not know
func (eh *ErrorHandler) NotFoundHandler() http.HandlerFunc {
	return eh.handler(http.StatusNotFound, "NOT_FOUND", "The requested resource was not found")
}

// MethodNotAllowedHandler answers known routes called with the wrong method
func (eh *ErrorHandler) MethodNotAllowedHandler() http.HandlerFunc {
	return eh.handler(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The requested method is not allowed")
}

func (eh *ErrorHandler) handler(status int, code, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := ErrorResponse{
			Error:  ErrorDetail{Code: code, Message: message},
			Status: status,
		}
		if eh.ShowDetails {
			resp.Path = r.URL.Path
			resp.Method = r.Method
		}
		writeJSON(w, status, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
