// Package server exposes the extractor and rewrite engine over HTTP on a
// choice of web frameworks.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/toyz/pluginmeta/internal/errors"
)

// RequestContext is the framework-agnostic view of one HTTP exchange
type RequestContext interface {
	Method() string
	Path() string
	Header(key string) string
	SetHeader(key, value string)
	Body() ([]byte, error)
	JSON(code int, v interface{}) error
	NoContent(code int) error
	Get(key string) interface{}
	Set(key string, val interface{})
}

// HandlerFunc handles a request. A returned error is rendered as a JSON
// error response.
type HandlerFunc func(ctx RequestContext) error

// MiddlewareFunc wraps a handler
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// Transport is a web framework the server can run on
type Transport interface {
	// Use registers middleware for routes added after the call
	Use(middleware MiddlewareFunc)
	Handle(method, path string, handler HandlerFunc)

	// Start blocks until the server stops. A graceful Stop makes it
	// return nil.
	Start(addr string) error
	Stop(ctx context.Context) error

	Name() string
}

// Adapter names accepted by NewTransport
const (
	AdapterGin   = "gin"
	AdapterEcho  = "echo"
	AdapterFiber = "fiber"
)

// NewTransport creates the transport for an adapter name
func NewTransport(adapter string) (Transport, error) {
	switch strings.ToLower(adapter) {
	case AdapterGin:
		return NewGinTransport(), nil
	case AdapterEcho:
		return NewEchoTransport(), nil
	case AdapterFiber:
		return NewFiberTransport(), nil
	default:
		return nil, errors.Newf(errors.ConfigurationErrorCode, "unknown server adapter %q", adapter).
			WithSuggestion("Use one of gin, echo or fiber")
	}
}

// middlewareChain collects middleware and applies it to handlers
type middlewareChain struct {
	middlewares []MiddlewareFunc
}

func (m *middlewareChain) use(middleware MiddlewareFunc) {
	m.middlewares = append(m.middlewares, middleware)
}

// wrap applies middleware so the first registered runs outermost
func (m *middlewareChain) wrap(handler HandlerFunc) HandlerFunc {
	for i := len(m.middlewares) - 1; i >= 0; i-- {
		handler = m.middlewares[i](handler)
	}
	return handler
}

// HTTPError is an error with a response status
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates an HTTPError
func NewHTTPError(status int, code, message string) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message}
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error       string   `json:"error"`
	Code        string   `json:"code"`
	Location    string   `json:"location,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	RequestID   string   `json:"requestId,omitempty"`
}

// writeError renders err. Domain errors become 422 responses carrying their
// code and location; anything else is a 500.
func writeError(ctx RequestContext, err error) {
	resp := ErrorResponse{Error: err.Error()}
	if id, ok := ctx.Get(requestIDKey).(string); ok {
		resp.RequestID = id
	}

	status := http.StatusInternalServerError

	var httpErr *HTTPError
	var domainErr errors.PluginMetaError
	switch {
	case stderrors.As(err, &httpErr):
		status = httpErr.Status
		resp.Code = httpErr.Code
	case stderrors.As(err, &domainErr):
		resp.Code = domainErr.ErrorCode().String()
		if !domainErr.Location().IsEmpty() {
			resp.Location = domainErr.Location().String()
		}
		resp.Suggestions = domainErr.Suggestions()
		switch errors.CodeOf(err) {
		case errors.InvalidMetadataErrorCode, errors.InvalidDependsOnErrorCode, errors.ParseErrorCode:
			status = http.StatusUnprocessableEntity
		}
	default:
		resp.Code = errors.UnknownErrorCode.String()
	}

	_ = ctx.JSON(status, resp)
}
