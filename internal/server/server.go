package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/toyz/pluginmeta/internal/extractor"
	"github.com/toyz/pluginmeta/internal/jsast"
	"github.com/toyz/pluginmeta/internal/models"
	"github.com/toyz/pluginmeta/internal/registry"
	"github.com/toyz/pluginmeta/internal/rewriter"
	"github.com/toyz/pluginmeta/internal/utils"
)

// RequestIDHeader carries the id assigned to every request
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// Logger receives the server's diagnostics
type Logger interface {
	rewriter.Logger
	Info(format string, args ...interface{})
}

// Server serves metadata extraction and plugin rewriting over HTTP
type Server struct {
	transport Transport
	extractor *extractor.Extractor
	registry  registry.PluginRegistry
	sourcemap rewriter.SourcemapOptions
	parser    *jsast.Parser
	logger    Logger
}

// Option configures a Server
type Option func(*Server)

// WithSourcemap sets the source map settings used for rewrites
func WithSourcemap(opts rewriter.SourcemapOptions) Option {
	return func(s *Server) {
		s.sourcemap = opts
	}
}

// New creates a server on transport and registers its routes
func New(transport Transport, ext *extractor.Extractor, reg registry.PluginRegistry, logger Logger, opts ...Option) *Server {
	s := &Server{
		transport: transport,
		extractor: ext,
		registry:  reg,
		parser:    jsast.NewParser(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	transport.Use(requestID)
	transport.Handle(http.MethodGet, "/healthz", s.handleHealth)
	transport.Handle(http.MethodGet, "/v1/plugins", s.handlePlugins)
	transport.Handle(http.MethodPost, "/v1/extract", s.handleExtract)
	transport.Handle(http.MethodPost, "/v1/transform", s.handleTransform)
	transport.Handle(http.MethodPost, "/v1/cache/reset", s.handleCacheReset)

	return s
}

// Transport returns the transport the server runs on
func (s *Server) Transport() Transport {
	return s.transport
}

// Start blocks serving addr until Stop is called
func (s *Server) Start(addr string) error {
	s.logger.Info("Serving on %s (%s)", addr, s.transport.Name())
	return s.transport.Start(addr)
}

// Stop shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	return s.transport.Stop(ctx)
}

// requestID tags every exchange with the caller's X-Request-ID or a new one
func requestID(next HandlerFunc) HandlerFunc {
	return func(ctx RequestContext) error {
		id := ctx.Header(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDKey, id)
		ctx.SetHeader(RequestIDHeader, id)
		return next(ctx)
	}
}

// ExtractRequest is the body of POST /v1/extract. When ID is set the dialect
// is taken from its extension.
type ExtractRequest struct {
	Code    string `json:"code"`
	Dialect string `json:"dialect,omitempty"`
	ID      string `json:"id,omitempty"`
}

// TransformRequest is the body of POST /v1/transform
type TransformRequest struct {
	Code string `json:"code"`
	ID   string `json:"id"`
}

// TransformResponse is the body of a successful transform
type TransformResponse struct {
	*rewriter.Result
	Warnings []string `json:"warnings,omitempty"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status  string           `json:"status"`
	Adapter string           `json:"adapter"`
	Plugins int              `json:"plugins"`
	Parses  int64            `json:"parses"`
	Cache   utils.CacheStats `json:"cache"`
}

func decodeBody(ctx RequestContext, v interface{}) error {
	body, err := ctx.Body()
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "BadRequest", fmt.Sprintf("failed to read request body: %v", err))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return NewHTTPError(http.StatusBadRequest, "BadRequest", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

func (s *Server) handleHealth(ctx RequestContext) error {
	return ctx.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Adapter: s.transport.Name(),
		Plugins: len(s.registry.List()),
		Parses:  s.extractor.Parses(),
		Cache:   s.extractor.CacheStats(),
	})
}

func (s *Server) handlePlugins(ctx RequestContext) error {
	plugins := s.registry.List()
	if plugins == nil {
		plugins = []models.Plugin{}
	}
	return ctx.JSON(http.StatusOK, plugins)
}

func (s *Server) handleExtract(ctx RequestContext) error {
	var req ExtractRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}

	var (
		meta models.PluginMeta
		err  error
	)
	if req.ID != "" {
		meta, err = s.extractor.ExtractModule(req.ID, req.Code)
	} else {
		meta, err = s.extractor.Extract(req.Code, models.ParseDialect(req.Dialect))
	}
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, meta)
}

func (s *Server) handleTransform(ctx RequestContext) error {
	var req TransformRequest
	if err := decodeBody(ctx, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ID) == "" {
		return NewHTTPError(http.StatusBadRequest, "BadRequest", "id is required")
	}

	logger := &requestLogger{base: s.logger}
	if id, ok := ctx.Get(requestIDKey).(string); ok {
		logger.requestID = id
	}

	engine := rewriter.NewEngine(s.registry, logger,
		rewriter.WithSourcemap(s.sourcemap),
		rewriter.WithParser(s.parser),
	)

	result := engine.Transform(req.Code, req.ID)
	if result == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	return ctx.JSON(http.StatusOK, TransformResponse{Result: result, Warnings: logger.messages()})
}

func (s *Server) handleCacheReset(ctx RequestContext) error {
	s.extractor.ResetCache()
	return ctx.JSON(http.StatusOK, s.extractor.CacheStats())
}

// requestLogger forwards engine diagnostics to the server log, tagged with
// the request id, and keeps them for the response
type requestLogger struct {
	base      rewriter.Logger
	requestID string

	mu       sync.Mutex
	captured []string
}

func (l *requestLogger) Warn(format string, args ...interface{}) {
	msg := l.capture(format, args...)
	l.base.Warn("[%s] %s", l.requestID, msg)
}

func (l *requestLogger) Error(format string, args ...interface{}) {
	msg := l.capture(format, args...)
	l.base.Error("[%s] %s", l.requestID, msg)
}

func (l *requestLogger) capture(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	l.captured = append(l.captured, msg)
	l.mu.Unlock()
	return msg
}

func (l *requestLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.captured...)
}
