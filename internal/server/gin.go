package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/toyz/pluginmeta/internal/errors"
)

// GinTransport runs the server on gin
type GinTransport struct {
	engine *gin.Engine
	chain  middlewareChain

	mu     sync.Mutex
	server *http.Server
}

// NewGinTransport creates a gin transport with panic recovery
func NewGinTransport() *GinTransport {
	engine := gin.New()
	engine.Use(gin.Recovery())
	return &GinTransport{engine: engine}
}

// Use registers middleware for routes added after the call
func (gt *GinTransport) Use(middleware MiddlewareFunc) {
	gt.chain.use(middleware)
}

// Handle registers a route
func (gt *GinTransport) Handle(method, path string, handler HandlerFunc) {
	h := gt.chain.wrap(handler)
	gt.engine.Handle(method, path, func(c *gin.Context) {
		ctx := &ginContext{c: c}
		if err := h(ctx); err != nil {
			writeError(ctx, err)
		}
	})
}

// ServeHTTP lets the transport be driven directly, as in tests
func (gt *GinTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gt.engine.ServeHTTP(w, r)
}

// Start starts the server
func (gt *GinTransport) Start(addr string) error {
	gt.mu.Lock()
	gt.server = &http.Server{Addr: addr, Handler: gt.engine}
	server := gt.server
	gt.mu.Unlock()

	if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.WrapTransportError(gt.Name(), "listen on "+addr, err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (gt *GinTransport) Stop(ctx context.Context) error {
	gt.mu.Lock()
	server := gt.server
	gt.mu.Unlock()

	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return errors.WrapTransportError(gt.Name(), "shut down", err)
	}
	return nil
}

// Name returns the adapter name
func (gt *GinTransport) Name() string {
	return AdapterGin
}

// ginContext implements RequestContext for gin
type ginContext struct {
	c *gin.Context
}

func (gc *ginContext) Method() string {
	return gc.c.Request.Method
}

func (gc *ginContext) Path() string {
	return gc.c.Request.URL.Path
}

func (gc *ginContext) Header(key string) string {
	return gc.c.GetHeader(key)
}

func (gc *ginContext) SetHeader(key, value string) {
	gc.c.Header(key, value)
}

func (gc *ginContext) Body() ([]byte, error) {
	return io.ReadAll(gc.c.Request.Body)
}

func (gc *ginContext) JSON(code int, v interface{}) error {
	gc.c.JSON(code, v)
	return nil
}

func (gc *ginContext) NoContent(code int) error {
	gc.c.Status(code)
	return nil
}

func (gc *ginContext) Get(key string) interface{} {
	value, _ := gc.c.Get(key)
	return value
}

func (gc *ginContext) Set(key string, val interface{}) {
	gc.c.Set(key, val)
}
