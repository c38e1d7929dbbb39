package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/pluginmeta/internal/errors"
)

// EchoTransport runs the server on echo
type EchoTransport struct {
	engine *echo.Echo
	chain  middlewareChain
}

// NewEchoTransport creates an echo transport without the startup banner
func NewEchoTransport() *EchoTransport {
	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	return &EchoTransport{engine: engine}
}

// Use registers middleware for routes added after the call
func (et *EchoTransport) Use(middleware MiddlewareFunc) {
	et.chain.use(middleware)
}

// Handle registers a route
func (et *EchoTransport) Handle(method, path string, handler HandlerFunc) {
	h := et.chain.wrap(handler)
	et.engine.Add(method, path, func(c echo.Context) error {
		ctx := &echoContext{c: c}
		if err := h(ctx); err != nil {
			writeError(ctx, err)
		}
		return nil
	})
}

// ServeHTTP lets the transport be driven directly, as in tests
func (et *EchoTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	et.engine.ServeHTTP(w, r)
}

// Start starts the server
func (et *EchoTransport) Start(addr string) error {
	if err := et.engine.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.WrapTransportError(et.Name(), "listen on "+addr, err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (et *EchoTransport) Stop(ctx context.Context) error {
	if err := et.engine.Shutdown(ctx); err != nil {
		return errors.WrapTransportError(et.Name(), "shut down", err)
	}
	return nil
}

// Name returns the adapter name
func (et *EchoTransport) Name() string {
	return AdapterEcho
}

// echoContext implements RequestContext for echo
type echoContext struct {
	c echo.Context
}

func (ec *echoContext) Method() string {
	return ec.c.Request().Method
}

func (ec *echoContext) Path() string {
	return ec.c.Request().URL.Path
}

func (ec *echoContext) Header(key string) string {
	return ec.c.Request().Header.Get(key)
}

func (ec *echoContext) SetHeader(key, value string) {
	ec.c.Response().Header().Set(key, value)
}

func (ec *echoContext) Body() ([]byte, error) {
	return io.ReadAll(ec.c.Request().Body)
}

func (ec *echoContext) JSON(code int, v interface{}) error {
	return ec.c.JSON(code, v)
}

func (ec *echoContext) NoContent(code int) error {
	return ec.c.NoContent(code)
}

func (ec *echoContext) Get(key string) interface{} {
	return ec.c.Get(key)
}

func (ec *echoContext) Set(key string, val interface{}) {
	ec.c.Set(key, val)
}
