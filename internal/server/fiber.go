package server

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/toyz/pluginmeta/internal/errors"
)

// FiberTransport runs the server on fiber
type FiberTransport struct {
	app   *fiber.App
	chain middlewareChain
}

// NewFiberTransport creates a fiber transport. Errors that escape a handler
// are rendered in the same shape as handler errors.
func NewFiberTransport() *FiberTransport {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(ErrorResponse{
				Error: err.Error(),
				Code:  http.StatusText(code),
			})
		},
	})
	return &FiberTransport{app: app}
}

// Use registers middleware for routes added after the call
func (ft *FiberTransport) Use(middleware MiddlewareFunc) {
	ft.chain.use(middleware)
}

// Handle registers a route
func (ft *FiberTransport) Handle(method, path string, handler HandlerFunc) {
	h := ft.chain.wrap(handler)
	ft.app.Add(method, path, func(c *fiber.Ctx) error {
		ctx := &fiberContext{c: c}
		if err := h(ctx); err != nil {
			writeError(ctx, err)
		}
		return nil
	})
}

// App returns the underlying fiber application
func (ft *FiberTransport) App() *fiber.App {
	return ft.app
}

// Start starts the server
func (ft *FiberTransport) Start(addr string) error {
	if err := ft.app.Listen(addr); err != nil {
		return errors.WrapTransportError(ft.Name(), "listen on "+addr, err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (ft *FiberTransport) Stop(ctx context.Context) error {
	if err := ft.app.ShutdownWithContext(ctx); err != nil {
		return errors.WrapTransportError(ft.Name(), "shut down", err)
	}
	return nil
}

// Name returns the adapter name
func (ft *FiberTransport) Name() string {
	return AdapterFiber
}

// fiberContext implements RequestContext for fiber
type fiberContext struct {
	c *fiber.Ctx
}

func (fc *fiberContext) Method() string {
	return fc.c.Method()
}

func (fc *fiberContext) Path() string {
	return fc.c.Path()
}

func (fc *fiberContext) Header(key string) string {
	return fc.c.Get(key)
}

func (fc *fiberContext) SetHeader(key, value string) {
	fc.c.Set(key, value)
}

// Body copies the request body; fiber reuses its buffers after the handler
// returns
func (fc *fiberContext) Body() ([]byte, error) {
	return append([]byte(nil), fc.c.Body()...), nil
}

func (fc *fiberContext) JSON(code int, v interface{}) error {
	return fc.c.Status(code).JSON(v)
}

func (fc *fiberContext) NoContent(code int) error {
	return fc.c.SendStatus(code)
}

func (fc *fiberContext) Get(key string) interface{} {
	return fc.c.Locals(key)
}

func (fc *fiberContext) Set(key string, val interface{}) {
	fc.c.Locals(key, val)
}
