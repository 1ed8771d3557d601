// Package fiberx plugs the exception filter into Fiber.
package fiberx

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/filterx"
	"github.com/Abraxas-365/exceptionx/hostx"
)

// host adapts a Fiber context to hostx.Host
type host struct {
	c *fiber.Ctx
}

func (h host) Context() context.Context { return h.c.UserContext() }
func (h host) Path() string             { return h.c.OriginalURL() }
func (h host) Status(code int)          { h.c.Status(code) }
func (h host) JSON(body any) error      { return h.c.JSON(body) }

// Ctx returns the Fiber context behind a host created by this package,
// for handlers that write their own body.
func Ctx(h hostx.Host) (*fiber.Ctx, bool) {
	hh, ok := h.(host)
	if !ok {
		return nil, false
	}
	return hh.c, true
}

// ErrorHandler returns a fiber.ErrorHandler that resolves every error
// through f. Fiber's own *fiber.Error values are treated as framework
// HTTP errors.
func ErrorHandler(f *filterx.Filter) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		f.Catch(FromFiber(err), host{c: c})
		return nil
	}
}

// FromFiber converts a *fiber.Error that carries no kind of its own into an
// *errx.HTTPError. Other errors are returned unchanged.
func FromFiber(err error) error {
	if errx.KindOf(err) != errx.KindError {
		return err
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return errx.NewHTTPError(fe.Message, fe.Code).WithCause(err)
	}
	return err
}

// New creates a Fiber app wired to f, with panics recovered into errors
func New(f *filterx.Filter, config ...fiber.Config) *fiber.App {
	cfg := fiber.Config{}
	if len(config) > 0 {
		cfg = config[0]
	}
	cfg.ErrorHandler = ErrorHandler(f)

	app := fiber.New(cfg)
	app.Use(recover.New())
	return app
}
