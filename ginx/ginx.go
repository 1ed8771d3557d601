// Package ginx plugs the exception filter into gin.
//
// Handlers report failures with c.Error(err); Middleware resolves the last
// one after the chain returns, unless the handler already wrote a response.
package ginx

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/filterx"
	"github.com/Abraxas-365/exceptionx/hostx"
)

type host struct {
	c      *gin.Context
	status int
}

func (h *host) Context() context.Context { return h.c.Request.Context() }
func (h *host) Path() string             { return h.c.Request.URL.RequestURI() }
func (h *host) Status(code int)          { h.status = code }

func (h *host) JSON(body any) error {
	h.c.AbortWithStatusJSON(h.status, body)
	return nil
}

func (h *host) Commit() {
	if !h.c.Writer.Written() {
		h.c.AbortWithStatus(h.status)
	}
}

func newHost(c *gin.Context) *host {
	return &host{c: c, status: http.StatusOK}
}

// Context returns the gin context behind a host created by this package,
// for handlers that write their own body.
func Context(h hostx.Host) (*gin.Context, bool) {
	hh, ok := h.(*host)
	if !ok {
		return nil, false
	}
	return hh.c, true
}

// Middleware resolves errors attached to the context and recovered panics
// through f.
func Middleware(f *filterx.Filter) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", rec)
			}
			f.Catch(err, newHost(c))
		}()

		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		f.Catch(last.Err, newHost(c))
	}
}

// NoRoute returns a handler that reports unmatched routes as 404 errors
func NoRoute(f *filterx.Filter) gin.HandlerFunc {
	return func(c *gin.Context) {
		f.Catch(errx.NewHTTPError(fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path), http.StatusNotFound), newHost(c))
	}
}

// Install registers Middleware and NoRoute on the engine
func Install(engine *gin.Engine, f *filterx.Filter) {
	engine.Use(Middleware(f))
	engine.NoRoute(NoRoute(f))
}
