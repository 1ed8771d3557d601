// Package httpx plugs the exception filter into net/http and gorilla/mux.
package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/filterx"
	"github.com/Abraxas-365/exceptionx/hostx"
)

// responseWriter records whether anything reached the client
type responseWriter struct {
	http.ResponseWriter
	wrote bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// host adapts a request/response pair to hostx.Host. The status is held
// until JSON or Commit writes it.
type host struct {
	w      *responseWriter
	r      *http.Request
	status int
}

func newHost(w http.ResponseWriter, r *http.Request) *host {
	return &host{w: &responseWriter{ResponseWriter: w}, r: r, status: http.StatusOK}
}

func (h *host) Context() context.Context { return h.r.Context() }
func (h *host) Path() string             { return h.r.URL.RequestURI() }
func (h *host) Status(code int)          { h.status = code }

func (h *host) JSON(body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	h.w.Header().Set("Content-Type", "application/json")
	h.w.WriteHeader(h.status)
	_, err = h.w.Write(data)
	return err
}

func (h *host) Commit() {
	if !h.w.wrote {
		h.w.WriteHeader(h.status)
	}
}

// ResponseWriter returns the writer behind a host created by this package,
// for handlers that write their own body.
func ResponseWriter(h hostx.Host) (http.ResponseWriter, bool) {
	hh, ok := h.(*host)
	if !ok {
		return nil, false
	}
	return hh.w, true
}

// Request returns the request behind a host created by this package
func Request(h hostx.Host) (*http.Request, bool) {
	hh, ok := h.(*host)
	if !ok {
		return nil, false
	}
	return hh.r, true
}

// HandlerFunc is an http handler that reports failure by returning an error
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle adapts h to http.Handler, resolving returned errors through f
func Handle(f *filterx.Filter, h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			f.Catch(err, newHost(w, r))
		}
	})
}

// Catch resolves err through f for a plain net/http handler
func Catch(f *filterx.Filter, w http.ResponseWriter, r *http.Request, err error) {
	f.Catch(err, newHost(w, r))
}

// Recover returns middleware that turns panics into errors resolved by f.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recover(f *filterx.Filter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
				f.Catch(err, newHost(w, r))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Install routes the router's 404 and 405 responses through f and adds
// the Recover middleware.
func Install(router *mux.Router, f *filterx.Filter) {
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.Catch(errx.NewHTTPError(fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path), http.StatusNotFound), newHost(w, r))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.Catch(errx.NewHTTPError(http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed), newHost(w, r))
	})
	router.Use(Recover(f))
}
