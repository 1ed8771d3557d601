package errx

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"sync/atomic"
)

const (
	// DefaultCode is the error code reported for anything not in the registry
	DefaultCode = "UNKNOWN_ERROR"

	// DefaultMessage is the client message for unclassified failures
	DefaultMessage = "An unexpected error occurred"

	// DefaultStatus is the status reported for unregistered and unclassified failures
	DefaultStatus = http.StatusInternalServerError
)

// ErrNotInitialized is the panic value raised when an Exception is built
// before the factory has a registry.
var ErrNotInitialized = errors.New("errx: exception factory used before initialization")

// Exception is an application level failure resolved against a Registry
type Exception struct {
	Code       string
	StatusCode int
	Message    string
	Trace      string

	kind  *Kind
	cause error
}

// Error implements the error interface
func (e *Exception) Error() string {
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// Kind implements Kinded
func (e *Exception) Kind() *Kind {
	if e.kind != nil {
		return e.kind
	}
	return KindException
}

// Unwrap returns the underlying cause
func (e *Exception) Unwrap() error { return e.cause }

// Is matches another *Exception with the same code
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Option configures an Exception at construction time
type Option func(*exceptionOptions)

type exceptionOptions struct {
	trace     string
	withStack bool
	kind      *Kind
	cause     error
}

// WithTrace attaches diagnostic text. It is kept only in dev mode.
func WithTrace(trace string) Option {
	return func(o *exceptionOptions) { o.trace = trace }
}

// WithStack captures the calling goroutine's stack as the trace.
// It is kept only in dev mode.
func WithStack() Option {
	return func(o *exceptionOptions) { o.withStack = true }
}

// WithKind gives the exception a more specific kind for handler dispatch
func WithKind(kind *Kind) Option {
	return func(o *exceptionOptions) { o.kind = kind }
}

// WithCause wraps an underlying error
func WithCause(cause error) Option {
	return func(o *exceptionOptions) { o.cause = cause }
}

// Factory builds Exceptions against one registry and one dev mode flag
type Factory struct {
	registry *Registry
	dev      bool
}

// NewFactory creates a factory bound to a registry
func NewFactory(registry *Registry, dev bool) *Factory {
	return &Factory{registry: registry, dev: dev}
}

// Registry returns the registry the factory resolves codes against
func (f *Factory) Registry() *Registry {
	if f == nil {
		return nil
	}
	return f.registry
}

// DevMode reports whether traces are retained
func (f *Factory) DevMode() bool {
	return f != nil && f.dev
}

// New resolves errorOrCode against the registry.
//
// Unregistered codes are not an error: the exception gets DefaultStatus,
// DefaultCode and errorOrCode verbatim as its message. New panics with
// ErrNotInitialized when the factory has no registry.
func (f *Factory) New(errorOrCode string, opts ...Option) *Exception {
	if f == nil || f.registry == nil {
		panic(ErrNotInitialized)
	}

	var o exceptionOptions
	for _, opt := range opts {
		opt(&o)
	}

	e := &Exception{
		Code:       DefaultCode,
		StatusCode: DefaultStatus,
		Message:    errorOrCode,
		kind:       o.kind,
		cause:      o.cause,
	}
	if def, ok := f.registry.Get(errorOrCode); ok {
		e.Code = def.Code
		e.StatusCode = def.StatusCode
		e.Message = def.Message
	}

	if f.dev {
		e.Trace = o.trace
		if o.withStack && e.Trace == "" {
			e.Trace = string(debug.Stack())
		}
	}
	return e
}

var defaultFactory atomic.Pointer[Factory]

// Init sets the registry and dev mode used by the package level New.
// It is called once at startup, normally by the exceptionx module.
func Init(registry *Registry, dev bool) {
	defaultFactory.Store(NewFactory(registry, dev))
}

// Default returns the factory set by Init, or nil
func Default() *Factory {
	return defaultFactory.Load()
}

// New builds an Exception with the factory set by Init.
// It panics with ErrNotInitialized if Init has not been called.
func New(errorOrCode string, opts ...Option) *Exception {
	return defaultFactory.Load().New(errorOrCode, opts...)
}

// IsCode checks if an error is an Exception with a specific code
func IsCode(err error, code string) bool {
	var e *Exception
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsHTTPStatus checks if an error carries a specific HTTP status
func IsHTTPStatus(err error, status int) bool {
	var e *Exception
	if errors.As(err, &e) {
		return e.StatusCode == status
	}
	var h *HTTPError
	if errors.As(err, &h) {
		return h.Status == status
	}
	return false
}
