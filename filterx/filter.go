package filterx

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/handlerx"
	"github.com/Abraxas-365/exceptionx/hostx"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Response is the body written for every error the filter handles itself
type Response struct {
	StatusCode int    `json:"statusCode"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
	Path       string `json:"path"`
	Timestamp  string `json:"timestamp"`
	Trace      string `json:"trace,omitempty"`
}

// Filter turns any error into a Response, unless a registered handler
// claims the error first.
type Filter struct {
	dispatcher *handlerx.Dispatcher
	dev        bool
	logger     Logger
	now        func() time.Time
}

// Option configures a Filter
type Option func(*Filter)

// WithDevMode lets traces through to the response
func WithDevMode(dev bool) Option {
	return func(f *Filter) { f.dev = dev }
}

// WithLogger sets the sink for error records. Nil disables logging.
func WithLogger(logger Logger) Option {
	return func(f *Filter) { f.logger = logger }
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(f *Filter) {
		if now != nil {
			f.now = now
		}
	}
}

// New creates a Filter. A nil dispatcher means no custom handlers.
func New(dispatcher *handlerx.Dispatcher, opts ...Option) *Filter {
	if dispatcher == nil {
		dispatcher = handlerx.NewDispatcher()
	}
	f := &Filter{
		dispatcher: dispatcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dispatcher returns the handler registry consulted before normalization
func (f *Filter) Dispatcher() *handlerx.Dispatcher { return f.dispatcher }

// DevMode reports whether traces are included in responses
func (f *Filter) DevMode() bool { return f.dev }

// Catch resolves err into a response on host.
//
// A handler matched by the dispatcher owns the response entirely and nothing
// else runs. Otherwise the error is classified, logged and written as a
// Response. Catch never panics on a logging failure and never returns the
// error to the caller.
func (f *Filter) Catch(err error, host hostx.Host) {
	if h, ok := f.dispatcher.Handler(err); ok {
		h(err, host)
		// a handler that only set a status still owns the response
		if c, ok := host.(hostx.Committer); ok {
			c.Commit()
		}
		return
	}

	resp, diag := f.normalize(err, host.Path())

	f.annotateSpan(err, host, resp)
	f.log(resp, diag)

	host.Status(resp.StatusCode)
	if werr := host.JSON(resp); werr != nil {
		f.logWriteFailure(resp, werr)
	}
}

// Normalize classifies err and builds its Response without writing it
func (f *Filter) Normalize(err error, path string) Response {
	resp, _ := f.normalize(err, path)
	return resp
}

// normalize also returns the exception's trace for the log record
func (f *Filter) normalize(err error, path string) (Response, string) {
	resp := Response{
		StatusCode: errx.DefaultStatus,
		ErrorCode:  errx.DefaultCode,
		Message:    errx.DefaultMessage,
		Path:       path,
		Timestamp:  f.now().UTC().Format(TimestampFormat),
	}

	var diag string
	var exc *errx.Exception
	var httpErr *errx.HTTPError
	switch {
	case errors.As(err, &exc):
		resp.StatusCode = exc.StatusCode
		resp.ErrorCode = exc.Code
		resp.Message = exc.Message
		diag = exc.Trace
	case errors.As(err, &httpErr):
		resp.StatusCode = httpErr.Status
		resp.Message = bodyMessage(httpErr.Body)
	}

	if f.dev && diag != "" {
		resp.Trace = diag
	}
	return resp, diag
}

// bodyMessage extracts a client message from a framework error body.
// A structured message field wins over the body's own Error or String.
func bodyMessage(body any) string {
	switch b := body.(type) {
	case nil:
		return errx.DefaultMessage
	case string:
		return b
	}

	data, err := json.Marshal(body)
	if err == nil {
		var fields map[string]any
		if json.Unmarshal(data, &fields) == nil {
			if m, ok := fieldMessage(fields["message"]); ok {
				return m
			}
		}
	}

	switch b := body.(type) {
	case error:
		return b.Error()
	case fmt.Stringer:
		return b.String()
	}
	if err != nil {
		return fmt.Sprintf("%v", body)
	}
	return string(data)
}

// fieldMessage formats a decoded message field. Empty, zero and false
// values count as absent.
func fieldMessage(v any) (string, bool) {
	switch m := v.(type) {
	case nil:
		return "", false
	case string:
		return m, m != ""
	case []any:
		if len(m) == 0 {
			return "", false
		}
		parts := make([]string, len(m))
		for i, p := range m {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ", "), true
	case float64:
		return fmt.Sprint(m), m != 0
	case bool:
		return fmt.Sprint(m), m
	default:
		data, err := json.Marshal(m)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}

func (f *Filter) log(resp Response, diag string) {
	if f.logger == nil {
		return
	}
	defer func() { _ = recover() }()

	f.logger.Error(Record{
		Message:    resp.Message,
		ErrorCode:  resp.ErrorCode,
		Path:       resp.Path,
		Trace:      diag,
		IncidentID: uuid.NewString(),
	})
}

func (f *Filter) logWriteFailure(resp Response, err error) {
	if f.logger == nil {
		return
	}
	defer func() { _ = recover() }()

	f.logger.Error(Record{
		Message:    fmt.Sprintf("writing error response: %v", err),
		ErrorCode:  resp.ErrorCode,
		Path:       resp.Path,
		IncidentID: uuid.NewString(),
	})
}

func (f *Filter) annotateSpan(err error, host hostx.Host, resp Response) {
	ctx := host.Context()
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, resp.Message)
	span.SetAttributes(
		attribute.String("error.code", resp.ErrorCode),
		attribute.Int("http.response.status_code", resp.StatusCode),
	)
}
