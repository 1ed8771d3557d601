package filterx

import (
	"bytes"
	"context"
	stderrors "errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/handlerx"
	"github.com/Abraxas-365/exceptionx/hostx"
	"github.com/Abraxas-365/exceptionx/logx"
)

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

type fixture struct {
	registry   *errx.Registry
	dispatcher *handlerx.Dispatcher
	exceptions *errx.Factory
	records    []Record
	filter     *Filter
}

func newFixture(dev bool) *fixture {
	fx := &fixture{
		registry: errx.NewRegistry(errx.Definition{
			Code: "TEST_ERROR", StatusCode: http.StatusBadRequest, Message: "Test error message",
		}),
		dispatcher: handlerx.NewDispatcher(),
	}
	fx.exceptions = errx.NewFactory(fx.registry, dev)
	fx.filter = New(fx.dispatcher,
		WithDevMode(dev),
		WithLogger(LoggerFunc(func(r Record) { fx.records = append(fx.records, r) })),
	)
	return fx
}

func (fx *fixture) catch(t *testing.T, err error, path string) (*hostx.Recorder, Response) {
	t.Helper()
	rec := hostx.NewRecorder(context.Background(), path)
	fx.filter.Catch(err, rec)

	var resp Response
	require.NoError(t, rec.Decode(&resp))
	return rec, resp
}

func TestFilter_RegisteredException(t *testing.T) {
	fx := newFixture(true)

	rec, resp := fx.catch(t, fx.exceptions.New("TEST_ERROR", errx.WithTrace("stack-trace")), "/test")

	assert.Equal(t, http.StatusBadRequest, rec.Code())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "TEST_ERROR", resp.ErrorCode)
	assert.Equal(t, "Test error message", resp.Message)
	assert.Equal(t, "/test", resp.Path)
	assert.Regexp(t, timestampPattern, resp.Timestamp)
	assert.Equal(t, "stack-trace", resp.Trace)
}

func TestFilter_UnregisteredException(t *testing.T) {
	fx := newFixture(true)

	rec, resp := fx.catch(t, fx.exceptions.New("UNDEFINED_ERROR", errx.WithTrace("stack-trace")), "/test")

	assert.Equal(t, http.StatusInternalServerError, rec.Code())
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_ERROR", resp.ErrorCode)
	assert.Equal(t, "UNDEFINED_ERROR", resp.Message)
	assert.Equal(t, "/test", resp.Path)
}

func TestFilter_FrameworkHTTPError(t *testing.T) {
	fx := newFixture(false)

	rec, resp := fx.catch(t, errx.NewHTTPError("Forbidden", http.StatusForbidden), "/test")

	assert.Equal(t, http.StatusForbidden, rec.Code())
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Forbidden", resp.Message)
	assert.Equal(t, errx.DefaultCode, resp.ErrorCode)
	assert.Empty(t, resp.Trace)
}

func TestFilter_DynamicRegistration(t *testing.T) {
	fx := newFixture(false)
	fx.registry.Register("DYNAMIC_ERROR", http.StatusConflict, "Dynamic error message")

	rec, resp := fx.catch(t, fx.exceptions.New("DYNAMIC_ERROR"), "/test-dynamic")

	assert.Equal(t, http.StatusConflict, rec.Code())
	assert.Equal(t, "DYNAMIC_ERROR", resp.ErrorCode)
	assert.Equal(t, "Dynamic error message", resp.Message)
	assert.Equal(t, "/test-dynamic", resp.Path)
}

func TestFilter_UnknownError(t *testing.T) {
	fx := newFixture(true)

	_, resp := fx.catch(t, stderrors.New("pq: password authentication failed"), "/test")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, errx.DefaultCode, resp.ErrorCode)
	assert.Equal(t, errx.DefaultMessage, resp.Message)
	assert.Empty(t, resp.Trace)
}

func TestFilter_DevModeOnlyChangesTrace(t *testing.T) {
	clock := WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 6e6, time.UTC) })
	registry := errx.NewRegistry(errx.Definition{Code: "TEST_ERROR", StatusCode: 400, Message: "Test error message"})

	devErr := errx.NewFactory(registry, true).New("TEST_ERROR", errx.WithTrace("stack-trace"))
	prodErr := errx.NewFactory(registry, false).New("TEST_ERROR", errx.WithTrace("stack-trace"))

	dev := New(nil, WithDevMode(true), clock).Normalize(devErr, "/test")
	prod := New(nil, WithDevMode(false), clock).Normalize(prodErr, "/test")

	assert.Equal(t, "stack-trace", dev.Trace)
	assert.Empty(t, prod.Trace)
	assert.Equal(t, "2025-01-02T03:04:05.006Z", dev.Timestamp)

	dev.Trace = ""
	assert.Equal(t, prod, dev)
}

func TestFilter_TraceOmittedOutsideDevMode(t *testing.T) {
	// the exception was built in dev mode but the filter is not
	exc := errx.NewFactory(errx.NewRegistry(), true).New("X", errx.WithTrace("stack-trace"))
	rec := hostx.NewRecorder(context.Background(), "/test")

	New(nil).Catch(exc, rec)

	var raw map[string]any
	require.NoError(t, rec.Decode(&raw))
	assert.NotContains(t, raw, "trace")
}

func TestFilter_HandlerShortCircuits(t *testing.T) {
	fx := newFixture(true)
	fx.dispatcher.Register(errx.KindException, func(err error, host hostx.Host) {
		host.Status(http.StatusTeapot)
		host.(*hostx.Recorder).Write([]byte("handled"))
	})

	rec := hostx.NewRecorder(context.Background(), "/test")
	fx.filter.Catch(fx.exceptions.New("TEST_ERROR"), rec)

	assert.Equal(t, http.StatusTeapot, rec.Code())
	assert.Equal(t, "handled", string(rec.Body()))
	assert.Empty(t, fx.records)
}

type committingHost struct {
	*hostx.Recorder
	commits int
}

func (h *committingHost) Commit() { h.commits++ }

func TestFilter_HandlerCommitsPendingStatus(t *testing.T) {
	fx := newFixture(false)
	fx.dispatcher.Register(errx.KindError, func(err error, host hostx.Host) {
		host.Status(http.StatusTeapot)
	})

	host := &committingHost{Recorder: hostx.NewRecorder(context.Background(), "/test")}
	fx.filter.Catch(stderrors.New("boom"), host)

	assert.Equal(t, 1, host.commits)
	assert.Equal(t, http.StatusTeapot, host.Code())
	assert.False(t, host.Written())
	assert.Empty(t, fx.records)
}

func TestFilter_NoCommitWithoutHandler(t *testing.T) {
	fx := newFixture(false)

	host := &committingHost{Recorder: hostx.NewRecorder(context.Background(), "/test")}
	fx.filter.Catch(stderrors.New("boom"), host)

	assert.Zero(t, host.commits)
	assert.True(t, host.Written())
}

func TestFilter_HandlerForBaseDoesNotCatchSiblingKinds(t *testing.T) {
	fx := newFixture(false)
	kindNotFound := errx.NewKind("NotFound", errx.KindException)
	kindConflict := errx.NewKind("Conflict", errx.KindException)
	fx.dispatcher.Register(kindNotFound, func(err error, host hostx.Host) {
		host.Status(http.StatusNotFound)
	})

	_, resp := fx.catch(t, fx.exceptions.New("TEST_ERROR", errx.WithKind(kindConflict)), "/test")

	assert.Equal(t, "TEST_ERROR", resp.ErrorCode)
	assert.Len(t, fx.records, 1)
}

func TestFilter_LogsRecord(t *testing.T) {
	fx := newFixture(false)

	fx.catch(t, fx.exceptions.New("TEST_ERROR"), "/test")

	require.Len(t, fx.records, 1)
	r := fx.records[0]
	assert.Equal(t, "Test error message", r.Message)
	assert.Equal(t, "TEST_ERROR", r.ErrorCode)
	assert.Equal(t, "/test", r.Path)
	assert.Len(t, r.IncidentID, 36)
}

func TestFilter_PanickingLoggerStillResponds(t *testing.T) {
	f := New(nil, WithLogger(LoggerFunc(func(Record) { panic("log backend down") })))
	rec := hostx.NewRecorder(context.Background(), "/test")

	require.NotPanics(t, func() { f.Catch(errx.NewHTTPError("Forbidden", http.StatusForbidden), rec) })
	assert.Equal(t, http.StatusForbidden, rec.Code())
	assert.True(t, rec.Written())
}

type failingHost struct{ *hostx.Recorder }

func (failingHost) JSON(any) error { return stderrors.New("connection reset") }

func TestFilter_WriteFailureIsLogged(t *testing.T) {
	fx := newFixture(false)

	fx.filter.Catch(fx.exceptions.New("TEST_ERROR"), failingHost{hostx.NewRecorder(context.Background(), "/test")})

	require.Len(t, fx.records, 2)
	assert.Contains(t, fx.records[1].Message, "connection reset")
}

func TestFilter_AnnotatesRecordingSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	ctx, span := tp.Tracer("filterx-test").Start(context.Background(), "GET /test")

	fx := newFixture(false)
	fx.filter.Catch(fx.exceptions.New("TEST_ERROR"), hostx.NewRecorder(ctx, "/test"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("error.code", "TEST_ERROR"))
	assert.Contains(t, ended[0].Attributes(), attribute.Int("http.response.status_code", 400))
	require.NotEmpty(t, ended[0].Events())
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

type stringerBody struct {
	Message string `json:"message,omitempty"`
}

func (stringerBody) String() string { return "stringer" }

func TestBodyMessage(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"string", "Forbidden", "Forbidden"},
		{"map with message", map[string]any{"message": "Bad field", "statusCode": 400}, "Bad field"},
		{"message list", map[string]any{"message": []string{"name is required", "age must be positive"}}, "name is required, age must be positive"},
		{"empty message", map[string]any{"message": "", "reason": "x"}, `{"message":"","reason":"x"}`},
		{"map without message", map[string]any{"reason": "quota"}, `{"reason":"quota"}`},
		{"struct", struct {
			Message string `json:"message"`
		}{"from struct"}, "from struct"},
		{"nil", nil, errx.DefaultMessage},
		{"error", stderrors.New("boom"), "boom"},
		{"stringer with message", stringerBody{Message: "from field"}, "from field"},
		{"stringer without message", stringerBody{}, "stringer"},
		{"numeric message", map[string]any{"message": 42, "reason": "x"}, "42"},
		{"boolean message", map[string]any{"message": true}, "true"},
		{"zero message", map[string]any{"message": 0}, `{"message":0}`},
		{"object message", map[string]any{"message": map[string]any{"field": "name"}}, `{"field":"name"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bodyMessage(tt.body))
		})
	}
}

func TestLogxLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logx.New()
	l.SetOutput(&buf)
	l.SetFormat(logx.FormatJSON)

	LogxLogger(l).Error(Record{Message: "Test error message", ErrorCode: "TEST_ERROR", Path: "/test", IncidentID: "abc"})

	out := buf.String()
	assert.Contains(t, out, `"errorCode":"TEST_ERROR"`)
	assert.Contains(t, out, `"message":"Test error message"`)
	assert.Contains(t, out, `"incidentId":"abc"`)
	assert.NotContains(t, out, `"trace"`)
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)

	ZerologLogger(zl).Error(Record{Message: "Forbidden", ErrorCode: "UNKNOWN_ERROR", Path: "/test", Trace: "t", IncidentID: "abc"})

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"message":"Forbidden"`)
	assert.Contains(t, out, `"trace":"t"`)
}
