// Package grpcx resolves handler errors through the exception filter and
// returns them as gRPC statuses carrying an ErrorInfo detail.
package grpcx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	gcodes "google.golang.org/grpc/codes"
	gstatus "google.golang.org/grpc/status"

	"github.com/Abraxas-365/exceptionx/filterx"
	"github.com/Abraxas-365/exceptionx/hostx"
)

// DefaultDomain is the ErrorInfo domain used when none is configured
const DefaultDomain = "exceptionx"

type options struct {
	domain string
}

// Option configures the interceptors
type Option func(*options)

// WithDomain sets the ErrorInfo domain, usually the service name
func WithDomain(domain string) Option {
	return func(o *options) {
		if domain != "" {
			o.domain = domain
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{domain: DefaultDomain}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// UnaryServerInterceptor converts errors returned by unary handlers into
// gRPC statuses. Status errors returned directly by the handler pass through
// unchanged.
func UnaryServerInterceptor(f *filterx.Filter, opts ...Option) grpc.UnaryServerInterceptor {
	o := buildOptions(opts)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return nil, convert(ctx, f, o, info.FullMethod, err)
	}
}

// StreamServerInterceptor is the streaming counterpart of UnaryServerInterceptor
func StreamServerInterceptor(f *filterx.Filter, opts ...Option) grpc.StreamServerInterceptor {
	o := buildOptions(opts)
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if err == nil {
			return nil
		}
		return convert(ss.Context(), f, o, info.FullMethod, err)
	}
}

func convert(ctx context.Context, f *filterx.Filter, o options, method string, err error) error {
	if _, ok := err.(interface{ GRPCStatus() *gstatus.Status }); ok {
		return err
	}

	rec := hostx.NewRecorder(ctx, method)
	f.Catch(err, rec)

	var resp filterx.Response
	if json.Unmarshal(rec.Body(), &resp) != nil || resp.ErrorCode == "" {
		// a custom handler owned the response
		return gstatus.New(CodeFromHTTP(rec.Code()), string(rec.Body())).Err()
	}

	meta := map[string]string{
		"path":       resp.Path,
		"timestamp":  resp.Timestamp,
		"statusCode": strconv.Itoa(resp.StatusCode),
	}
	if resp.Trace != "" {
		meta["trace"] = resp.Trace
	}

	base := gstatus.New(CodeFromHTTP(resp.StatusCode), resp.Message)
	with, derr := base.WithDetails(&errdetails.ErrorInfo{
		Reason:   resp.ErrorCode,
		Domain:   o.domain,
		Metadata: meta,
	})
	if derr != nil {
		return base.Err()
	}
	return with.Err()
}

// ErrorInfo pulls the ErrorInfo detail out of a gRPC error
func ErrorInfo(err error) (*errdetails.ErrorInfo, bool) {
	if err == nil {
		return nil, false
	}
	st, ok := gstatus.FromError(err)
	if !ok {
		return nil, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info, true
		}
	}
	return nil, false
}

// CodeFromHTTP maps an HTTP status to the closest gRPC code
func CodeFromHTTP(status int) gcodes.Code {
	switch status {
	case http.StatusOK:
		return gcodes.OK
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return gcodes.InvalidArgument
	case http.StatusUnauthorized:
		return gcodes.Unauthenticated
	case http.StatusForbidden:
		return gcodes.PermissionDenied
	case http.StatusNotFound, http.StatusGone:
		return gcodes.NotFound
	case http.StatusConflict:
		return gcodes.Aborted
	case http.StatusPreconditionFailed:
		return gcodes.FailedPrecondition
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return gcodes.DeadlineExceeded
	case http.StatusTooManyRequests:
		return gcodes.ResourceExhausted
	case http.StatusNotImplemented, http.StatusMethodNotAllowed:
		return gcodes.Unimplemented
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return gcodes.Unavailable
	case 499:
		return gcodes.Canceled
	}
	switch {
	case status >= 400 && status < 500:
		return gcodes.FailedPrecondition
	case status >= 500:
		return gcodes.Internal
	}
	return gcodes.Unknown
}
