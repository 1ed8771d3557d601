// Package lambdax resolves errors from API Gateway Lambda handlers through
// the exception filter, so a function returns the same JSON error body as an
// HTTP server would.
package lambdax

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"

	"github.com/Abraxas-365/exceptionx/filterx"
	"github.com/Abraxas-365/exceptionx/hostx"
)

// Handler is an API Gateway proxy handler
type Handler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Wrap returns a Handler that converts errors and panics from h into filter
// responses. The returned handler never returns an error itself.
func Wrap(f *filterx.Filter, h Handler) Handler {
	return func(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			perr, ok := rec.(error)
			if !ok {
				perr = fmt.Errorf("panic: %v", rec)
			}
			resp, err = Respond(ctx, f, req, perr), nil
		}()

		resp, err = h(ctx, req)
		if err != nil {
			return Respond(ctx, f, req, err), nil
		}
		return resp, nil
	}
}

// Respond resolves err for req and returns the proxy response
func Respond(ctx context.Context, f *filterx.Filter, req events.APIGatewayProxyRequest, err error) events.APIGatewayProxyResponse {
	rec := hostx.NewRecorder(ctx, RequestPath(req))
	f.Catch(err, rec)

	return events.APIGatewayProxyResponse{
		StatusCode: rec.Code(),
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(rec.Body()),
	}
}

// RequestPath rebuilds the request path with its query string
func RequestPath(req events.APIGatewayProxyRequest) string {
	query := url.Values{}
	for k, vs := range req.MultiValueQueryStringParameters {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	for k, v := range req.QueryStringParameters {
		if _, ok := query[k]; !ok {
			query.Set(k, v)
		}
	}

	path := req.Path
	if path == "" {
		path = "/"
	}
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

