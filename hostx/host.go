// Package hostx is the seam between the exception filter and the web layer
// that hosts it. Adapters in fiberx, httpx, ginx, lambdax and grpcx implement
// Host for their framework.
package hostx

import "context"

// Host exposes the failed request and the response sink
type Host interface {
	// Context returns the request context
	Context() context.Context

	// Path returns the request path as received, including the query string
	Path() string

	// Status sets the response status code
	Status(code int)

	// JSON writes body as the JSON response
	JSON(body any) error
}

// Committer is implemented by hosts that hold the status until a body is
// written. Commit sends the pending status when nothing was written yet.
type Committer interface {
	Commit()
}
