/*
Package filterx converts any error raised while handling a request into one
client safe JSON shape:

	{
	  "statusCode": 400,
	  "errorCode": "TEST_ERROR",
	  "message": "Test error message",
	  "path": "/test",
	  "timestamp": "2025-06-08T18:57:52.000Z",
	  "trace": "..."
	}

Catch resolves an error in this order:

 1. A handler registered in the handlerx.Dispatcher for the error's kind (or
    the nearest ancestor kind) takes over and nothing else happens.
 2. An *errx.Exception reports its own status, code, message and trace.
 3. An *errx.HTTPError reports its status; the message is the string body,
    the body's "message" field, or the body encoded as JSON. The error code
    stays UNKNOWN_ERROR.
 4. Anything else becomes a 500 with a fixed message so internals do not leak.

The trace field is written only when the filter runs in dev mode and the
exception carries a trace. When a Logger is configured every normalized error
is logged before the response is written; a failing logger never prevents the
response.

Framework adapters live in fiberx, httpx, ginx, lambdax and grpcx.
*/
package filterx
