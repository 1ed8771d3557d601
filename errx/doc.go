/*
Package errx holds the error code registry and the domain exception type that
is resolved against it.

# Error Registry

Register codes up front or at any later point:

	registry := errx.NewRegistry(
		errx.Definition{Code: "USER_NOT_FOUND", StatusCode: http.StatusNotFound, Message: "User not found"},
	)

	id := registry.Register("QUOTA_EXCEEDED", http.StatusTooManyRequests, "Quota exceeded") // "ERR-2"

Registering a code twice returns the first id and ignores the new status and
message. Definitions never change once registered.

# Exceptions

Exceptions are built by a Factory bound to one registry and a dev mode flag:

	exceptions := errx.NewFactory(registry, isDev)

	err := exceptions.New("USER_NOT_FOUND")                  // 404, "User not found"
	err := exceptions.New("something broke")                 // 500, UNKNOWN_ERROR, "something broke"
	err := exceptions.New("USER_NOT_FOUND", errx.WithStack()) // trace kept only in dev mode

The package level New uses the factory installed by Init and panics if Init
was never called, so a missing wiring step shows up at the first request in
development rather than as a wrong response in production.

# Kinds

Dispatch in handlerx walks an error's kind ancestry. The built-in chain is

	KindError -> KindHTTP -> KindException

and more specific exception kinds are derived with NewKind:

	KindNotFound := errx.NewKind("NotFound", errx.KindException)
	err := exceptions.New("USER_NOT_FOUND", errx.WithKind(KindNotFound))

Errors that implement neither Kinded nor wrap a Kinded error are KindError.
*/
package errx
