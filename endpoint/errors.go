package endpoint

import "errors"

var (
	// ErrInvalidURL is returned when a registered URL does not start with "/".
	ErrInvalidURL = errors.New("endpoint: url must start with /")
	// ErrNilHandler is returned when registering a nil handler.
	ErrNilHandler = errors.New("endpoint: handler is nil")
	// ErrDuplicateRoute is returned when two routes materialize to the same
	// mux pattern.
	ErrDuplicateRoute = errors.New("endpoint: duplicate route")
	// ErrUnresolvedRoute is returned when a resolver has no handler for a route.
	ErrUnresolvedRoute = errors.New("endpoint: unresolved route")
	// ErrMissingRequest is the panic value raised when a bound handler is
	// served without a request.
	ErrMissingRequest = errors.New("endpoint: handler called without a request")
)
