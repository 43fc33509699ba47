package port

import "errors"

var (
	// ErrUnknownEndpoint is returned when a URL is requested for a name outside the endpoint registry.
	ErrUnknownEndpoint = errors.New("unknown endpoint")

	// ErrUnknownParameter is returned when a parameter is not recognized by the endpoint.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrMissingParameter is returned when a required parameter is absent.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrInvalidParameter is returned when a value does not match the parameter's kind.
	ErrInvalidParameter = errors.New("invalid parameter value")
)

var (
	ErrUnknownTarget    = errors.New("unknown route target")
	ErrIntervalRequired = errors.New("route target requires an interval")
	ErrInvalidInterval  = errors.New("interval must be a positive number of milliseconds")
	ErrInvalidRequest   = errors.New("invalid poll request")
)

var (
	// ErrUpstreamTransport wraps network failures talking to the API.
	ErrUpstreamTransport = errors.New("openf1 request failed")

	// ErrUpstreamStatus wraps non-2xx responses.
	ErrUpstreamStatus = errors.New("unexpected openf1 response")

	// ErrUnexpectedPayload is returned when the body is neither an object nor an array of objects.
	ErrUnexpectedPayload = errors.New("unexpected openf1 payload")
)

var (
	// ErrSinkWrite wraps failures writing to the output stream.
	ErrSinkWrite     = errors.New("output write failed")
	ErrSinkClosed    = errors.New("output sink closed")
	ErrUnknownFormat = errors.New("unknown output format")
)
