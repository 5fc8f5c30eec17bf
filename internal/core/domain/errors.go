package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidConfig is returned when a cache configuration carries a negative TTL or size,
	// or an unknown invalidation mode.
	ErrInvalidConfig = zerr.New("invalid cache configuration")

	// ErrParamsEncoding is returned when operation parameters cannot be canonicalized into a cache key.
	ErrParamsEncoding = zerr.New("failed to encode operation parameters")

	// ErrRemoteCall is the sentinel matched by every RemoteCallError.
	ErrRemoteCall = zerr.New("remote call failed")

	// ErrUnknownOperation is returned when an operation name is not present in the catalog.
	ErrUnknownOperation = zerr.New("unknown operation")

	// ErrMissingParam is returned when a required operation parameter is absent or empty.
	ErrMissingParam = zerr.New("missing required parameter")

	// ErrInvalidParam is returned when an operation parameter has the wrong type.
	ErrInvalidParam = zerr.New("invalid parameter")

	// ErrMissingToken is returned when no bearer token is available for an upstream request.
	ErrMissingToken = zerr.New("missing SmartThings access token")

	// ErrConfigNotFound is returned when an explicitly requested configuration file does not exist.
	ErrConfigNotFound = zerr.New("configuration file not found")

	// ErrInvalidTransport is returned when a transport name is not one of grpc, http or stdio.
	ErrInvalidTransport = zerr.New("invalid transport")

	// ErrServerUnreachable is returned when a client cannot reach the tool server.
	ErrServerUnreachable = zerr.New("tool server unreachable")

	// ErrMissingAction is returned when the call command is invoked without an action.
	ErrMissingAction = zerr.New("no action specified")
)
