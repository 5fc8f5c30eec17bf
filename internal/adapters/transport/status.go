package transport

import (
	"errors"
	"net/http"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// HTTPStatus classifies err for the wire. Every upstream failure is a bad
// gateway whatever its own status, so a client never reads an upstream 404 as
// an unknown operation. The upstream status stays on the RemoteCallError.
func HTTPStatus(err error) int {
	var rce *domain.RemoteCallError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrUnknownOperation):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrMissingParam),
		errors.Is(err, domain.ErrInvalidParam),
		errors.Is(err, domain.ErrParamsEncoding):
		return http.StatusBadRequest
	case errors.As(err, &rce):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RemoteError rebuilds a failure received from a tool server. The message is
// kept verbatim. Statuses that name a local sentinel keep it matchable.
func RemoteError(op string, status int, msg string) error {
	rce := domain.NewRemoteCallError(op, status, msg)
	switch status {
	case http.StatusNotFound:
		return &sentinelError{RemoteCallError: rce, sentinel: domain.ErrUnknownOperation}
	case http.StatusUnauthorized:
		return &sentinelError{RemoteCallError: rce, sentinel: domain.ErrMissingToken}
	case http.StatusBadRequest:
		return &sentinelError{RemoteCallError: rce, sentinel: domain.ErrInvalidParam}
	default:
		return rce
	}
}

// sentinelError is a remote failure that also matches a local sentinel.
type sentinelError struct {
	*domain.RemoteCallError
	sentinel error
}

func (e *sentinelError) Is(target error) bool {
	return target == e.sentinel || e.RemoteCallError.Is(target)
}

func (e *sentinelError) Unwrap() error {
	return e.RemoteCallError
}
