package rpc

import (
	"net/http"

	"go.trai.ch/thingsgate/internal/adapters/transport"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus converts a service error into a gRPC status error carrying err's message.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	return status.Error(codeFor(transport.HTTPStatus(err)), err.Error())
}

// fromStatus converts a gRPC error received by the client back into a remote error.
func fromStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	return transport.RemoteError(op, httpFor(st.Code()), st.Message())
}

func codeFor(httpStatus int) codes.Code {
	switch httpStatus {
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusBadGateway:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func httpFor(code codes.Code) int {
	switch code {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
