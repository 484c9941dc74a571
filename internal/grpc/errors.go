package grpcserver

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"taskapi/internal/service"
)

var grpcCodes = map[service.Code]codes.Code{
	service.CodeInvalidArgument: codes.InvalidArgument,
	service.CodeUnauthenticated: codes.Unauthenticated,
	service.CodeNotFound:        codes.NotFound,
	service.CodeAlreadyExists:   codes.AlreadyExists,
	service.CodeInternal:        codes.Internal,
}

// toStatus converts a service failure into a gRPC status error. The message
// is the client-facing one; causes never leave the process.
func toStatus(err error) error {
	c, ok := grpcCodes[service.CodeOf(err)]
	if !ok {
		c = codes.Internal
	}
	return status.Error(c, service.MessageOf(err))
}
