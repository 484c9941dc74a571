package auth

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewUnaryAuthInterceptor authenticates the bearer token carried in the
// "authorization" metadata, consulting the revocation set, and stores the
// Principal in the handler's context. Full method names in public skip the
// check entirely. Failures answer Unauthenticated with the same message the
// REST middleware writes.
func NewUnaryAuthInterceptor(a *Authenticator, public ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]bool, len(public))
	for _, m := range public {
		open[m] = true
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return handler(ctx, req)
		}
		p, err := ParseFromMD(ctx, a)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, FailureMessage(err))
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

// RequirePrincipal returns the caller placed in ctx by the interceptor.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	if p, ok := FromContext(ctx); ok {
		return p, nil
	}
	return nil, status.Error(codes.Unauthenticated, MsgTokenRequired)
}
