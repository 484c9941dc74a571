package grpcserver

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"taskapi/internal/auth"
	"taskapi/internal/config"
	"taskapi/internal/logging"
	"taskapi/internal/rpcpb"
	"taskapi/internal/service"
)

// unauthenticatedMethods are reachable without a bearer token. Logout carries
// its token in the request body.
var unauthenticatedMethods = []string{
	rpcpb.MethodCreateUser,
	rpcpb.MethodLogin,
	rpcpb.MethodLogout,
}

// NewGRPCServer builds a *grpc.Server with the three services registered and
// the logging and auth interceptors chained, in that order.
func NewGRPCServer(svc *service.Service, authn *auth.Authenticator, log logging.Logger) *grpc.Server {
	log = log.With("transport", "grpc")
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(log),
		auth.NewUnaryAuthInterceptor(authn, unauthenticatedMethods...),
	))
	Register(srv, &Server{Svc: svc, Log: log})
	return srv
}

// StartGRPC starts the gRPC server on cfg.GRPC.Address and returns a shutdown function.
func StartGRPC(cfg *config.Config, svc *service.Service, authn *auth.Authenticator, log logging.Logger) (func(context.Context) error, net.Addr, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	srv := NewGRPCServer(svc, authn, log)
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error(context.Background(), "grpc serve", "error", err)
		}
	}()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, lis.Addr(), nil
}

func loggingInterceptor(log logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		log.Info(ctx, "rpc", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
		return resp, err
	}
}
