package grpcserver

import (
	"context"

	"google.golang.org/protobuf/types/dynamicpb"

	"taskapi/internal/logging"
	"taskapi/internal/rpcpb"
	"taskapi/internal/service"
)

// Server implements AuthService, UserService and TaskService over a
// service.Service.
type Server struct {
	Svc *service.Service
	Log logging.Logger
}

var (
	_ AuthServiceServer = (*Server)(nil)
	_ UserServiceServer = (*Server)(nil)
	_ TaskServiceServer = (*Server)(nil)
)

func (s *Server) Login(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	token, err := s.Svc.Authenticate(ctx, rpcpb.GetString(req, "username"), rpcpb.GetString(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodLogin)
	rpcpb.SetString(out, "token", token)
	rpcpb.SetStatus(out, "status", statusOK, "Login successful")
	return out, nil
}

// Logout revokes the token in the request body. It does not need an
// authorization header.
func (s *Server) Logout(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	if err := s.Svc.Logout(ctx, rpcpb.GetString(req, "token")); err != nil {
		return nil, toStatus(err)
	}
	return rpcpb.NewOutput(rpcpb.MethodLogout), nil
}
