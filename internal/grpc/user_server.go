package grpcserver

import (
	"context"

	"google.golang.org/protobuf/types/dynamicpb"

	"taskapi/internal/rpcpb"
)

func (s *Server) CreateUser(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	u, err := s.Svc.CreateUser(ctx, rpcpb.GetString(req, "email"), rpcpb.GetString(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodCreateUser)
	putUser(rpcpb.Mutable(out, "user"), u)
	rpcpb.SetStatus(out, "status", statusCreated, "User created successfully")
	return out, nil
}

func (s *Server) GetUsers(ctx context.Context, _ *dynamicpb.Message) (*dynamicpb.Message, error) {
	users, err := s.Svc.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodGetUsers)
	for i := range users {
		putUser(rpcpb.Append(out, "users"), &users[i])
	}
	rpcpb.SetStatus(out, "status", statusOK, "Users fetched successfully")
	return out, nil
}

func (s *Server) GetUser(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	u, err := s.Svc.GetUser(ctx, rpcpb.GetInt64(req, "user_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodGetUser)
	putUser(rpcpb.Mutable(out, "user"), u)
	rpcpb.SetStatus(out, "status", statusOK, "User fetched successfully")
	return out, nil
}

func (s *Server) UpdateUser(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	u, err := s.Svc.UpdateUser(ctx, rpcpb.GetInt64(req, "user_id"), rpcpb.GetString(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodUpdateUser)
	putUser(rpcpb.Mutable(out, "user"), u)
	rpcpb.SetStatus(out, "status", statusOK, "User updated successfully")
	return out, nil
}

func (s *Server) DeleteUser(ctx context.Context, req *dynamicpb.Message) (*dynamicpb.Message, error) {
	if err := s.Svc.DeleteUser(ctx, rpcpb.GetInt64(req, "user_id")); err != nil {
		return nil, toStatus(err)
	}
	out := rpcpb.NewOutput(rpcpb.MethodDeleteUser)
	rpcpb.SetStatus(out, "status", statusOK, "User deleted successfully")
	return out, nil
}
