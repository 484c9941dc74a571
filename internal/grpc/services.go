package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/dynamicpb"

	"taskapi/internal/rpcpb"
)

// AuthServiceServer is the server API for taskmanagement.v1.AuthService.
type AuthServiceServer interface {
	Login(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	Logout(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
}

// UserServiceServer is the server API for taskmanagement.v1.UserService.
type UserServiceServer interface {
	CreateUser(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	GetUsers(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	GetUser(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	UpdateUser(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	DeleteUser(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
}

// TaskServiceServer is the server API for taskmanagement.v1.TaskService.
type TaskServiceServer interface {
	GetTasks(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	CreateTask(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	UpdateTask(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
	DeleteTask(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)
}

type unaryFunc func(context.Context, *dynamicpb.Message) (*dynamicpb.Message, error)

// unary adapts a method to grpc's handler shape: decode into a fresh dynamic
// message of the method's input type, then run through the interceptor chain.
func unary(fullMethod string, bind func(srv any) unaryFunc) grpc.MethodDesc {
	md := rpcpb.Method(fullMethod)
	return grpc.MethodDesc{
		MethodName: string(md.Name()),
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := dynamicpb.NewMessage(md.Input())
			if err := dec(in); err != nil {
				return nil, err
			}
			call := bind(srv)
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(ctx, req.(*dynamicpb.Message))
			})
		},
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: rpcpb.AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(rpcpb.MethodLogin, func(srv any) unaryFunc { return srv.(AuthServiceServer).Login }),
		unary(rpcpb.MethodLogout, func(srv any) unaryFunc { return srv.(AuthServiceServer).Logout }),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: rpcpb.FileName,
}

var userServiceDesc = grpc.ServiceDesc{
	ServiceName: rpcpb.UserServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(rpcpb.MethodCreateUser, func(srv any) unaryFunc { return srv.(UserServiceServer).CreateUser }),
		unary(rpcpb.MethodGetUsers, func(srv any) unaryFunc { return srv.(UserServiceServer).GetUsers }),
		unary(rpcpb.MethodGetUser, func(srv any) unaryFunc { return srv.(UserServiceServer).GetUser }),
		unary(rpcpb.MethodUpdateUser, func(srv any) unaryFunc { return srv.(UserServiceServer).UpdateUser }),
		unary(rpcpb.MethodDeleteUser, func(srv any) unaryFunc { return srv.(UserServiceServer).DeleteUser }),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: rpcpb.FileName,
}

var taskServiceDesc = grpc.ServiceDesc{
	ServiceName: rpcpb.TaskServiceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(rpcpb.MethodGetTasks, func(srv any) unaryFunc { return srv.(TaskServiceServer).GetTasks }),
		unary(rpcpb.MethodCreateTask, func(srv any) unaryFunc { return srv.(TaskServiceServer).CreateTask }),
		unary(rpcpb.MethodUpdateTask, func(srv any) unaryFunc { return srv.(TaskServiceServer).UpdateTask }),
		unary(rpcpb.MethodDeleteTask, func(srv any) unaryFunc { return srv.(TaskServiceServer).DeleteTask }),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: rpcpb.FileName,
}

// Register adds all three services backed by s to srv.
func Register(srv grpc.ServiceRegistrar, s *Server) {
	srv.RegisterService(&authServiceDesc, s)
	srv.RegisterService(&userServiceDesc, s)
	srv.RegisterService(&taskServiceDesc, s)
}
