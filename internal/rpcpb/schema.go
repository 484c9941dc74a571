// Package rpcpb holds the taskmanagement.v1 protobuf schema. The file
// descriptor is assembled in Go and linked with protodesc at init; messages
// are dynamicpb values, so server and client share one source of truth
// without generated code.
package rpcpb

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	Package  = "taskmanagement.v1"
	FileName = "taskmanagement/v1/taskmanagement.proto"

	AuthServiceName = Package + ".AuthService"
	UserServiceName = Package + ".UserService"
	TaskServiceName = Package + ".TaskService"
)

// Full method names as they appear on the wire.
const (
	MethodLogin      = "/" + AuthServiceName + "/Login"
	MethodLogout     = "/" + AuthServiceName + "/Logout"
	MethodCreateUser = "/" + UserServiceName + "/CreateUser"
	MethodGetUsers   = "/" + UserServiceName + "/GetUsers"
	MethodGetUser    = "/" + UserServiceName + "/GetUser"
	MethodUpdateUser = "/" + UserServiceName + "/UpdateUser"
	MethodDeleteUser = "/" + UserServiceName + "/DeleteUser"
	MethodCreateTask = "/" + TaskServiceName + "/CreateTask"
	MethodGetTasks   = "/" + TaskServiceName + "/GetTasks"
	MethodUpdateTask = "/" + TaskServiceName + "/UpdateTask"
	MethodDeleteTask = "/" + TaskServiceName + "/DeleteTask"
)

// File is the linked descriptor of the schema.
var File protoreflect.FileDescriptor

func init() {
	fd, err := protodesc.NewFile(fileProto(), new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("rpcpb: link %s: %v", FileName, err))
	}
	File = fd
}

func fileProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(FileName),
		Package: proto.String(Package),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("Status", scalar("code", int32T), scalar("message", stringT)),
			message("User",
				scalar("id", int64T), scalar("username", stringT),
				scalar("created_at", stringT), scalar("updated_at", stringT)),
			message("Task",
				scalar("id", int64T), scalar("title", stringT), optional(scalar("description", stringT)),
				scalar("status", stringT), scalar("user_id", int64T),
				scalar("created_at", stringT), scalar("updated_at", stringT)),

			message("LoginRequest", scalar("username", stringT), scalar("password", stringT)),
			message("LoginResponse", scalar("token", stringT), ref("status", "Status")),
			message("LogoutRequest", scalar("token", stringT)),
			message("LogoutResponse"),

			message("CreateUserRequest", scalar("email", stringT), scalar("password", stringT)),
			message("UserResponse", ref("user", "User"), ref("status", "Status")),
			message("GetUsersRequest"),
			message("GetUsersResponse", repeated(ref("users", "User")), ref("status", "Status")),
			message("GetUserRequest", scalar("user_id", int64T)),
			message("UpdateUserRequest", scalar("user_id", int64T), scalar("password", stringT)),
			message("DeleteUserRequest", scalar("user_id", int64T)),
			message("DeleteUserResponse", ref("status", "Status")),

			message("CreateTaskRequest",
				scalar("title", stringT), optional(scalar("description", stringT)),
				scalar("status", stringT), scalar("user_id", int64T)),
			message("CreateTaskResponse",
				scalar("success", boolT), scalar("message", stringT), scalar("task_id", int64T),
				scalar("title", stringT), optional(scalar("description", stringT)),
				scalar("status", stringT), ref("status_info", "Status")),
			message("GetTasksRequest", scalar("user_id", int64T), scalar("status", stringT)),
			message("GetTasksResponse",
				repeated(ref("tasks", "Task")), scalar("page", int32T), scalar("limit", int32T),
				scalar("total", int32T), ref("status", "Status")),
			message("UpdateTaskRequest",
				scalar("task_id", int64T), optional(scalar("title", stringT)),
				optional(scalar("description", stringT)), optional(scalar("status", stringT))),
			message("TaskResponse", ref("task", "Task"), ref("status", "Status")),
			message("DeleteTaskRequest", scalar("task_id", int64T)),
			message("DeleteTaskResponse", ref("status", "Status")),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			service("AuthService",
				method("Login", "LoginRequest", "LoginResponse"),
				method("Logout", "LogoutRequest", "LogoutResponse")),
			service("UserService",
				method("CreateUser", "CreateUserRequest", "UserResponse"),
				method("GetUsers", "GetUsersRequest", "GetUsersResponse"),
				method("GetUser", "GetUserRequest", "UserResponse"),
				method("UpdateUser", "UpdateUserRequest", "UserResponse"),
				method("DeleteUser", "DeleteUserRequest", "DeleteUserResponse")),
			service("TaskService",
				method("GetTasks", "GetTasksRequest", "GetTasksResponse"),
				method("CreateTask", "CreateTaskRequest", "CreateTaskResponse"),
				method("UpdateTask", "UpdateTaskRequest", "TaskResponse"),
				method("DeleteTask", "DeleteTaskRequest", "DeleteTaskResponse")),
		},
	}
}

const (
	stringT = descriptorpb.FieldDescriptorProto_TYPE_STRING
	int64T  = descriptorpb.FieldDescriptorProto_TYPE_INT64
	int32T  = descriptorpb.FieldDescriptorProto_TYPE_INT32
	boolT   = descriptorpb.FieldDescriptorProto_TYPE_BOOL
)

// message numbers fields in declaration order and adds the synthetic oneof
// every proto3 optional field needs.
func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	m := &descriptorpb.DescriptorProto{Name: proto.String(name)}
	for i, f := range fields {
		f.Number = proto.Int32(int32(i + 1))
		if f.GetProto3Optional() {
			f.OneofIndex = proto.Int32(int32(len(m.OneofDecl)))
			m.OneofDecl = append(m.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String("_" + f.GetName())})
		}
		m.Field = append(m.Field, f)
	}
	return m
}

func scalar(name string, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		JsonName: proto.String(jsonName(name)),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     typ.Enum(),
	}
}

func ref(name, msg string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String("." + Package + "." + msg)
	return f
}

func optional(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Proto3Optional = proto.Bool(true)
	return f
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func service(name string, methods ...*descriptorpb.MethodDescriptorProto) *descriptorpb.ServiceDescriptorProto {
	return &descriptorpb.ServiceDescriptorProto{Name: proto.String(name), Method: methods}
}

func method(name, in, out string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String("." + Package + "." + in),
		OutputType: proto.String("." + Package + "." + out),
	}
}

// jsonName mirrors protoc's lowerCamelCase json_name.
func jsonName(s string) string {
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
