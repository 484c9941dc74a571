package harness

import (
	"fmt"
	"net/http"
	"sort"

	"google.golang.org/grpc/codes"

	"taskapi/internal/rpcpb"
)

// Op names a logical operation that both transports implement.
type Op string

const (
	OpCreateUser Op = "CreateUser"
	OpLogin      Op = "Login"
	OpLogout     Op = "Logout"
	OpListUsers  Op = "ListUsers"
	OpGetUser    Op = "GetUser"
	OpUpdateUser Op = "UpdateUser"
	OpDeleteUser Op = "DeleteUser"
	OpCreateTask Op = "CreateTask"
	OpListTasks  Op = "ListTasks"
	OpUpdateTask Op = "UpdateTask"
	OpDeleteTask Op = "DeleteTask"
)

type restRoute struct {
	method string
	path   string // may contain {id}
	body   []string
	query  []string
	// tokenArg sends args[tokenArg] as the bearer token instead of the step's auth.
	tokenArg string
}

type rpcField struct {
	arg   string
	field string
}

type rpcRoute struct {
	method string
	fields []rpcField
}

// projection turns a renamed gRPC response into the normalized record.
type projection struct {
	unwrap string
	drop   []string
}

type opDef struct {
	rest      restRoute
	rpc       rpcRoute
	project   projection
	noContent bool
	created   bool
}

// successStatus is the HTTP status of a successful call, which is also the
// code the RPC Status envelope must carry.
func (d opDef) successStatus() int {
	switch {
	case d.noContent:
		return http.StatusNoContent
	case d.created:
		return http.StatusCreated
	default:
		return http.StatusOK
	}
}

var ops = map[Op]opDef{
	OpCreateUser: {
		rest:    restRoute{method: http.MethodPost, path: "/users", body: []string{"email", "password"}},
		rpc:     rpcRoute{method: rpcpb.MethodCreateUser, fields: []rpcField{{"email", "email"}, {"password", "password"}}},
		project: projection{unwrap: "user"},
		created: true,
	},
	OpLogin: {
		rest:    restRoute{method: http.MethodPost, path: "/sessions", body: []string{"email", "password"}},
		rpc:     rpcRoute{method: rpcpb.MethodLogin, fields: []rpcField{{"email", "username"}, {"password", "password"}}},
		project: projection{drop: []string{"status"}},
	},
	OpLogout: {
		rest:      restRoute{method: http.MethodDelete, path: "/sessions", tokenArg: "token"},
		rpc:       rpcRoute{method: rpcpb.MethodLogout, fields: []rpcField{{"token", "token"}}},
		noContent: true,
	},
	OpListUsers: {
		rest:    restRoute{method: http.MethodGet, path: "/users"},
		rpc:     rpcRoute{method: rpcpb.MethodGetUsers},
		project: projection{unwrap: "users"},
	},
	OpGetUser: {
		rest:    restRoute{method: http.MethodGet, path: "/users/{id}"},
		rpc:     rpcRoute{method: rpcpb.MethodGetUser, fields: []rpcField{{"id", "user_id"}}},
		project: projection{unwrap: "user"},
	},
	OpUpdateUser: {
		rest:    restRoute{method: http.MethodPut, path: "/users/{id}", body: []string{"password"}},
		rpc:     rpcRoute{method: rpcpb.MethodUpdateUser, fields: []rpcField{{"id", "user_id"}, {"password", "password"}}},
		project: projection{unwrap: "user"},
	},
	OpDeleteUser: {
		rest:      restRoute{method: http.MethodDelete, path: "/users/{id}"},
		rpc:       rpcRoute{method: rpcpb.MethodDeleteUser, fields: []rpcField{{"id", "user_id"}}},
		noContent: true,
	},
	OpCreateTask: {
		rest: restRoute{method: http.MethodPost, path: "/tasks", body: []string{"title", "description", "status"}},
		rpc: rpcRoute{method: rpcpb.MethodCreateTask, fields: []rpcField{
			{"title", "title"}, {"description", "description"}, {"status", "status"}, {"userId", "user_id"},
		}},
		project: projection{drop: []string{"statusInfo"}},
		created: true,
	},
	OpListTasks: {
		rest:    restRoute{method: http.MethodGet, path: "/tasks", query: []string{"status"}},
		rpc:     rpcRoute{method: rpcpb.MethodGetTasks, fields: []rpcField{{"userId", "user_id"}, {"status", "status"}}},
		project: projection{drop: []string{"status"}},
	},
	OpUpdateTask: {
		rest: restRoute{method: http.MethodPatch, path: "/tasks/{id}", body: []string{"title", "description", "status"}},
		rpc: rpcRoute{method: rpcpb.MethodUpdateTask, fields: []rpcField{
			{"id", "task_id"}, {"title", "title"}, {"description", "description"}, {"status", "status"},
		}},
		project: projection{unwrap: "task"},
	},
	OpDeleteTask: {
		rest:      restRoute{method: http.MethodDelete, path: "/tasks/{id}"},
		rpc:       rpcRoute{method: rpcpb.MethodDeleteTask, fields: []rpcField{{"id", "task_id"}}},
		noContent: true,
	},
}

func lookupOp(op Op) (opDef, error) {
	def, ok := ops[op]
	if !ok {
		return opDef{}, fmt.Errorf("unknown op %q", op)
	}
	return def, nil
}

// Ops lists the supported operation names in sorted order.
func Ops() []string {
	out := make([]string, 0, len(ops))
	for op := range ops {
		out = append(out, string(op))
	}
	sort.Strings(out)
	return out
}

// Outcome is the transport-independent result class of a call.
type Outcome string

const (
	OutcomeSuccess         Outcome = "Success"
	OutcomeNoContent       Outcome = "NoContent"
	OutcomeInvalidArgument Outcome = "InvalidArgument"
	OutcomeUnauthenticated Outcome = "Unauthenticated"
	OutcomeNotFound        Outcome = "NotFound"
	OutcomeAlreadyExists   Outcome = "AlreadyExists"
	OutcomeInternal        Outcome = "Internal"
	OutcomeUnknown         Outcome = "Unknown"
)

func (o Outcome) valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeNoContent, OutcomeInvalidArgument, OutcomeUnauthenticated,
		OutcomeNotFound, OutcomeAlreadyExists, OutcomeInternal:
		return true
	}
	return false
}

// ok reports whether the outcome is a success of either kind.
func (o Outcome) ok() bool { return o == OutcomeSuccess || o == OutcomeNoContent }

// Status tables: native codes per outcome. A success is further pinned to the
// op's exact status by successStatus.
var (
	restStatuses = map[Outcome][]int{
		OutcomeSuccess:         {http.StatusOK, http.StatusCreated},
		OutcomeNoContent:       {http.StatusNoContent},
		OutcomeInvalidArgument: {http.StatusBadRequest},
		OutcomeUnauthenticated: {http.StatusUnauthorized},
		OutcomeNotFound:        {http.StatusNotFound},
		OutcomeAlreadyExists:   {http.StatusConflict},
		OutcomeInternal:        {http.StatusInternalServerError},
	}
	rpcStatuses = map[Outcome][]codes.Code{
		OutcomeSuccess:         {codes.OK},
		OutcomeNoContent:       {codes.OK},
		OutcomeInvalidArgument: {codes.InvalidArgument},
		OutcomeUnauthenticated: {codes.Unauthenticated},
		OutcomeNotFound:        {codes.NotFound},
		OutcomeAlreadyExists:   {codes.AlreadyExists},
		OutcomeInternal:        {codes.Internal},
	}
)

func outcomeFromHTTP(status int) Outcome {
	for o, list := range restStatuses {
		for _, s := range list {
			if s == status {
				return o
			}
		}
	}
	return OutcomeUnknown
}

func outcomeFromCode(c codes.Code, noContent bool) Outcome {
	if c == codes.OK {
		if noContent {
			return OutcomeNoContent
		}
		return OutcomeSuccess
	}
	for o, list := range rpcStatuses {
		if o.ok() {
			continue
		}
		for _, x := range list {
			if x == c {
				return o
			}
		}
	}
	return OutcomeUnknown
}
