package harness

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"taskapi/internal/rpcpb"
)

// RPCClient drives the gRPC surface with dynamic messages.
type RPCClient struct {
	Conn grpc.ClientConnInterface
}

func NewRPCClient(conn grpc.ClientConnInterface) *RPCClient {
	return &RPCClient{Conn: conn}
}

func (c *RPCClient) Name() string { return "rpc" }

func (c *RPCClient) Do(ctx context.Context, call Call) (*Response, error) {
	def, err := lookupOp(call.Op)
	if err != nil {
		return nil, err
	}
	in := rpcpb.NewInput(def.rpc.method)
	for _, f := range def.rpc.fields {
		if err := setField(in, f.field, call.Args, f.arg); err != nil {
			return nil, fmt.Errorf("%s: %w", call.Op, err)
		}
	}
	if call.Token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+call.Token)
	}

	out := rpcpb.NewOutput(def.rpc.method)
	if err := c.Conn.Invoke(ctx, def.rpc.method, in, out); err != nil {
		st, ok := status.FromError(err)
		if !ok {
			return nil, fmt.Errorf("%s: %w", def.rpc.method, err)
		}
		return NewRPCResponse(st.Code(), def.noContent, nil, st.Message()), nil
	}
	rec, err := normalizeRPC(call.Op, out, call.Revert)
	if err != nil {
		return nil, err
	}
	resp := NewRPCResponse(codes.OK, def.noContent, rec, "")
	resp.Envelope = envelopeCode(out)
	return resp, nil
}

// envelopeCode reads status_info.code, or status.code when status is a
// message; CreateTask uses status for the task's own state.
func envelopeCode(m protoreflect.Message) int {
	fields := m.Descriptor().Fields()
	for _, name := range []protoreflect.Name{"status_info", "status"} {
		fd := fields.ByName(name)
		if fd == nil || fd.Kind() != protoreflect.MessageKind || !m.Has(fd) {
			continue
		}
		st := m.Get(fd).Message()
		if code := st.Descriptor().Fields().ByName("code"); code != nil {
			return int(st.Get(code).Int())
		}
	}
	return 0
}

// setField copies args[arg] into a request field. Absent and null args
// leave the field unset; integer fields coerce decimal strings and take 0
// for anything unparseable.
func setField(m *dynamicpb.Message, field string, args map[string]any, arg string) error {
	v, ok := args[arg]
	if !ok || v == nil {
		return nil
	}
	fd := rpcpb.Field(m, field)
	switch fd.Kind() {
	case protoreflect.StringKind:
		m.Set(fd, protoreflect.ValueOfString(argString(v)))
	case protoreflect.Int64Kind:
		m.Set(fd, protoreflect.ValueOfInt64(argInt(v)))
	case protoreflect.Int32Kind:
		m.Set(fd, protoreflect.ValueOfInt32(int32(argInt(v))))
	case protoreflect.BoolKind:
		b, _ := v.(bool)
		m.Set(fd, protoreflect.ValueOfBool(b))
	default:
		return fmt.Errorf("field %s has unsupported kind %s", field, fd.Kind())
	}
	return nil
}

func argInt(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int64:
		return x
	case float64:
		return int64(x)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
