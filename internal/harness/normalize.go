package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/reflect/protoreflect"

	"taskapi/models"
)

// renames maps transport-native field names onto the normalized ones.
var renames = map[string]string{
	"user_id":     "userId",
	"task_id":     "taskId",
	"created_at":  "createdAt",
	"updated_at":  "updatedAt",
	"status_info": "statusInfo",
}

// opaqueFields hold generated values: compared for presence and type only.
var opaqueFields = map[string]bool{
	"id":        true,
	"taskId":    true,
	"userId":    true,
	"token":     true,
	"createdAt": true,
	"updatedAt": true,
}

var idFields = map[string]bool{"id": true, "taskId": true, "userId": true}

var timeFields = map[string]bool{"createdAt": true, "updatedAt": true}

// forbiddenFields must never appear in any response.
var forbiddenFields = map[string]bool{"password": true}

var timeLayouts = []string{
	models.WireTimeLayout,
	models.SQLTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// normalizeREST decodes a JSON body into a record. Numbers become int64 when
// integral and float64 otherwise.
func normalizeREST(op Op, raw []byte, revert func(string) string) (any, error) {
	def, err := lookupOp(op)
	if err != nil {
		return nil, err
	}
	if def.noContent || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	return canonicalize("", rename(v), revert), nil
}

// normalizeRPC walks a response message, renames its fields and applies the
// op's projection.
func normalizeRPC(op Op, m protoreflect.Message, revert func(string) string) (any, error) {
	def, err := lookupOp(op)
	if err != nil {
		return nil, err
	}
	if def.noContent {
		return nil, nil
	}
	rec := rename(messageToRecord(m)).(map[string]any)
	return canonicalize("", def.project.apply(rec), revert), nil
}

func (p projection) apply(rec map[string]any) any {
	if p.unwrap != "" {
		return rec[p.unwrap]
	}
	for _, k := range p.drop {
		delete(rec, k)
	}
	return rec
}

func messageToRecord(m protoreflect.Message) map[string]any {
	fields := m.Descriptor().Fields()
	out := make(map[string]any, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		out[string(fd.Name())] = fieldValue(m, fd)
	}
	return out
}

func fieldValue(m protoreflect.Message, fd protoreflect.FieldDescriptor) any {
	switch {
	case fd.IsList():
		list := m.Get(fd).List()
		out := make([]any, 0, list.Len())
		for i := 0; i < list.Len(); i++ {
			out = append(out, singular(fd, list.Get(i)))
		}
		return out
	case fd.HasPresence() && !m.Has(fd):
		return nil
	default:
		return singular(fd, m.Get(fd))
	}
}

func singular(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return messageToRecord(v.Message())
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind, protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return int64(v.Uint())
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return v.Float()
	case protoreflect.BytesKind:
		return string(v.Bytes())
	case protoreflect.EnumKind:
		return int64(v.Enum())
	default:
		return v.String()
	}
}

func rename(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			if to, ok := renames[k]; ok {
				k = to
			}
			out[k] = rename(val)
		}
		return out
	case []any:
		for i := range x {
			x[i] = rename(x[i])
		}
		return x
	default:
		return v
	}
}

// canonicalize coerces decimal-string ids to int64, re-emits timestamps in
// the wire layout and maps namespaced strings back through revert.
func canonicalize(key string, v any, revert func(string) string) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = canonicalize(k, val, revert)
		}
		return x
	case []any:
		for i := range x {
			x[i] = canonicalize("", x[i], revert)
		}
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case string:
		if idFields[key] {
			if n, err := strconv.ParseInt(x, 10, 64); err == nil {
				return n
			}
		}
		if timeFields[key] {
			if t, ok := parseTime(x); ok {
				return models.FormatWireTime(t)
			}
		}
		if revert != nil {
			return revert(x)
		}
		return x
	default:
		return v
	}
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize applies the value coercions to an expectation literal so it can
// be compared with a normalized record.
func Normalize(key string, v any) any {
	return canonicalize(key, v, nil)
}
