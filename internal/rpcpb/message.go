package rpcpb

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Method returns the descriptor for a full method name such as MethodLogin.
func Method(fullMethod string) protoreflect.MethodDescriptor {
	svc, name, ok := strings.Cut(strings.TrimPrefix(fullMethod, "/"), "/")
	if !ok {
		panic(fmt.Sprintf("rpcpb: malformed method %q", fullMethod))
	}
	sd := File.Services().ByName(protoreflect.FullName(svc).Name())
	if sd == nil || string(sd.FullName()) != svc {
		panic(fmt.Sprintf("rpcpb: unknown service %q", svc))
	}
	md := sd.Methods().ByName(protoreflect.Name(name))
	if md == nil {
		panic(fmt.Sprintf("rpcpb: unknown method %q", fullMethod))
	}
	return md
}

// NewInput returns an empty request message for fullMethod.
func NewInput(fullMethod string) *dynamicpb.Message {
	return dynamicpb.NewMessage(Method(fullMethod).Input())
}

// NewOutput returns an empty response message for fullMethod.
func NewOutput(fullMethod string) *dynamicpb.Message {
	return dynamicpb.NewMessage(Method(fullMethod).Output())
}

// New returns an empty message of the named type, e.g. "User".
func New(name string) *dynamicpb.Message {
	md := File.Messages().ByName(protoreflect.Name(name))
	if md == nil {
		panic(fmt.Sprintf("rpcpb: unknown message %q", name))
	}
	return dynamicpb.NewMessage(md)
}

// Field looks a field up by its proto name. Unknown names are programming
// errors and panic.
func Field(m protoreflect.Message, name string) protoreflect.FieldDescriptor {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(fmt.Sprintf("rpcpb: %s has no field %q", m.Descriptor().FullName(), name))
	}
	return fd
}

func GetString(m protoreflect.Message, name string) string {
	return m.Get(Field(m, name)).String()
}

func GetInt64(m protoreflect.Message, name string) int64 {
	return m.Get(Field(m, name)).Int()
}

// GetOptionalString returns nil when an optional field is unset.
func GetOptionalString(m protoreflect.Message, name string) *string {
	fd := Field(m, name)
	if !m.Has(fd) {
		return nil
	}
	v := m.Get(fd).String()
	return &v
}

func SetString(m protoreflect.Message, name, v string) {
	m.Set(Field(m, name), protoreflect.ValueOfString(v))
}

func SetInt64(m protoreflect.Message, name string, v int64) {
	m.Set(Field(m, name), protoreflect.ValueOfInt64(v))
}

func SetInt32(m protoreflect.Message, name string, v int32) {
	m.Set(Field(m, name), protoreflect.ValueOfInt32(v))
}

func SetBool(m protoreflect.Message, name string, v bool) {
	m.Set(Field(m, name), protoreflect.ValueOfBool(v))
}

// SetOptionalString sets the field when v is non-nil and clears it otherwise,
// so an explicit empty string stays distinguishable from absence.
func SetOptionalString(m protoreflect.Message, name string, v *string) {
	fd := Field(m, name)
	if v == nil {
		m.Clear(fd)
		return
	}
	m.Set(fd, protoreflect.ValueOfString(*v))
}

// Mutable returns the (allocated) sub-message stored in field name.
func Mutable(m protoreflect.Message, name string) protoreflect.Message {
	return m.Mutable(Field(m, name)).Message()
}

// Append adds a new element to a repeated message field and returns it.
func Append(m protoreflect.Message, name string) protoreflect.Message {
	list := m.Mutable(Field(m, name)).List()
	el := list.NewElement()
	list.Append(el)
	return el.Message()
}

// SetStatus fills a Status sub-message.
func SetStatus(m protoreflect.Message, field string, code int32, message string) {
	st := Mutable(m, field)
	SetInt32(st, "code", code)
	SetString(st, "message", message)
}
