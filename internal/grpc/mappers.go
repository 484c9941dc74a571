package grpcserver

import (
	"google.golang.org/protobuf/reflect/protoreflect"

	"taskapi/internal/rpcpb"
	"taskapi/models"
)

// HTTP-like codes carried in the Status envelope of every response.
const (
	statusOK      = 200
	statusCreated = 201
)

func putUser(m protoreflect.Message, u *models.User) {
	rpcpb.SetInt64(m, "id", u.ID)
	rpcpb.SetString(m, "username", u.Username)
	rpcpb.SetString(m, "created_at", models.FormatWireTime(u.CreatedAt))
	rpcpb.SetString(m, "updated_at", models.FormatWireTime(u.UpdatedAt))
}

func putTask(m protoreflect.Message, t *models.Task) {
	rpcpb.SetInt64(m, "id", t.ID)
	rpcpb.SetString(m, "title", t.Title)
	rpcpb.SetOptionalString(m, "description", t.Description)
	rpcpb.SetString(m, "status", string(t.Status))
	rpcpb.SetInt64(m, "user_id", t.UserID)
	rpcpb.SetString(m, "created_at", models.FormatWireTime(t.CreatedAt))
	rpcpb.SetString(m, "updated_at", models.FormatWireTime(t.UpdatedAt))
}
