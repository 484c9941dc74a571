package rpcpb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func TestFile_ServicesAndMethods(t *testing.T) {
	require.NotNil(t, File)
	assert.Equal(t, 3, File.Services().Len())

	for _, full := range []string{
		MethodLogin, MethodLogout, MethodCreateUser, MethodGetUsers, MethodGetUser,
		MethodUpdateUser, MethodDeleteUser, MethodCreateTask, MethodGetTasks,
		MethodUpdateTask, MethodDeleteTask,
	} {
		md := Method(full)
		assert.Equal(t, full, "/"+string(md.Parent().FullName())+"/"+string(md.Name()))
	}
	assert.Panics(t, func() { Method("/taskmanagement.v1.TaskService/Nope") })
}

func TestOptionalFieldsTrackPresence(t *testing.T) {
	req := NewInput(MethodUpdateTask)
	assert.Nil(t, GetOptionalString(req, "title"))

	empty := ""
	SetOptionalString(req, "description", &empty)
	got := GetOptionalString(req, "description")
	require.NotNil(t, got)
	assert.Equal(t, "", *got)

	// presence survives the wire
	b, err := proto.Marshal(req)
	require.NoError(t, err)
	back := NewInput(MethodUpdateTask)
	require.NoError(t, proto.Unmarshal(b, back))
	require.NotNil(t, GetOptionalString(back, "description"))
	assert.Nil(t, GetOptionalString(back, "status"))
}

func TestNestedAndRepeated(t *testing.T) {
	resp := NewOutput(MethodGetTasks)
	task := Append(resp, "tasks")
	SetInt64(task, "user_id", 4)
	SetStatus(resp, "status", 200, "ok")

	list := resp.Get(Field(resp, "tasks")).List()
	require.Equal(t, 1, list.Len())
	assert.Equal(t, int64(4), GetInt64(list.Get(0).Message(), "user_id"))
	assert.Equal(t, "ok", GetString(Mutable(resp, "status"), "message"))

	assert.Panics(t, func() { GetString(resp, "nope") })
}

func TestJSONName(t *testing.T) {
	assert.Equal(t, "statusInfo", jsonName("status_info"))
	assert.Equal(t, "createdAt", jsonName("created_at"))
	assert.Equal(t, "id", jsonName("id"))
}
