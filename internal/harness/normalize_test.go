package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/rpcpb"
)

func TestNormalizeREST_CreateTask(t *testing.T) {
	raw := []byte(`{"success":true,"message":"Task created successfully","taskId":"12","title":"T","description":null,"status":"pending"}`)
	got, err := normalizeREST(OpCreateTask, raw, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"success":     true,
		"message":     "Task created successfully",
		"taskId":      int64(12),
		"title":       "T",
		"description": nil,
		"status":      "pending",
	}, got)
}

func TestNormalizeRPC_CreateTaskMatchesREST(t *testing.T) {
	out := rpcpb.NewOutput(rpcpb.MethodCreateTask)
	rpcpb.SetBool(out, "success", true)
	rpcpb.SetString(out, "message", "Task created successfully")
	rpcpb.SetInt64(out, "task_id", 12)
	rpcpb.SetString(out, "title", "T")
	rpcpb.SetString(out, "status", "pending")
	rpcpb.SetStatus(out, "status_info", 201, "Task created successfully")

	rpcRec, err := normalizeRPC(OpCreateTask, out, nil)
	require.NoError(t, err)
	restRec, err := normalizeREST(OpCreateTask, []byte(`{"success":true,"message":"Task created successfully","taskId":"99","title":"T","description":null,"status":"pending"}`), nil)
	require.NoError(t, err)

	assert.NotContains(t, rpcRec, "statusInfo")
	assert.Empty(t, Compare(restRec, rpcRec))
}

func TestNormalizeRPC_UnwrapsAndRenames(t *testing.T) {
	out := rpcpb.NewOutput(rpcpb.MethodUpdateTask)
	task := rpcpb.Mutable(out, "task")
	rpcpb.SetInt64(task, "id", 3)
	rpcpb.SetString(task, "title", "T")
	rpcpb.SetInt64(task, "user_id", 1)
	rpcpb.SetString(task, "created_at", "2026-01-02T03:04:05.006Z")
	rpcpb.SetString(task, "updated_at", "2026-01-02 03:04:05.007")
	rpcpb.SetStatus(out, "status", 200, "Task updated successfully")

	got, err := normalizeRPC(OpUpdateTask, out, nil)
	require.NoError(t, err)
	rec := got.(map[string]any)
	assert.Equal(t, int64(1), rec["userId"])
	assert.Nil(t, rec["description"])
	assert.Equal(t, "2026-01-02T03:04:05.006Z", rec["createdAt"])
	assert.Equal(t, "2026-01-02T03:04:05.007Z", rec["updatedAt"])
	assert.NotContains(t, rec, "status_info")
}

func TestNormalize_ListsAndNoContent(t *testing.T) {
	users := rpcpb.NewOutput(rpcpb.MethodGetUsers)
	rpcpb.SetStatus(users, "status", 200, "Users fetched successfully")
	got, err := normalizeRPC(OpListUsers, users, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)

	restUsers, err := normalizeREST(OpListUsers, []byte(`[]`), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, restUsers)

	del, err := normalizeRPC(OpDeleteTask, rpcpb.NewOutput(rpcpb.MethodDeleteTask), nil)
	require.NoError(t, err)
	assert.Nil(t, del)
}

func TestNamespacer(t *testing.T) {
	ns := namespacer{run: "abc123"}
	restEmail := ns.apply("rest", "a@example.com")
	rpcEmail := ns.apply("rpc", "a@example.com")
	assert.Equal(t, "a+rest-abc123@example.com", restEmail)
	assert.NotEqual(t, restEmail, rpcEmail)

	revert := ns.revert()
	assert.Equal(t, "a@example.com", revert(restEmail))
	assert.Equal(t, "a@example.com", revert(rpcEmail))
	assert.Equal(t, "a+other-zzz@example.com", revert("a+other-zzz@example.com"))

	assert.Nil(t, namespacer{}.revert())
	assert.Equal(t, "a@example.com", namespacer{}.apply("rest", "a@example.com"))
}

func TestSubstituteAndLookup(t *testing.T) {
	vars := map[string]any{"uid": int64(7), "token": "tok"}
	got, err := substitute(map[string]any{"id": "${uid}", "note": "user ${uid}", "n": 3}, vars)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(7), "note": "user 7", "n": 3}, got)

	_, err = substitute("${missing}", vars)
	assert.Error(t, err)

	rec := map[string]any{"tasks": []any{map[string]any{"title": "T"}}}
	v, ok := lookup(rec, "tasks[0].title")
	assert.True(t, ok)
	assert.Equal(t, "T", v)
	_, ok = lookup(rec, "tasks[1].title")
	assert.False(t, ok)
	v, ok = lookup([]any{"x"}, "[0]")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestEnvelopeCode(t *testing.T) {
	created := rpcpb.NewOutput(rpcpb.MethodCreateTask)
	rpcpb.SetString(created, "status", "pending")
	rpcpb.SetStatus(created, "status_info", 201, "Task created successfully")
	assert.Equal(t, 201, envelopeCode(created))

	user := rpcpb.NewOutput(rpcpb.MethodGetUser)
	rpcpb.SetStatus(user, "status", 200, "User fetched successfully")
	assert.Equal(t, 200, envelopeCode(user))

	assert.Equal(t, 0, envelopeCode(rpcpb.NewOutput(rpcpb.MethodLogout)))
}
