package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/internal/auth"
	"taskapi/internal/logging"
	"taskapi/internal/service"
	"taskapi/repository"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	authn := auth.NewAuthenticator(auth.NewTokenCodec("rest-test-secret", time.Hour), auth.NewRevocations())
	svc := service.New(repository.NewMemoryStore(), auth.NewBcryptHasher(4), authn, logging.Discard())
	srv := httptest.NewServer(NewRouter(svc, authn, logging.Discard()))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, map[string]any, []byte) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(t, err)
	var obj map[string]any
	_ = json.Unmarshal(raw.Bytes(), &obj)
	return resp.StatusCode, obj, raw.Bytes()
}

func signupAndLogin(t *testing.T, srv *httptest.Server, email string) (int64, string) {
	t.Helper()
	code, user, _ := do(t, srv, http.MethodPost, "/users", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusCreated, code)
	code, tok, _ := do(t, srv, http.MethodPost, "/sessions", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, code)
	return int64(user["id"].(float64)), tok["token"].(string)
}

func TestUsers_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	id, token := signupAndLogin(t, srv, "a@example.com")

	code, body, _ := do(t, srv, http.MethodPost, "/users", "", map[string]string{"email": "a@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, map[string]any{"code": float64(409), "error": "Conflict", "message": "Email already exists"}, body)

	code, _, raw := do(t, srv, http.MethodGet, "/users", token, nil)
	require.Equal(t, http.StatusOK, code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "password")
	assert.ElementsMatch(t, []string{"id", "username", "createdAt", "updatedAt"}, keys(list[0]))

	path := "/users/" + strconv.FormatInt(id, 10)
	code, body, _ = do(t, srv, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a@example.com", body["username"])

	code, _, _ = do(t, srv, http.MethodPut, path, token, map[string]string{"password": "newpassword"})
	require.Equal(t, http.StatusOK, code)

	code, _, raw = do(t, srv, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, code)
	assert.Empty(t, raw)

	code, _, _ = do(t, srv, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAuth_MissingAndRevokedTokens(t *testing.T) {
	srv := newTestServer(t)
	_, token := signupAndLogin(t, srv, "b@example.com")

	code, body, _ := do(t, srv, http.MethodGet, "/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Unauthorized", body["error"])

	code, _, _ = do(t, srv, http.MethodDelete, "/sessions", token, nil)
	require.Equal(t, http.StatusNoContent, code)

	code, _, _ = do(t, srv, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _, _ = do(t, srv, http.MethodPost, "/sessions", "", map[string]string{"email": "b@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLogout_TokenStates(t *testing.T) {
	srv := newTestServer(t)
	_, token := signupAndLogin(t, srv, "c@example.com")

	code, body, _ := do(t, srv, http.MethodDelete, "/sessions", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, auth.MsgTokenRequired, body["message"])

	code, body, _ = do(t, srv, http.MethodDelete, "/sessions", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, auth.MsgInvalidToken, body["message"])

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Basic "+token)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	code, _, _ = do(t, srv, http.MethodDelete, "/sessions", token, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _, _ = do(t, srv, http.MethodDelete, "/sessions", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestTasks_CreateListUpdateDelete(t *testing.T) {
	srv := newTestServer(t)
	_, alice := signupAndLogin(t, srv, "alice@example.com")
	_, bob := signupAndLogin(t, srv, "bob@example.com")

	code, created, _ := do(t, srv, http.MethodPost, "/tasks", alice, map[string]any{"title": "T", "status": "pending"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, created["success"])
	assert.Equal(t, "Task created successfully", created["message"])
	assert.Nil(t, created["description"])
	taskID, ok := created["taskId"].(string)
	require.True(t, ok, "taskId is a string")

	code, page, _ := do(t, srv, http.MethodGet, "/tasks", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), page["page"])
	assert.Equal(t, float64(10), page["limit"])
	assert.Equal(t, float64(1), page["total"])

	code, page, _ = do(t, srv, http.MethodGet, "/tasks?status=bogus", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), page["total"])

	code, _, _ = do(t, srv, http.MethodPatch, "/tasks/"+taskID, bob, map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, code)

	code, updated, _ := do(t, srv, http.MethodPatch, "/tasks/"+taskID, alice, map[string]string{"status": "completed", "title": ""})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", updated["status"])
	assert.Equal(t, "T", updated["title"])

	code, _, _ = do(t, srv, http.MethodDelete, "/tasks/"+taskID, alice, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _, _ = do(t, srv, http.MethodDelete, "/tasks/"+taskID, alice, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBadInput(t *testing.T) {
	srv := newTestServer(t)
	_, token := signupAndLogin(t, srv, "c@example.com")

	code, body, _ := do(t, srv, http.MethodGet, "/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid user ID", body["message"])

	code, body, _ = do(t, srv, http.MethodPost, "/tasks", token, map[string]any{"title": "x", "priority": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, msgBadBody, body["message"])

	code, body, _ = do(t, srv, http.MethodPost, "/tasks", token, map[string]any{"title": "x", "status": "done"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Status must be pending, in_progress, or completed", body["message"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
