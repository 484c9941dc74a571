package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"taskapi/internal/auth"
	"taskapi/internal/logging"
	"taskapi/models"
	"taskapi/repository"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	authn := auth.NewAuthenticator(auth.NewTokenCodec("svc-secret", 7*24*time.Hour), auth.NewRevocations())
	return New(repository.NewMemoryStore(), auth.NewBcryptHasher(bcrypt.MinCost), authn, logging.Discard())
}

func requireCode(t *testing.T, err error, want Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, CodeOf(err), "err=%v", err)
}

func strPtr(s string) *string { return &s }

func TestCreateUser_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, "", "password123")
	requireCode(t, err, CodeInvalidArgument)
	_, err = s.CreateUser(ctx, "a@example.com", "")
	requireCode(t, err, CodeInvalidArgument)
	_, err = s.CreateUser(ctx, "a@example.com", "12345")
	requireCode(t, err, CodeInvalidArgument)
	assert.Equal(t, "Password must be at least 6 characters long", MessageOf(err))
	_, err = s.CreateUser(ctx, "a@example.com", strings.Repeat("p", 80))
	requireCode(t, err, CodeInvalidArgument)

	u, err := s.CreateUser(ctx, "a@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Username)
	assert.NotEqual(t, "123456", u.PasswordHash)

	_, err = s.CreateUser(ctx, "a@example.com", "password123")
	requireCode(t, err, CodeAlreadyExists)
}

func TestAuthenticate_DoesNotDiscloseEmail(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.CreateUser(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	_, errWrongPass := s.Authenticate(ctx, "a@example.com", "nope-nope")
	_, errNoUser := s.Authenticate(ctx, "ghost@example.com", "nope-nope")
	requireCode(t, errWrongPass, CodeUnauthenticated)
	requireCode(t, errNoUser, CodeUnauthenticated)
	assert.Equal(t, MessageOf(errWrongPass), MessageOf(errNoUser))

	_, err = s.Authenticate(ctx, "", "")
	requireCode(t, err, CodeInvalidArgument)

	tok, err := s.Authenticate(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	p, err := s.authn.Authenticate(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.Email)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), p.ExpiresAt, time.Minute)
}

func TestLogout(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, err := s.CreateUser(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	tok, err := s.Authenticate(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	requireCode(t, s.Logout(ctx, ""), CodeInvalidArgument)
	requireCode(t, s.Logout(ctx, "garbage"), CodeUnauthenticated)
	require.NoError(t, s.Logout(ctx, tok))
	requireCode(t, s.Logout(ctx, tok), CodeUnauthenticated)

	_, err = s.authn.Authenticate(tok)
	assert.ErrorIs(t, err, auth.ErrRevoked)
}

func TestUsers_GetUpdateDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	_, err = s.GetUser(ctx, 0)
	requireCode(t, err, CodeInvalidArgument)
	_, err = s.GetUser(ctx, 999)
	requireCode(t, err, CodeNotFound)
	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UpdateUser(ctx, u.ID, "short")
	requireCode(t, err, CodeInvalidArgument)
	_, err = s.UpdateUser(ctx, 999, "password456")
	requireCode(t, err, CodeNotFound)
	up, err := s.UpdateUser(ctx, u.ID, "password456")
	require.NoError(t, err)
	assert.True(t, up.UpdatedAt.After(u.UpdatedAt))
	_, err = s.Authenticate(ctx, "a@example.com", "password456")
	require.NoError(t, err)

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	requireCode(t, s.DeleteUser(ctx, -1), CodeInvalidArgument)
	require.NoError(t, s.DeleteUser(ctx, u.ID))
	requireCode(t, s.DeleteUser(ctx, u.ID), CodeNotFound)
}

func TestCreateTask_Validation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	for _, bad := range []string{"done", "PENDING", "in progress"} {
		_, err := s.CreateTask(ctx, NewTask{Title: "T", Status: bad, UserID: u.ID})
		requireCode(t, err, CodeInvalidArgument)
	}
	_, err = s.CreateTask(ctx, NewTask{Title: "", UserID: u.ID})
	requireCode(t, err, CodeInvalidArgument)
	_, err = s.CreateTask(ctx, NewTask{Title: "T", UserID: 0})
	requireCode(t, err, CodeInvalidArgument)
	_, err = s.CreateTask(ctx, NewTask{Title: "T", UserID: 999})
	requireCode(t, err, CodeNotFound)

	task, err := s.CreateTask(ctx, NewTask{Title: "T", UserID: u.ID})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Nil(t, task.Description)
}

func TestCreateTask_OwnerCheckedFirst(t *testing.T) {
	s := newTestService(t)
	_, err := s.CreateTask(context.Background(), NewTask{Title: "", Status: "done", UserID: 0})
	requireCode(t, err, CodeInvalidArgument)
	assert.Equal(t, msgOwnerRequired, MessageOf(err))
}

func TestCreateTask_EmptyDescriptionIsNull(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "a@example.com", "password123")
	require.NoError(t, err)

	task, err := s.CreateTask(ctx, NewTask{Title: "T", Description: strPtr(""), UserID: u.ID})
	require.NoError(t, err)
	assert.Nil(t, task.Description)

	page, err := s.ListTasks(ctx, u.ID, "")
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Nil(t, page.Tasks[0].Description)

	task, err = s.CreateTask(ctx, NewTask{Title: "T", Description: strPtr("text"), UserID: u.ID})
	require.NoError(t, err)
	require.NotNil(t, task.Description)
	assert.Equal(t, "text", *task.Description)
}

func TestListTasks_IgnoresInvalidStatus(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u, _ := s.CreateUser(ctx, "a@example.com", "password123")
	_, err := s.CreateTask(ctx, NewTask{Title: "A", UserID: u.ID})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, NewTask{Title: "B", Status: "completed", UserID: u.ID})
	require.NoError(t, err)

	page, err := s.ListTasks(ctx, u.ID, "bogus")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, DefaultPage, page.Page)
	assert.Equal(t, DefaultLimit, page.Limit)
	assert.Equal(t, "B", page.Tasks[0].Title)

	page, err = s.ListTasks(ctx, u.ID, "completed")
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "B", page.Tasks[0].Title)

	_, err = s.ListTasks(ctx, -1, "")
	requireCode(t, err, CodeInvalidArgument)
	assert.Equal(t, msgBadUserIDFormat, MessageOf(err))
}

func TestUpdateTask_EmptyStringQuirk(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u, _ := s.CreateUser(ctx, "a@example.com", "password123")
	task, err := s.CreateTask(ctx, NewTask{Title: "Keep", Description: strPtr("text"), UserID: u.ID})
	require.NoError(t, err)

	up, err := s.UpdateTask(ctx, task.ID, TaskUpdate{Title: strPtr(""), Description: strPtr("")}, 0)
	require.NoError(t, err)
	assert.Equal(t, "Keep", up.Title, "empty title is not supplied")
	require.NotNil(t, up.Description)
	assert.Equal(t, "", *up.Description, "empty description clears")
	assert.True(t, up.UpdatedAt.After(task.UpdatedAt))
}

func TestUpdateTask_StatusOnlyBumpsUpdatedAt(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u, _ := s.CreateUser(ctx, "a@example.com", "password123")
	task, err := s.CreateTask(ctx, NewTask{Title: "T", Description: strPtr("d"), UserID: u.ID})
	require.NoError(t, err)

	up, err := s.UpdateTask(ctx, task.ID, TaskUpdate{Status: strPtr("in_progress")}, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", up.Title)
	assert.Equal(t, "d", *up.Description)
	assert.Equal(t, models.TaskStatusInProgress, up.Status)
	assert.True(t, up.UpdatedAt.After(task.UpdatedAt))

	_, err = s.UpdateTask(ctx, task.ID, TaskUpdate{Status: strPtr("archived")}, u.ID)
	requireCode(t, err, CodeInvalidArgument)
	_, err = s.UpdateTask(ctx, 0, TaskUpdate{}, u.ID)
	requireCode(t, err, CodeInvalidArgument)
}

func TestTasks_OwnerScopeAndDeleteTwice(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	owner, _ := s.CreateUser(ctx, "a@example.com", "password123")
	other, _ := s.CreateUser(ctx, "b@example.com", "password123")
	task, err := s.CreateTask(ctx, NewTask{Title: "T", UserID: owner.ID})
	require.NoError(t, err)

	_, err = s.UpdateTask(ctx, task.ID, TaskUpdate{Title: strPtr("x")}, other.ID)
	requireCode(t, err, CodeNotFound)
	requireCode(t, s.DeleteTask(ctx, task.ID, other.ID), CodeNotFound)

	require.NoError(t, s.DeleteTask(ctx, task.ID, owner.ID))
	requireCode(t, s.DeleteTask(ctx, task.ID, owner.ID), CodeNotFound)
	_, err = s.UpdateTask(ctx, task.ID, TaskUpdate{Title: strPtr("x")}, owner.ID)
	requireCode(t, err, CodeNotFound)
}

func TestDeleteUser_CascadesTasks(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	u, _ := s.CreateUser(ctx, "a@example.com", "password123")
	_, err := s.CreateTask(ctx, NewTask{Title: "T", UserID: u.ID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	page, err := s.ListTasks(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)
}

func TestCodeOf_ForeignErrorIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(assert.AnError))
	assert.Equal(t, "Internal server error", MessageOf(assert.AnError))
	assert.Equal(t, "NotFound", CodeNotFound.String())
}
