package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskapi/models"
)

func newPostgresMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	s := NewSQLStore(db, Postgres)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s, mock
}

func TestPostgres_RebindNumbersPlaceholders(t *testing.T) {
	got := Postgres.rebind(`UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?`)
	assert.Equal(t, `UPDATE tasks SET title = $1, updated_at = $2 WHERE id = $3`, got)
	assert.Equal(t, `SELECT ? FROM t`, SQLite.rebind(`SELECT ? FROM t`))
}

func TestPostgres_CreateUser(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (username, password, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`)).
		WithArgs("a@example.com", "hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	u, err := s.Users.Create(context.Background(), "a@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateUser_UniqueViolation(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := s.Users.Create(context.Background(), "a@example.com", "hash")
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateTask_ForeignKeyViolation(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectQuery(`INSERT INTO tasks`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := s.Tasks.Create(context.Background(), &models.Task{Title: "t", UserID: 3})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_ListTasks_ScansNativeTimes(t *testing.T) {
	s, mock := newPostgresMock(t)
	created := time.Date(2024, 2, 3, 4, 5, 6, 7_000_000, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "description", "status", "user_id", "created_at", "updated_at"}).
		AddRow(int64(2), "b", nil, "pending", int64(1), created, created).
		AddRow(int64(1), "a", "desc", "completed", int64(1), created, created)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, description, status, user_id, created_at, updated_at FROM tasks WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC, id DESC`)).
		WithArgs(int64(1), "pending").
		WillReturnRows(rows)

	uid := int64(1)
	st := models.TaskStatusPending
	list, err := s.Tasks.List(context.Background(), TaskFilter{UserID: &uid, Status: &st})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].Description)
	require.NotNil(t, list[1].Description)
	assert.Equal(t, "desc", *list[1].Description)
	assert.True(t, list[0].CreatedAt.Equal(created))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteTask_NoRows(t *testing.T) {
	s, mock := newPostgresMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Tasks.Delete(context.Background(), 9), ErrNotFound)
}
