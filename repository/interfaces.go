package repository

import (
	"context"
	"errors"

	"taskapi/models"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("duplicate")
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (*models.User, error)
	// Delete removes the user and, through the foreign key, its tasks.
	Delete(ctx context.Context, id int64) error
}

// TaskRepositoryI defines operations on Task entities.
type TaskRepositoryI interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	List(ctx context.Context, f TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, id int64, p TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// TaskFilter narrows List. Nil fields do not filter.
type TaskFilter struct {
	UserID *int64
	Status *models.TaskStatus
}

// TaskPatch carries the fields an update supplies. Nil means untouched;
// a non-nil empty Description clears it to the empty string.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
}

// Empty reports whether the patch supplies no field at all.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// Store bundles the repositories of one backend.
type Store struct {
	Users UserRepositoryI
	Tasks TaskRepositoryI

	closeFn func() error
}

// Close releases the backend's resources.
func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
