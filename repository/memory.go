package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskapi/models"
)

// memoryDB is the in-process backend. Users and tasks share one lock so that
// deleting a user and its tasks is a single step, as with ON DELETE CASCADE.
type memoryDB struct {
	mu         sync.RWMutex
	users      map[int64]models.User
	tasks      map[int64]models.Task
	nextUserID int64
	nextTaskID int64
	now        func() time.Time
}

// NewMemoryStore returns a Store held entirely in process memory.
func NewMemoryStore() *Store {
	m := &memoryDB{
		users: make(map[int64]models.User),
		tasks: make(map[int64]models.Task),
		now:   models.Now,
	}
	return &Store{Users: (*MemoryUsers)(m), Tasks: (*MemoryTasks)(m)}
}

// MemoryUsers implements UserRepositoryI over memoryDB.
type MemoryUsers memoryDB

func (r *MemoryUsers) Create(_ context.Context, username, passwordHash string) (*models.User, error) {
	m := (*memoryDB)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return nil, ErrDuplicate
		}
	}
	m.nextUserID++
	now := m.now()
	u := models.User{ID: m.nextUserID, Username: username, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	m.users[u.ID] = u
	return &u, nil
}

func (r *MemoryUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	m := (*memoryDB)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m := (*memoryDB)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsers) List(_ context.Context) ([]models.User, error) {
	m := (*memoryDB)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryUsers) UpdatePassword(_ context.Context, id int64, passwordHash string) (*models.User, error) {
	m := (*memoryDB)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = models.NextUpdate(u.UpdatedAt, m.now())
	m.users[id] = u
	return &u, nil
}

func (r *MemoryUsers) Delete(_ context.Context, id int64) error {
	m := (*memoryDB)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	for tid, t := range m.tasks {
		if t.UserID == id {
			delete(m.tasks, tid)
		}
	}
	return nil
}

// MemoryTasks implements TaskRepositoryI over memoryDB.
type MemoryTasks memoryDB

func (r *MemoryTasks) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	m := (*memoryDB)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	// mirrors the foreign key on tasks.user_id
	if _, ok := m.users[t.UserID]; !ok {
		return nil, ErrNotFound
	}
	out := cloneTask(*t)
	if out.Status == "" {
		out.Status = models.TaskStatusPending
	}
	m.nextTaskID++
	out.ID = m.nextTaskID
	now := m.now()
	out.CreatedAt, out.UpdatedAt = now, now
	m.tasks[out.ID] = out
	res := cloneTask(out)
	return &res, nil
}

func (r *MemoryTasks) GetByID(_ context.Context, id int64) (*models.Task, error) {
	m := (*memoryDB)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	res := cloneTask(t)
	return &res, nil
}

func (r *MemoryTasks) List(_ context.Context, f TaskFilter) ([]models.Task, error) {
	m := (*memoryDB)(r)
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Task{}
	for _, t := range m.tasks {
		if f.UserID != nil && t.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryTasks) Update(_ context.Context, id int64, p TaskPatch) (*models.Task, error) {
	m := (*memoryDB)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !p.Empty() {
		applyPatch(&t, p)
		t.UpdatedAt = models.NextUpdate(t.UpdatedAt, m.now())
		m.tasks[id] = t
	}
	res := cloneTask(t)
	return &res, nil
}

func (r *MemoryTasks) Delete(_ context.Context, id int64) error {
	m := (*memoryDB)(r)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func cloneTask(t models.Task) models.Task {
	if t.Description != nil {
		v := *t.Description
		t.Description = &v
	}
	return t
}
