package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskapi/models"
)

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

type TaskRepository struct {
	db  *sql.DB
	d   Dialect
	now func() time.Time
}

func NewTaskRepository(db *sql.DB, d Dialect) *TaskRepository {
	return &TaskRepository{db: db, d: d, now: models.Now}
}

// Create inserts a new task. Status defaults to pending when empty.
func (r *TaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	if t == nil {
		return nil, errors.New("task is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	out := *t
	if out.Status == "" {
		out.Status = models.TaskStatusPending
	}
	now := r.now()
	out.CreatedAt, out.UpdatedAt = now, now
	err := r.db.QueryRowContext(ctx,
		r.d.rebind(`INSERT INTO tasks (title, description, status, user_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		out.Title, out.Description, string(out.Status), out.UserID, r.d.timeArg(now), r.d.timeArg(now)).Scan(&out.ID)
	if err != nil {
		return nil, r.d.translate(err)
	}
	return &out, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	t, err := scanTask(r.db.QueryRowContext(ctx, r.d.rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// List returns tasks matching f ordered by created_at desc, id desc.
func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query, args := listTasksQuery(f)
	rows, err := r.db.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

// Update applies the supplied fields and refreshes updated_at so that it is
// strictly later than before. An empty patch returns the row untouched.
func (r *TaskRepository) Update(ctx context.Context, id int64, p TaskPatch) (*models.Task, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil || p.Empty() {
		return cur, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	updated := models.NextUpdate(cur.UpdatedAt, r.now())
	query, args := updateTaskQuery(id, p, r.d.timeArg(updated))
	res, err := r.db.ExecContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	applyPatch(cur, p)
	cur.UpdatedAt = updated
	return cur, nil
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.d.rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func applyPatch(t *models.Task, p TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		v := *p.Description
		t.Description = &v
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var status string
	var description sql.NullString
	if err := row.Scan(&t.ID, &t.Title, &description, &status, &t.UserID, timeCol{&t.CreatedAt}, timeCol{&t.UpdatedAt}); err != nil {
		return nil, err
	}
	t.Status = models.TaskStatus(status)
	if description.Valid {
		v := description.String
		t.Description = &v
	}
	return &t, nil
}

// scanTaskRows is a helper to scan rows into Task objects.
func scanTaskRows(rows *sql.Rows) ([]models.Task, error) {
	out := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
