package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskapi/models"
)

const userColumns = `id, username, password, created_at, updated_at`

type UserRepository struct {
	db  *sql.DB
	d   Dialect
	now func() time.Time
}

func NewUserRepository(db *sql.DB, d Dialect) *UserRepository {
	return &UserRepository{db: db, d: d, now: models.Now}
}

// Create inserts a new user and returns it with its generated ID.
// A taken username yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := r.now()
	u := &models.User{Username: username, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	err := r.db.QueryRowContext(ctx,
		r.d.rebind(`INSERT INTO users (username, password, created_at, updated_at) VALUES (?, ?, ?, ?) RETURNING id`),
		username, passwordHash, r.d.timeArg(now), r.d.timeArg(now)).Scan(&u.ID)
	if err != nil {
		return nil, r.d.translate(err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.scanOne(r.db.QueryRowContext(ctx, r.d.rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.scanOne(r.db.QueryRowContext(ctx, r.d.rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username))
}

// List returns every user in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, timeCol{&u.CreatedAt}, timeCol{&u.UpdatedAt}); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePassword stores a new hash and bumps updated_at past its previous value.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (*models.User, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	updated := models.NextUpdate(cur.UpdatedAt, r.now())
	res, err := r.db.ExecContext(ctx, r.d.rebind(`UPDATE users SET password = ?, updated_at = ? WHERE id = ?`),
		passwordHash, r.d.timeArg(updated), id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	cur.PasswordHash = passwordHash
	cur.UpdatedAt = updated
	return cur, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.d.rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, timeCol{&u.CreatedAt}, timeCol{&u.UpdatedAt}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
