package repository

import "database/sql"

// NewSQLStore wraps an open database. Closing the Store closes db.
func NewSQLStore(db *sql.DB, d Dialect) *Store {
	return &Store{
		Users:   NewUserRepository(db, d),
		Tasks:   NewTaskRepository(db, d),
		closeFn: db.Close,
	}
}
