package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"taskapi/models"
)

// Dialect captures the few places where sqlite3 and postgres differ for the
// queries in this package.
type Dialect struct {
	Name string

	numbered bool // $1, $2 placeholders instead of ?
	timeArg  func(time.Time) any
	unique   func(error) bool
	foreign  func(error) bool
}

// SQLite stores timestamps as SQL-style UTC text.
var SQLite = Dialect{
	Name:    "sqlite3",
	timeArg: func(t time.Time) any { return t.UTC().Format(models.SQLTimeLayout) },
	unique: func(err error) bool {
		var se sqlite3.Error
		return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
	},
	foreign: func(err error) bool {
		var se sqlite3.Error
		return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	},
}

// Postgres passes time.Time straight to timestamptz columns.
var Postgres = Dialect{
	Name:     "postgres",
	numbered: true,
	timeArg:  func(t time.Time) any { return t.UTC() },
	unique: func(err error) bool {
		var pe *pgconn.PgError
		return errors.As(err, &pe) && pe.Code == "23505"
	},
	foreign: func(err error) bool {
		var pe *pgconn.PgError
		return errors.As(err, &pe) && pe.Code == "23503"
	},
}

// rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// translate maps driver errors onto the package sentinels.
func (d Dialect) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case d.unique(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case d.foreign(err):
		// the referenced user is gone
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

var scanLayouts = []string{
	models.SQLTimeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

// timeCol scans either a native time or one of the text layouts above.
type timeCol struct{ t *time.Time }

func (c timeCol) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*c.t = v.UTC()
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	case nil:
		return errors.New("timestamp column is NULL")
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (c timeCol) parse(s string) error {
	for _, layout := range scanLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*c.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}
