package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect captures the differences between the supported SQL engines. Queries
// are written once with ? placeholders and rebound per dialect.
type Dialect struct {
	Name string
	// attribute renders the text value of one JSON attribute. It takes one
	// parameter: the attribute name.
	attribute         string
	numbered          bool
	isUniqueViolation func(error) bool
	// timeValue converts a timestamp into the bind value the driver stores
	// losslessly.
	timeValue func(time.Time) any
}

var (
	Postgres = Dialect{
		Name:      "postgres",
		attribute: "attributes->>CAST(? AS TEXT)",
		numbered:  true,
		isUniqueViolation: func(err error) bool {
			var pqErr *pq.Error
			return errors.As(err, &pqErr) && pqErr.Code == "23505"
		},
		timeValue: func(t time.Time) any { return t.UTC() },
	}
	SQLite = Dialect{
		Name:      "sqlite",
		attribute: "CAST(json_extract(attributes, '$.' || ?) AS TEXT)",
		isUniqueViolation: func(err error) bool {
			var sqliteErr *sqlite.Error
			return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
		},
		timeValue: func(t time.Time) any { return t.UTC().Format(time.RFC3339Nano) },
	}
)

// DialectFor returns the dialect registered for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return Postgres, nil
	case "sqlite":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// Rebind rewrites ? placeholders into $n for dialects that number them.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
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
