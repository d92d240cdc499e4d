package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the SQL driver and its placeholder syntax
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a configured dialect name
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case DialectSQLite, DialectPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sql dialect %q", name)
	}
}

func (d Dialect) driverName() string {
	return string(d)
}

func (d Dialect) migrationRoot() string {
	return "migrations/" + string(d)
}

// rebind rewrites ? placeholders into $n for postgres. Queries in this
// package never contain literal question marks.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
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
