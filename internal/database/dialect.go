package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect abstracts the syntax differences between the supported databases.
// Queries are written once in MySQL flavor (`?` placeholders, backtick quoting)
// and adapted at execution time. A dialect is selected once at startup.
type Dialect interface {
	// Name returns the configuration name of the dialect (mysql | postgresql).
	Name() string
	// DriverName returns the database/sql driver to open.
	DriverName() string
	// DSN builds a driver connection string.
	DSN(host, port, user, password, dbname string) string
	// Placeholder returns the parameter marker for a 1-based position.
	Placeholder(n int) string
	// Adapt rewrites a `?`-placeholder query into the dialect's syntax.
	Adapt(query string) string
	// ReturningClause is appended to INSERT statements when the driver cannot
	// report the last inserted id itself. Empty for MySQL.
	ReturningClause() string
}

// NewDialect returns the dialect for a DB_TYPE value.
func NewDialect(dbType string) (Dialect, error) {
	switch dbType {
	case "mysql":
		return mysqlDialect{}, nil
	case "postgresql":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", user, password, host, port, dbname)
}

func (mysqlDialect) Placeholder(n int) string { return "?" }

// Adapt is a passthrough: queries are already written in MySQL flavor.
func (mysqlDialect) Adapt(query string) string { return query }

func (mysqlDialect) ReturningClause() string { return "" }

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgresql" }
func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) DSN(host, port, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// Adapt renumbers `?` placeholders to `$1..$N` in order of occurrence, rewrites
// backtick-quoted identifiers to double quotes and AUTO_INCREMENT to SERIAL.
// The rewrite is purely textual: a `?` or backtick inside a string literal is
// rewritten too, so literals in adapted queries must be bound as parameters.
func (d postgresDialect) Adapt(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		switch r {
		case '?':
			n++
			b.WriteString(d.Placeholder(n))
		case '`':
			b.WriteByte('"')
		default:
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(b.String(), "AUTO_INCREMENT", "SERIAL")
}

func (postgresDialect) ReturningClause() string { return " RETURNING id" }
