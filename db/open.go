// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database type constants
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

func init() {
	// sqlx does not know the modernc driver name.
	sqlx.BindDriver(TypeSQLite, sqlx.QUESTION)
}

// Open connects to the database described by dbType and url and verifies the
// connection.
func Open(ctx context.Context, dbType, url string) (*sqlx.DB, error) {
	var (
		conn *sqlx.DB
		err  error
	)

	switch dbType {
	case TypePostgres:
		conn, err = sqlx.Open("postgres", url)
	case TypeSQLite:
		conn, err = sqlx.Open("sqlite", SQLiteDSN(url))
		if err == nil {
			// One writer at a time; concurrent callers queue on the pool.
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}

	return conn, nil
}

// SQLiteDSN turns a path or file: URI into a modernc DSN with the pragmas the
// store relies on (foreign keys, busy timeout).
func SQLiteDSN(url string) string {
	dsn := url
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
