// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultstore

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const defaultPoolSize = 4

// connectionPragmas are applied to every connection before first use.
var connectionPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA foreign_keys=OFF",
	"PRAGMA cache_size=-8192",
	"PRAGMA temp_store=MEMORY",
}

// pool wraps sqlitex.Pool with the store's pragmas and schema.
type pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

func openPool(path string, size int, logger *slog.Logger) (*pool, error) {
	if size <= 0 {
		size = defaultPoolSize
	}
	inner, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    size,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	logger.Debug("result store pool opened", "path", path, "pool_size", size)
	return &pool{inner: inner, logger: logger, path: path}, nil
}

// take borrows a connection. The caller must put it back.
func (p *pool) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("take connection: %w", err)
	}
	return conn, nil
}

func (p *pool) put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

func (p *pool) close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("result store close failed", "path", p.path, "error", err)
		return fmt.Errorf("closing %s: %w", p.path, err)
	}
	p.logger.Debug("result store pool closed", "path", p.path)
	return nil
}

func prepareConnection(conn *sqlite.Conn) error {
	for _, pragma := range connectionPragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS evaluations (
		id             TEXT PRIMARY KEY,
		algorithm      TEXT NOT NULL,
		challenge_type TEXT NOT NULL,
		volume         INTEGER NOT NULL,
		seed           INTEGER NOT NULL,
		started_at     INTEGER NOT NULL,
		duration_ms    REAL NOT NULL,
		status         TEXT NOT NULL,
		cpu_time_ms    REAL NOT NULL,
		memory_mb      REAL NOT NULL,
		group_id       TEXT,
		position       INTEGER NOT NULL DEFAULT 0,
		compression    INTEGER NOT NULL,
		body_size      INTEGER NOT NULL,
		body           BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_evaluations_algorithm ON evaluations(algorithm, started_at);
	CREATE INDEX IF NOT EXISTS idx_evaluations_started ON evaluations(started_at);
	CREATE INDEX IF NOT EXISTS idx_evaluations_group ON evaluations(group_id, position);

	CREATE TABLE IF NOT EXISTS run_groups (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		saved_at    INTEGER NOT NULL,
		status      TEXT NOT NULL,
		compression INTEGER NOT NULL,
		body_size   INTEGER NOT NULL,
		body        BLOB NOT NULL
	);
`
