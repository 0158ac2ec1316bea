// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// pool is a fixed-size set of SQLite connections, each prepared with
// the catalog pragmas and schema on first use.
type pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// connectionPragmas are applied to every connection before the schema.
//
//   - journal_mode=WAL: readers never block the writer or each other.
//   - synchronous=NORMAL: commits survive a process crash.
//   - busy_timeout=5000: writers wait up to 5s for the write lock.
//   - temp_store=MEMORY: temporary tables and indexes stay in memory.
var connectionPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

func openPool(path string, size int, schema string, logger *slog.Logger) (*pool, error) {
	inner, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: size,
		PrepareConn: func(conn *sqlite.Conn) error {
			for _, pragma := range connectionPragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("%s: %w", pragma, err)
				}
			}
			if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
				return fmt.Errorf("creating catalog schema: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	logger.Debug("catalog opened", "path", path, "pool_size", size)
	return &pool{inner: inner, logger: logger, path: path}, nil
}

// take borrows a connection. The caller must put it back.
func (p *pool) take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", p.path, err)
	}
	return conn, nil
}

func (p *pool) put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// close blocks until every borrowed connection is back.
func (p *pool) close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("catalog close failed", "path", p.path, "error", err)
		return fmt.Errorf("closing catalog %s: %w", p.path, err)
	}
	p.logger.Debug("catalog closed", "path", p.path)
	return nil
}
