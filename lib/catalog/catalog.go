// Copyright 2026 The Modelwire Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/modelwire/modelwire/lib/clock"
	"github.com/modelwire/modelwire/lib/model"
	"github.com/modelwire/modelwire/lib/registry"
)

const schema = `
CREATE TABLE IF NOT EXISTS models (
	uuid       TEXT    NOT NULL,
	version    INTEGER NOT NULL,
	name       TEXT    NOT NULL,
	collection TEXT    NOT NULL DEFAULT '',
	definition BLOB    NOT NULL,
	added_at   INTEGER NOT NULL,
	PRIMARY KEY (uuid, version)
) WITHOUT ROWID;
`

// Options configures a Catalog.
type Options struct {
	// Path is the database file. Its directory must exist; the file is
	// created on first use.
	Path string

	// PoolSize is the number of connections. Zero means 4.
	PoolSize int

	// Clock stamps new entries. Nil uses clock.Real().
	Clock clock.Clock

	// Logger receives open, close, and put events. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Entry describes one stored model version.
type Entry struct {
	UUID       string    `json:"uuid"`
	Version    int16     `json:"version"`
	Name       string    `json:"name"`
	Collection string    `json:"collection,omitempty"`
	Size       int       `json:"size"`
	AddedAt    time.Time `json:"added_at"`
}

// Catalog is a persistent store of model definitions.
type Catalog struct {
	pool   *pool
	clock  clock.Clock
	logger *slog.Logger
}

// Open opens or creates the catalog at options.Path.
func Open(options Options) (*Catalog, error) {
	if options.Path == "" {
		return nil, fmt.Errorf("catalog: path is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := options.Clock
	if c == nil {
		c = clock.Real()
	}
	size := options.PoolSize
	if size <= 0 {
		size = 4
	}
	p, err := openPool(options.Path, size, schema, logger)
	if err != nil {
		return nil, err
	}
	return &Catalog{pool: p, clock: c, logger: logger}, nil
}

// Close waits for in-flight calls and closes the database.
func (c *Catalog) Close() error {
	return c.pool.close()
}

// Put stores m under its (uuid, version). It reports whether a new row
// was written: false means the identical definition was already
// stored.
func (c *Catalog) Put(ctx context.Context, m *model.Object) (bool, error) {
	added, err := c.put(ctx, "", []*model.Object{m})
	return added == 1, err
}

// PutCollection stores every model of collection in one transaction,
// tagged with the collection name, and returns how many were new. A
// conflict on any model stores none of them.
func (c *Catalog) PutCollection(ctx context.Context, collection *registry.Collection) (int, error) {
	models := collection.Models()
	added, err := c.put(ctx, collection.Name, models)
	if err != nil {
		return 0, err
	}
	c.logger.Info("collection stored", "collection", collection.Name, "models", len(models), "added", added)
	return added, nil
}

func (c *Catalog) put(ctx context.Context, collection string, models []*model.Object) (int, error) {
	conn, err := c.pool.take(ctx)
	if err != nil {
		return 0, err
	}
	defer c.pool.put(conn)

	added := 0
	err = c.transaction(conn, func() error {
		for _, m := range models {
			written, err := c.insert(conn, collection, m)
			if err != nil {
				return err
			}
			if written {
				added++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// transaction runs body inside an IMMEDIATE transaction, committing
// when body returns nil and rolling back otherwise.
func (c *Catalog) transaction(conn *sqlite.Conn, body func() error) (err error) {
	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("catalog: begin transaction: %w", err)
	}
	defer endTransaction(&err)
	return body()
}

// insert writes m unless the same (uuid, version) is stored. A stored
// row with a different definition is a conflict.
func (c *Catalog) insert(conn *sqlite.Conn, collection string, m *model.Object) (bool, error) {
	definition, err := m.MarshalBinary()
	if err != nil {
		return false, err
	}

	var existing []byte
	found := false
	err = sqlitex.Execute(conn, "SELECT definition FROM models WHERE uuid = ? AND version = ?", &sqlitex.ExecOptions{
		Args: []any{m.UUID(), int(m.Version())},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			existing = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, existing)
			return nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("catalog: looking up %s: %w", m, err)
	}
	if found {
		if !bytes.Equal(existing, definition) {
			return false, fmt.Errorf("%w: catalog already holds a different definition of %s", model.ErrDefinitionConflict, m)
		}
		return false, nil
	}

	err = sqlitex.Execute(conn,
		"INSERT INTO models (uuid, version, name, collection, definition, added_at) VALUES (?, ?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{m.UUID(), int(m.Version()), m.Name(), collection, definition, c.clock.Now().UnixNano()},
		})
	if err != nil {
		return false, fmt.Errorf("catalog: storing %s: %w", m, err)
	}
	c.logger.Debug("model stored", "uuid", m.UUID(), "version", m.Version(), "name", m.Name())
	return true, nil
}

// Model loads one stored version. A missing pair fails with
// model.ErrUnresolvedModel.
func (c *Catalog) Model(ctx context.Context, uuid string, version int16) (*model.Object, error) {
	conn, err := c.pool.take(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.put(conn)

	var definition []byte
	err = sqlitex.Execute(conn, "SELECT definition FROM models WHERE uuid = ? AND version = ?", &sqlitex.ExecOptions{
		Args: []any{uuid, int(version)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			definition = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, definition)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: loading %s v%d: %w", uuid, version, err)
	}
	if definition == nil {
		return nil, fmt.Errorf("%w: catalog has no %q version %d", model.ErrUnresolvedModel, uuid, version)
	}
	return model.UnmarshalObject(definition)
}

// Versions lists the stored versions of uuid in ascending order.
func (c *Catalog) Versions(ctx context.Context, uuid string) ([]int16, error) {
	conn, err := c.pool.take(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.put(conn)

	var versions []int16
	err = sqlitex.Execute(conn, "SELECT version FROM models WHERE uuid = ? ORDER BY version", &sqlitex.ExecOptions{
		Args: []any{uuid},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			versions = append(versions, int16(stmt.ColumnInt(0)))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: listing versions of %s: %w", uuid, err)
	}
	return versions, nil
}

// Entries lists every stored version ordered by uuid, then version.
func (c *Catalog) Entries(ctx context.Context) ([]Entry, error) {
	conn, err := c.pool.take(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.put(conn)

	var entries []Entry
	err = sqlitex.Execute(conn,
		"SELECT uuid, version, name, collection, length(definition), added_at FROM models ORDER BY uuid, version",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entries = append(entries, Entry{
					UUID:       stmt.ColumnText(0),
					Version:    int16(stmt.ColumnInt(1)),
					Name:       stmt.ColumnText(2),
					Collection: stmt.ColumnText(3),
					Size:       stmt.ColumnInt(4),
					AddedAt:    time.Unix(0, stmt.ColumnInt64(5)).UTC(),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("catalog: listing models: %w", err)
	}
	return entries, nil
}

// Registry builds a registry holding every stored version. Versions are
// added in ascending order, so each uuid's latest model is its highest
// stored version.
func (c *Catalog) Registry(ctx context.Context) (*registry.Registry, error) {
	conn, err := c.pool.take(ctx)
	if err != nil {
		return nil, err
	}
	defer c.pool.put(conn)

	result := registry.New()
	err = sqlitex.Execute(conn, "SELECT definition FROM models ORDER BY uuid, version", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			definition := make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, definition)
			m, err := model.UnmarshalObject(definition)
			if err != nil {
				return err
			}
			result.AddModel(m)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: loading registry: %w", err)
	}
	return result, nil
}
