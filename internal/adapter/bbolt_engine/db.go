// Package bbolt_engine backs the engine port with one bbolt file
// per database or view index. Writers are serialized by the task
// queue, so transactions run directly against a single bbolt
// update transaction; its commit is the atomic batch the view
// updater relies on.
package bbolt_engine

import (
	"context"

	"github.com/goydb/mrview/pkg/port"
	"go.etcd.io/bbolt"
)

var _ port.DatabaseEngine = (*DB)(nil)

type DB struct {
	db *bbolt.DB
}

func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0666, nil)
	if err != nil {
		return nil, err
	}
	return &DB{
		db: db,
	}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// Path returns the file system path of the database file.
func (db *DB) Path() string {
	return db.db.Path()
}

func (db *DB) ReadTransaction(ctx context.Context, fn func(tx port.EngineReadTransaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.db.View(func(btx *bbolt.Tx) error {
		return fn(&transaction{tx: btx})
	})
}

func (db *DB) WriteTransaction(ctx context.Context, fn func(tx port.EngineWriteTransaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.db.Update(func(btx *bbolt.Tx) error {
		return fn(&transaction{tx: btx})
	})
}
