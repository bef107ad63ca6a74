package port

import (
	"context"
	"errors"

	"github.com/goydb/mrview/pkg/model"
)

var ErrNotFound = errors.New("resource not found")
var ErrConflict = errors.New("rev doesn't match for update")

// DatabaseEngine is an ordered key/value store with bucket
// namespaces. Both the source database and every view index
// store run on top of this interface. A transaction is atomic:
// either every mutation of a WriteTransaction commits or none.
type DatabaseEngine interface {
	ReadTransaction(ctx context.Context, fn func(tx EngineReadTransaction) error) error
	WriteTransaction(ctx context.Context, fn func(tx EngineWriteTransaction) error) error
	Close() error
}

// KeyWithSeq should return the final key and value based on the
// given key, value and the bucket sequence
type KeyWithSeq func(key, value []byte, seq uint64) (newKey, newValue []byte)

type EngineWriteTransaction interface {
	EnsureBucket(bucket []byte) error
	DeleteBucket(bucket []byte) error
	Put(bucket, k, v []byte) error
	// PutWithSequence draws the next sequence of the bucket and
	// calls fn with the passed key and value plus the sequence to
	// produce the final pair
	PutWithSequence(bucket, k, v []byte, fn KeyWithSeq) error
	Delete(bucket, k []byte) error
	EngineReadTransaction
}

type EngineReadTransaction interface {
	BucketStats(bucket []byte) *model.IndexStats
	Sequence(bucket []byte) uint64
	Cursor(bucket []byte) EngineCursor
	Get(bucket, key []byte) ([]byte, error)
}

type EngineCursor interface {
	First() (key []byte, value []byte)
	Last() (key []byte, value []byte)
	Next() (key []byte, value []byte)
	Prev() (key []byte, value []byte)
	Seek(seek []byte) (key []byte, value []byte)
}
