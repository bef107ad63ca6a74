package bbolt_engine

import (
	"fmt"

	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
	"go.etcd.io/bbolt"
)

var _ port.EngineWriteTransaction = (*transaction)(nil)

// transaction serves both transaction ports over one bbolt
// transaction. The write methods are only handed out by
// WriteTransaction, where the underlying transaction is writable.
type transaction struct {
	tx *bbolt.Tx
}

func (t *transaction) BucketStats(bucket []byte) *model.IndexStats {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return &model.IndexStats{}
	}
	s := b.Stats()

	return &model.IndexStats{
		Keys:      uint64(s.KeyN),
		Documents: uint64(s.KeyN),
		Used:      uint64(s.BranchInuse + s.LeafInuse),
		Allocated: uint64(s.BranchAlloc + s.LeafAlloc),
	}
}

func (t *transaction) Sequence(bucket []byte) uint64 {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return 0
	}
	return b.Sequence()
}

func (t *transaction) Get(bucket, key []byte) ([]byte, error) {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return nil, port.ErrNotFound
	}
	value := b.Get(key)
	if value == nil {
		return nil, port.ErrNotFound
	}
	return value, nil
}

func (t *transaction) Cursor(bucket []byte) port.EngineCursor {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return emptyCursor{}
	}
	return b.Cursor()
}

func (t *transaction) EnsureBucket(bucket []byte) error {
	_, err := t.tx.CreateBucketIfNotExists(bucket)
	return err
}

func (t *transaction) DeleteBucket(bucket []byte) error {
	if t.tx.Bucket(bucket) == nil {
		return nil
	}
	return t.tx.DeleteBucket(bucket)
}

func (t *transaction) Put(bucket, k, v []byte) error {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return fmt.Errorf("failed to put %q to bucket %q: no bucket", string(k), string(bucket))
	}
	return b.Put(k, v)
}

func (t *transaction) PutWithSequence(bucket, k, v []byte, fn port.KeyWithSeq) error {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return fmt.Errorf("failed to put %q to bucket %q: no bucket", string(k), string(bucket))
	}
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	key, value := fn(k, v, seq)
	return b.Put(key, value)
}

func (t *transaction) Delete(bucket, k []byte) error {
	b := t.tx.Bucket(bucket)
	if b == nil {
		return nil
	}
	return b.Delete(k)
}

// emptyCursor stands in for cursors over missing buckets.
type emptyCursor struct{}

func (emptyCursor) First() (key []byte, value []byte) { return nil, nil }
func (emptyCursor) Last() (key []byte, value []byte)  { return nil, nil }
func (emptyCursor) Next() (key []byte, value []byte)  { return nil, nil }
func (emptyCursor) Prev() (key []byte, value []byte)  { return nil, nil }
func (emptyCursor) Seek(seek []byte) (key []byte, value []byte) {
	return nil, nil
}
