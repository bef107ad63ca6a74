package storage

import (
	"context"
	"encoding/binary"

	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

var (
	changesBucket             = []byte("_changes")
	changesInvalidationBucket = []byte("_changes:invalidation")
)

// recordChange maintains the change feed index: seq to doc id in
// the changes bucket, doc id to seq in the invalidation bucket.
// The old seq entry of the document is removed, the feed is
// collapsed to the latest change per document.
func (d *Database) recordChange(tx port.EngineWriteTransaction, doc *model.Document) error {
	oldSeq, err := tx.Get(changesInvalidationBucket, []byte(doc.ID))
	if err != nil && err != port.ErrNotFound {
		return err
	}
	if oldSeq != nil {
		err := tx.Delete(changesBucket, oldSeq)
		if err != nil {
			return err
		}
	}

	err = tx.PutWithSequence(changesBucket, nil, []byte(doc.ID), func(_, v []byte, seq uint64) ([]byte, []byte) {
		return uint64ToKey(seq), v
	})
	if err != nil {
		return err
	}
	return tx.PutWithSequence(changesInvalidationBucket, []byte(doc.ID), nil, func(k, _ []byte, seq uint64) ([]byte, []byte) {
		return k, uint64ToKey(seq)
	})
}

func (d *Database) Changes(ctx context.Context, options model.ChangesOptions, fn func(change *model.Change) error) error {
	return d.db.ReadTransaction(ctx, func(tx port.EngineReadTransaction) error {
		cursor := tx.Cursor(changesBucket)

		var count int
		for k, v := cursor.Seek(uint64ToKey(options.Since + 1)); k != nil; k, v = cursor.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if options.Limit > 0 && count >= options.Limit {
				break
			}

			change := &model.Change{
				ID:  string(v),
				Seq: keyToUint64(k),
			}

			doc, err := d.getDocumentTx(tx, change.ID)
			if err != nil {
				return err
			}
			change.Deleted = doc.Deleted
			if options.IncludeDocs {
				change.Doc = doc
			}

			err = fn(change)
			if err != nil {
				return err
			}
			count++
		}

		return nil
	})
}

// uint64ToKey big endian bytes of passed v
func uint64ToKey(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func keyToUint64(k []byte) uint64 {
	return binary.BigEndian.Uint64(k)
}
