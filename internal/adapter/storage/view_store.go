package storage

import (
	"context"
	"encoding/json"
	"os"
	"path"

	"github.com/fxamacker/cbor/v2"
	"github.com/goydb/mrview/internal/adapter/bbolt_engine"
	"github.com/goydb/mrview/pkg/collate"
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
	"gopkg.in/mgo.v2/bson"
)

// ViewStoreInfix marks index files below the storage directory.
const ViewStoreInfix = "-mrview-"

var (
	recordsBucket = []byte("records")
	metaBucket    = []byte("_meta")
	localBucket   = []byte("_local")
)

var (
	lastSeqKey   = []byte("lastSeq")
	totalRowsKey = []byte("total_rows")
)

// seqRecord is the persisted last indexed sequence.
type seqRecord struct {
	Seq uint64 `cbor:"seq"`
}

// storedRecord is the bson envelope of a persisted record. Key,
// value and reduce output are kept as JSON so object member
// order survives the round trip (DecodeOrdered restores it).
type storedRecord struct {
	ID           string `bson:"id"`
	Key          []byte `bson:"key,omitempty"`
	Value        []byte `bson:"value,omitempty"`
	ReduceOutput []byte `bson:"reduce_output,omitempty"`
	Deleted      bool   `bson:"deleted,omitempty"`
}

func encodeRecord(rec *model.Record) ([]byte, error) {
	sr := storedRecord{
		ID:      rec.ID,
		Deleted: rec.Deleted,
	}

	var err error
	sr.Key, err = json.Marshal(rec.Key)
	if err != nil {
		return nil, err
	}
	sr.Value, err = json.Marshal(rec.Value)
	if err != nil {
		return nil, err
	}
	if rec.ReduceOutput != nil {
		sr.ReduceOutput, err = json.Marshal(rec.ReduceOutput)
		if err != nil {
			return nil, err
		}
	}

	return bson.Marshal(sr)
}

func decodeRecord(data []byte) (*model.Record, error) {
	var sr storedRecord
	err := bson.Unmarshal(data, &sr)
	if err != nil {
		return nil, err
	}

	rec := &model.Record{
		ID:      sr.ID,
		Deleted: sr.Deleted,
	}
	rec.Key, err = collate.DecodeOrdered(sr.Key)
	if err != nil {
		return nil, err
	}
	rec.Value, err = collate.DecodeOrdered(sr.Value)
	if err != nil {
		return nil, err
	}
	if len(sr.ReduceOutput) > 0 {
		rec.ReduceOutput, err = collate.DecodeOrdered(sr.ReduceOutput)
		if err != nil {
			return nil, err
		}
	}

	return rec, nil
}

// ViewStore is the secondary store of one view index, exclusively
// owned by the engine for the lifetime of the index.
//
// Layout:
//
//	records: composite indexable key -> record, tombstones kept
//	_meta:   source doc id -> cbor list of live composite keys
//	_local:  lastSeq and the live record counter
type ViewStore struct {
	name string
	path string
	db   port.DatabaseEngine
}

// OpenViewStore opens or creates the secondary store with the
// given index name, using the same engine adapter as the source
// databases.
func (s *Storage) OpenViewStore(ctx context.Context, name string) (*ViewStore, error) {
	p := path.Join(s.path, name)

	db, err := bbolt_engine.Open(p)
	if err != nil {
		return nil, err
	}

	vs := &ViewStore{
		name: name,
		path: p,
		db:   db,
	}

	err = db.WriteTransaction(ctx, func(tx port.EngineWriteTransaction) error {
		for _, bucket := range [][]byte{recordsBucket, metaBucket, localBucket} {
			err := tx.EnsureBucket(bucket)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return vs, nil
}

// DeleteViewStore closes the store and removes its file.
func (s *Storage) DeleteViewStore(vs *ViewStore) error {
	err := vs.Close()
	if err != nil {
		return err
	}
	return os.Remove(vs.path)
}

func (vs *ViewStore) Name() string {
	return vs.name
}

func (vs *ViewStore) Path() string {
	return vs.path
}

func (vs *ViewStore) Close() error {
	return vs.db.Close()
}

// LastSeq reads the persisted last indexed sequence, 0 if the
// index was never updated.
func (vs *ViewStore) LastSeq(ctx context.Context) (uint64, error) {
	var seq uint64
	err := vs.db.ReadTransaction(ctx, func(tx port.EngineReadTransaction) error {
		seq = readLastSeq(tx)
		return nil
	})
	return seq, err
}

func readLastSeq(tx port.EngineReadTransaction) uint64 {
	data, err := tx.Get(localBucket, lastSeqKey)
	if err != nil {
		return 0
	}
	var rec seqRecord
	if cbor.Unmarshal(data, &rec) != nil {
		return 0
	}
	return rec.Seq
}

func readTotalRows(tx port.EngineReadTransaction) int {
	data, err := tx.Get(localBucket, totalRowsKey)
	if err != nil {
		return 0
	}
	var total int
	if cbor.Unmarshal(data, &total) != nil {
		return 0
	}
	return total
}

// Update runs fn inside a single engine write transaction, all
// record, meta and sequence changes of one update run commit
// atomically or not at all.
func (vs *ViewStore) Update(ctx context.Context, fn func(tx *UpdateTx) error) error {
	return vs.db.WriteTransaction(ctx, func(etx port.EngineWriteTransaction) error {
		utx := &UpdateTx{tx: etx}
		err := fn(utx)
		if err != nil {
			return err
		}
		return utx.flush()
	})
}

// View runs fn against a read snapshot of the store.
func (vs *ViewStore) View(ctx context.Context, fn func(tx *SnapshotTx) error) error {
	return vs.db.ReadTransaction(ctx, func(etx port.EngineReadTransaction) error {
		return fn(&SnapshotTx{tx: etx})
	})
}

// UpdateTx is the write side of one update run. The live row
// counter and lastSeq land in the same transaction on flush.
type UpdateTx struct {
	tx port.EngineWriteTransaction

	rowDelta int
	lastSeq  *uint64
}

// Meta returns the live composite keys attributed to the source
// document, nil if the document was never indexed.
func (t *UpdateTx) Meta(docID string) ([][]byte, error) {
	data, err := t.tx.Get(metaBucket, []byte(docID))
	if err == port.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var keys [][]byte
	err = cbor.Unmarshal(data, &keys)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Record returns the persisted record under the composite key,
// nil if absent.
func (t *UpdateTx) Record(key []byte) (*model.Record, error) {
	data, err := t.tx.Get(recordsBucket, key)
	if err == port.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return decodeRecord(data)
}

func (t *UpdateTx) PutRecord(key []byte, rec *model.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return t.tx.Put(recordsBucket, key, data)
}

// TombstoneRecord rewrites the record as deleted. Scans skip
// tombstones, a later emit of the same composite key overwrites
// them again.
func (t *UpdateTx) TombstoneRecord(key []byte, rec *model.Record) error {
	rec.Deleted = true
	return t.PutRecord(key, rec)
}

func (t *UpdateTx) PutMeta(docID string, keys [][]byte) error {
	data, err := cbor.Marshal(keys)
	if err != nil {
		return err
	}
	return t.tx.Put(metaBucket, []byte(docID), data)
}

func (t *UpdateTx) SetLastSeq(seq uint64) {
	t.lastSeq = &seq
}

func (t *UpdateTx) AddRows(delta int) {
	t.rowDelta += delta
}

func (t *UpdateTx) flush() error {
	if t.lastSeq != nil {
		data, err := cbor.Marshal(seqRecord{Seq: *t.lastSeq})
		if err != nil {
			return err
		}
		err = t.tx.Put(localBucket, lastSeqKey, data)
		if err != nil {
			return err
		}
	}

	if t.rowDelta != 0 {
		total := readTotalRows(t.tx) + t.rowDelta
		data, err := cbor.Marshal(total)
		if err != nil {
			return err
		}
		err = t.tx.Put(localBucket, totalRowsKey, data)
		if err != nil {
			return err
		}
	}

	return nil
}

// SnapshotTx is the read side of one query execution. All scans
// of one query share the snapshot.
type SnapshotTx struct {
	tx port.EngineReadTransaction
}

func (t *SnapshotTx) LastSeq() uint64 {
	return readLastSeq(t.tx)
}

func (t *SnapshotTx) TotalRows() int {
	return readTotalRows(t.tx)
}

func (t *SnapshotTx) Iterator() *RecordIterator {
	return &RecordIterator{
		Limit:  -1,
		cursor: t.tx.Cursor(recordsBucket),
	}
}
