package storage

import (
	"bytes"

	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

// RecordIterator walks the records bucket of a view store in key
// order between StartKey and EndKey (both inclusive byte bounds).
// Descending reverses the walk. Tombstoned records are skipped,
// Skip and Limit count live records only.
//
//	for rec := iter.First(); iter.Continue(); rec = iter.Next() { ... }
type RecordIterator struct {
	Skip       int64
	Limit      int64
	StartKey   []byte
	EndKey     []byte
	Descending bool

	key    []byte
	cursor port.EngineCursor
}

func (i *RecordIterator) First() *model.Record {
	var v []byte
	if i.Descending {
		if i.EndKey != nil {
			i.key, v = i.cursor.Seek(i.EndKey)
			if i.key == nil {
				i.key, v = i.cursor.Last()
			} else if bytes.Compare(i.key, i.EndKey) > 0 {
				i.key, v = i.cursor.Prev()
			}
		} else {
			i.key, v = i.cursor.Last()
		}
	} else {
		if i.StartKey != nil {
			i.key, v = i.cursor.Seek(i.StartKey)
		} else {
			i.key, v = i.cursor.First()
		}
	}

	return i.advance(v)
}

func (i *RecordIterator) Next() *model.Record {
	var v []byte
	i.key, v = i.step()
	rec := i.advance(v)
	if rec != nil && i.Limit != -1 {
		i.Limit--
	}
	return rec
}

// advance returns the live record at the current position,
// stepping over tombstones and the skip window.
func (i *RecordIterator) advance(v []byte) *model.Record {
	for i.inRange() {
		rec, err := decodeRecord(v)
		if err != nil || rec.Deleted {
			i.key, v = i.step()
			continue
		}

		if i.Skip > 0 {
			i.Skip--
			i.key, v = i.step()
			continue
		}

		return rec
	}

	i.key = nil
	return nil
}

func (i *RecordIterator) step() (key []byte, value []byte) {
	if i.Descending {
		return i.cursor.Prev()
	}
	return i.cursor.Next()
}

func (i *RecordIterator) inRange() bool {
	if i.key == nil {
		return false
	}

	if i.Descending {
		return i.StartKey == nil || bytes.Compare(i.key, i.StartKey) >= 0
	}
	return i.EndKey == nil || bytes.Compare(i.key, i.EndKey) <= 0
}

func (i *RecordIterator) Continue() bool {
	if i.key == nil { // past the last record
		return false
	}

	if i.Limit == 0 { // limit exhausted
		return false
	}

	return true
}
