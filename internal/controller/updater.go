package controller

import (
	"context"

	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/pkg/collate"
	"github.com/goydb/mrview/pkg/model"
)

// Update drains every source change with seq > lastSeq and
// applies it to the secondary store. All record, meta and
// sequence writes of one run commit in a single atomic batch, a
// failed run leaves the index at its prior lastSeq and the next
// run replays.
func (ix *Index) Update(ctx context.Context) error {
	var maxSeq uint64

	err := ix.Store.Update(ctx, func(tx *storage.UpdateTx) error {
		opts := model.ChangesOptions{
			Since:       ix.lastSeq,
			IncludeDocs: true,
		}
		err := ix.Source.Changes(ctx, opts, func(change *model.Change) error {
			if change.Seq > maxSeq {
				maxSeq = change.Seq
			}
			return ix.applyChange(ctx, tx, change)
		})
		if err != nil {
			return err
		}

		if maxSeq > ix.lastSeq {
			tx.SetLastSeq(maxSeq)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if maxSeq > ix.lastSeq {
		ix.lastSeq = maxSeq
	}

	return nil
}

// applyChange diffs the previously persisted rows of the document
// against its new map output: vanished composite keys are
// tombstoned, shared keys rewritten, new keys inserted, and the
// meta record pruned to the live key set.
func (ix *Index) applyChange(ctx context.Context, tx *storage.UpdateTx, change *model.Change) error {
	doc := &model.Document{ID: change.ID}
	if change.Doc != nil {
		doc = change.Doc
	}

	if doc.IsReserved() {
		return nil
	}
	if change.Seq <= ix.lastSeq {
		return nil // replay safety
	}

	var emitted []*model.Record
	if !change.Deleted {
		var err error
		emitted, err = ix.Server.Process(ctx, []*model.Document{doc})
		if err != nil {
			return err
		}
	}

	newKeys := make([][]byte, len(emitted))
	newRecs := make([]*model.Record, len(emitted))
	newSet := make(map[string]struct{}, len(emitted))
	for i, row := range emitted {
		key := collate.NormalizeKey(row.Key)
		rec := &model.Record{
			ID:    change.ID,
			Key:   key,
			Value: row.Value,
		}

		if ix.Reducer != nil {
			out, err := ix.Reducer.Reduce(
				[][2]interface{}{{key, change.ID}},
				[]interface{}{row.Value},
				false,
			)
			if err != nil {
				return err
			}
			rec.ReduceOutput = out
		}

		ck := collate.CompositeKey(key, change.ID, row.Value, i)
		newKeys[i] = ck
		newRecs[i] = rec
		newSet[string(ck)] = struct{}{}
	}

	oldKeys, err := tx.Meta(change.ID)
	if err != nil {
		return err
	}

	oldSet := make(map[string]struct{}, len(oldKeys))
	for _, ok := range oldKeys {
		oldSet[string(ok)] = struct{}{}

		if _, keep := newSet[string(ok)]; keep {
			continue
		}
		rec, err := tx.Record(ok)
		if err != nil {
			return err
		}
		if rec == nil || rec.Deleted {
			continue
		}
		err = tx.TombstoneRecord(ok, rec)
		if err != nil {
			return err
		}
		tx.AddRows(-1)
	}

	for i, ck := range newKeys {
		err := tx.PutRecord(ck, newRecs[i])
		if err != nil {
			return err
		}
		if _, existed := oldSet[string(ck)]; !existed {
			tx.AddRows(1)
		}
	}

	if len(newKeys) == 0 && len(oldKeys) == 0 {
		return nil // document never contributed rows
	}
	return tx.PutMeta(change.ID, newKeys)
}
