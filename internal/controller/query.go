package controller

import (
	"context"

	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/pkg/collate"
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
	"gopkg.in/mgo.v2/bson"
)

// asObject unwraps object values: the record codec decodes
// objects as collate.Object, documents come out of bson as
// bson.M.
func asObject(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case collate.Object:
		return v.Map(), true
	case map[string]interface{}:
		return v, true
	case bson.M:
		return v, true
	}
	return nil, false
}

// Query plans and executes a view query against the current
// state of the secondary store. The caller is responsible for
// running the updater first unless the query is stale.
func (ix *Index) Query(ctx context.Context, opts *model.QueryOptions) (*model.ViewResult, error) {
	if opts == nil {
		opts = model.NewQueryOptions()
	}

	err := validateOptions(opts, ix.HasReducer())
	if err != nil {
		return nil, err
	}
	reducing := opts.EffectiveReduce(ix.HasReducer())

	result := &model.ViewResult{
		Reduced: reducing,
		Rows:    []model.Row{},
	}

	err = ix.Store.View(ctx, func(tx *storage.SnapshotTx) error {
		if opts.Keys != nil {
			return ix.executeKeys(tx, opts, reducing, result)
		}
		return ix.executeRange(tx, opts, reducing, result)
	})
	if err != nil {
		return nil, err
	}

	if opts.IncludeDocs {
		err = ix.joinDocs(ctx, result)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// validateOptions rejects invalid option combinations before any
// scan I/O happens.
func validateOptions(opts *model.QueryOptions, hasReducer bool) error {
	reducing := opts.EffectiveReduce(hasReducer)

	if opts.HasKey && (opts.HasStartKey || opts.HasEndKey) {
		return model.QueryParseError("`key` is incompatible with `startkey` and `endkey`")
	}

	if opts.HasStartKey && opts.HasEndKey {
		start, end := opts.StartKey, opts.EndKey
		if opts.Descending {
			start, end = end, start
		}
		if collate.Collate(start, end) > 0 {
			return model.QueryParseError("no rows can match your key range, " +
				"reverse your start_key and end_key or set descending=true")
		}
	}

	if reducing && opts.IncludeDocs {
		return model.QueryParseError("`include_docs` is invalid within a reduce view")
	}

	if opts.Grouped() && !hasReducer {
		return model.QueryParseError("group requires a reduce function")
	}

	if reducing && opts.Keys != nil && !opts.Grouped() {
		return model.QueryParseError("multi-key fetches for reduce views must use `group=true`")
	}

	return nil
}

// scanBounds translates the logical key options into byte bounds
// over the composite key space. A logical lower bound encodes as
// [k], which collates before any [k, docID, ...], a logical upper
// bound as [k, {}, {}, {}], which collates after. Exclusive
// bounds use the opposite encoding.
func scanBounds(opts *model.QueryOptions) (start, end []byte) {
	lowKey, hasLow := opts.StartKey, opts.HasStartKey
	highKey, hasHigh := opts.EndKey, opts.HasEndKey
	lowInclusive, highInclusive := true, opts.InclusiveEnd
	if opts.Descending {
		lowKey, highKey = highKey, lowKey
		hasLow, hasHigh = hasHigh, hasLow
		lowInclusive, highInclusive = opts.InclusiveEnd, true
	}
	if opts.HasKey {
		lowKey, highKey = opts.Key, opts.Key
		hasLow, hasHigh = true, true
		lowInclusive, highInclusive = true, true
	}

	if hasLow {
		if lowInclusive {
			start = collate.LowerBound(lowKey)
		} else {
			start = collate.UpperBound(lowKey)
		}
	}
	if hasHigh {
		if highInclusive {
			end = collate.UpperBound(highKey)
		} else {
			end = collate.LowerBound(highKey)
		}
	}

	return start, end
}

func (ix *Index) executeRange(tx *storage.SnapshotTx, opts *model.QueryOptions, reducing bool, result *model.ViewResult) error {
	iter := tx.Iterator()
	iter.StartKey, iter.EndKey = scanBounds(opts)
	iter.Descending = opts.Descending

	if !reducing {
		iter.Skip = opts.Skip
		iter.Limit = opts.Limit

		for rec := iter.First(); iter.Continue(); rec = iter.Next() {
			result.Rows = append(result.Rows, model.Row{
				ID:    rec.ID,
				Key:   rec.Key,
				Value: rec.Value,
			})
		}

		result.TotalRows = tx.TotalRows()
		result.Offset = int(opts.Skip)
		return nil
	}

	rows, err := ix.reduceScan(iter, opts)
	if err != nil {
		return err
	}
	result.Rows = paginate(rows, opts)
	return nil
}

// executeKeys runs one scan per requested key, in user order.
// Repeated keys repeat their rows, unknown keys contribute
// nothing. Pagination applies over the merged rows.
func (ix *Index) executeKeys(tx *storage.SnapshotTx, opts *model.QueryOptions, reducing bool, result *model.ViewResult) error {
	var rows []model.Row

	for _, key := range opts.Keys {
		iter := tx.Iterator()
		iter.StartKey = collate.LowerBound(key)
		iter.EndKey = collate.UpperBound(key)

		if !reducing {
			for rec := iter.First(); iter.Continue(); rec = iter.Next() {
				rows = append(rows, model.Row{
					ID:    rec.ID,
					Key:   rec.Key,
					Value: rec.Value,
				})
			}
			continue
		}

		grouped, err := ix.reduceScan(iter, opts)
		if err != nil {
			return err
		}
		rows = append(rows, grouped...)
	}

	result.Rows = paginate(rows, opts)
	if !reducing {
		result.TotalRows = tx.TotalRows()
		result.Offset = int(opts.Skip)
	}
	return nil
}

// paginate applies skip and limit over the final rows, used on
// every path that cannot push them into the scan.
func paginate(rows []model.Row, opts *model.QueryOptions) []model.Row {
	skip := int(opts.Skip)
	if skip > len(rows) {
		skip = len(rows)
	}
	rows = rows[skip:]
	if opts.Limit >= 0 && int(opts.Limit) < len(rows) {
		rows = rows[:opts.Limit]
	}
	if rows == nil {
		rows = []model.Row{}
	}
	return rows
}

// joinDocs attaches the source document to each row. An emitted
// object value with an _id field joins on that id, everything
// else joins on the emitting document. Missing documents leave
// the row without doc.
func (ix *Index) joinDocs(ctx context.Context, result *model.ViewResult) error {
	for i, row := range result.Rows {
		docID := row.ID
		if vm, ok := asObject(row.Value); ok {
			if id, ok := vm["_id"].(string); ok {
				docID = id
			}
		}

		doc, err := ix.Source.GetDocument(ctx, docID)
		if err == port.ErrNotFound {
			continue
		}
		if err != nil {
			return err
		}
		result.Rows[i].Doc = doc.Data
	}

	return nil
}
