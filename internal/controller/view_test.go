package controller

import (
	"context"
	"testing"

	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Simple sum: all rows reduce into a single null keyed group.
func TestQuerySum(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		result, err := views.Query(ctx, db, sumView(), nil)
		require.NoError(t, err)

		assert.True(t, result.Reduced)
		require.Len(t, result.Rows, 1)
		assert.Nil(t, result.Rows[0].Key)
		assert.EqualValues(t, 6, result.Rows[0].Value)
	})
}

// Range query over emitted keys, inclusive bounds.
func TestQueryRange(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		opts := model.NewQueryOptions()
		opts.StartKey, opts.HasStartKey = "a", true
		opts.EndKey, opts.HasEndKey = "b", true

		result, err := views.Query(ctx, db, plainView(), opts)
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 0, result.Offset)
		require.Len(t, result.Rows, 2)
		assert.Equal(t, "a", result.Rows[0].ID)
		assert.Equal(t, "a", result.Rows[0].Key)
		assert.EqualValues(t, 1, result.Rows[0].Value)
		assert.Equal(t, "b", result.Rows[1].ID)
		assert.EqualValues(t, 2, result.Rows[1].Value)
	})
}

func TestQueryDescendingWithLimit(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		opts := model.NewQueryOptions()
		opts.Descending = true
		opts.Limit = 2

		result, err := views.Query(ctx, db, plainView(), opts)
		require.NoError(t, err)

		require.Len(t, result.Rows, 2)
		assert.Equal(t, "c", result.Rows[0].ID)
		assert.EqualValues(t, 3, result.Rows[0].Value)
		assert.Equal(t, "b", result.Rows[1].ID)
		assert.EqualValues(t, 2, result.Rows[1].Value)
	})
}

// Repeated keys repeat their rows, unknown keys contribute
// nothing, total_rows still counts every emitted row.
func TestQueryKeysWithDuplicate(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		opts := model.NewQueryOptions()
		opts.Keys = []interface{}{"a", "a", "z"}

		result, err := views.Query(ctx, db, plainView(), opts)
		require.NoError(t, err)

		assert.Equal(t, 3, result.TotalRows)
		require.Len(t, result.Rows, 2)
		assert.Equal(t, "a", result.Rows[0].ID)
		assert.Equal(t, "a", result.Rows[1].ID)
	})
}

// Deleting a document tombstones its rows and the next reduce
// no longer sees them.
func TestQueryAfterDelete(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		result, err := views.Query(ctx, db, sumView(), nil)
		require.NoError(t, err)
		assert.EqualValues(t, 6, result.Rows[0].Value)

		doc, err := db.GetDocument(ctx, "b")
		require.NoError(t, err)
		_, err = db.DeleteDocument(ctx, "b", doc.Rev)
		require.NoError(t, err)

		result, err = views.Query(ctx, db, sumView(), nil)
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.EqualValues(t, 4, result.Rows[0].Value)

		// the record is tombstoned, the meta record lists no
		// live keys for the deleted doc
		ix, err := views.Registry.Open(ctx, db, sumView())
		require.NoError(t, err)
		err = ix.Store.Update(ctx, func(tx *storage.UpdateTx) error {
			keys, err := tx.Meta("b")
			require.NoError(t, err)
			assert.Empty(t, keys)
			return nil
		})
		require.NoError(t, err)

		err = ix.Store.View(ctx, func(tx *storage.SnapshotTx) error {
			assert.Equal(t, 2, tx.TotalRows())
			return nil
		})
		require.NoError(t, err)
	})
}

// Grouped stats over a shared key.
func TestQueryGroupedStats(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		putDoc(t, ctx, db, "x", map[string]interface{}{"t": "a", "v": 1})
		putDoc(t, ctx, db, "y", map[string]interface{}{"t": "a", "v": 3})
		putDoc(t, ctx, db, "z", map[string]interface{}{"t": "b", "v": 5})

		def := model.ViewDefinition{
			MapFn:    `function(doc) { emit(doc.t, doc.v) }`,
			ReduceFn: "_stats",
		}
		opts := model.NewQueryOptions()
		opts.Group = true

		result, err := views.Query(ctx, db, def, opts)
		require.NoError(t, err)

		require.Len(t, result.Rows, 2)
		assert.Equal(t, "a", result.Rows[0].Key)
		assert.Equal(t, map[string]interface{}{
			"sum": float64(4), "min": float64(1), "max": float64(3),
			"count": float64(2), "sumsqr": float64(10),
		}, normalizeStats(t, result.Rows[0].Value))
		assert.Equal(t, "b", result.Rows[1].Key)
		assert.Equal(t, map[string]interface{}{
			"sum": float64(5), "min": float64(5), "max": float64(5),
			"count": float64(1), "sumsqr": float64(25),
		}, normalizeStats(t, result.Rows[1].Value))
	})
}

func normalizeStats(t *testing.T, value interface{}) map[string]interface{} {
	t.Helper()
	m, ok := asObject(value)
	require.True(t, ok, "stats value must be an object, got %T", value)
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
