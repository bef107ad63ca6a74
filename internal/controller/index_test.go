package controller

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexName(t *testing.T) {
	def := model.ViewDefinition{MapFn: "function(doc) {}", ReduceFn: "_sum"}

	name := IndexName("mydb", def)
	assert.Regexp(t, `^mydb-mrview-[0-9a-f]{7}$`, name)

	// byte equal definitions share the index, any change gets
	// its own store
	assert.Equal(t, name, IndexName("mydb", def))
	other := model.ViewDefinition{MapFn: "function(doc) {}", ReduceFn: "_count"}
	assert.NotEqual(t, name, IndexName("mydb", other))
}

func TestIndexLastSeqAdvances(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		ix, err := views.Registry.Open(ctx, db, plainView())
		require.NoError(t, err)

		require.NoError(t, ix.Update(ctx))

		info, err := db.Info(ctx)
		require.NoError(t, err)

		seq, err := ix.Store.LastSeq(ctx)
		require.NoError(t, err)
		assert.Equal(t, info.UpdateSeq, seq)

		// no changes, another update is a no-op
		require.NoError(t, ix.Update(ctx))
		seq2, err := ix.Store.LastSeq(ctx)
		require.NoError(t, err)
		assert.Equal(t, seq, seq2)
	})
}

// A failing map function aborts the update without advancing
// lastSeq, the next query retries.
func TestUpdateFailureKeepsLastSeq(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		putDoc(t, ctx, db, "a", map[string]interface{}{"n": 1})

		def := model.ViewDefinition{
			MapFn: `function(doc) { doc.missing.nested }`,
		}

		_, err := views.Query(ctx, db, def, nil)
		require.Error(t, err)

		ix, err := views.Registry.Open(ctx, db, def)
		require.NoError(t, err)
		seq, err := ix.Store.LastSeq(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, seq)
	})
}

func TestRemoveIndex(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		_, err := views.Query(ctx, db, plainView(), nil)
		require.NoError(t, err)

		ix, err := views.Registry.Open(ctx, db, plainView())
		require.NoError(t, err)
		storePath := ix.Store.Path()
		_, err = os.Stat(storePath)
		require.NoError(t, err)

		require.NoError(t, views.RemoveIndex(ctx, db, plainView()))

		_, err = os.Stat(storePath)
		assert.True(t, os.IsNotExist(err))

		// the next query rebuilds the index from scratch
		result, err := views.Query(ctx, db, plainView(), nil)
		require.NoError(t, err)
		assert.Len(t, result.Rows, 3)
	})
}

func TestResolvePersistedView(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)
		putDoc(t, ctx, db, "_design/numbers", map[string]interface{}{
			"views": map[string]interface{}{
				"by_id": map[string]interface{}{
					"map":    mapByID,
					"reduce": "_sum",
				},
			},
		})

		result, err := views.Query(ctx, db, "numbers/by_id", nil)
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.EqualValues(t, 6, result.Rows[0].Value)

		t.Run("missing design doc", func(t *testing.T) {
			_, err := views.Query(ctx, db, "nope/view", nil)
			var me *model.Error
			require.ErrorAs(t, err, &me)
			assert.Equal(t, "not_found", me.Name)
			assert.Equal(t, 404, me.Status)
		})

		t.Run("missing named view", func(t *testing.T) {
			_, err := views.Query(ctx, db, "numbers/unknown", nil)
			var me *model.Error
			require.ErrorAs(t, err, &me)
			assert.Equal(t, "not_found", me.Name)
		})
	})
}

func TestCustomReduceFunction(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		def := model.ViewDefinition{
			MapFn: mapByID,
			ReduceFn: `function(keys, values, rereduce) {
				return sum(values);
			}`,
		}

		result, err := views.Query(ctx, db, def, nil)
		require.NoError(t, err)
		require.Len(t, result.Rows, 1)
		assert.EqualValues(t, 6, result.Rows[0].Value)
	})
}

func TestTengoView(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		def := model.ViewDefinition{
			MapFn:    `func(doc) { emit(doc._id, doc.n) }`,
			Language: "tengo",
		}

		result, err := views.Query(ctx, db, def, nil)
		require.NoError(t, err)
		require.Len(t, result.Rows, 3)
		assert.Equal(t, "a", result.Rows[0].ID)
		assert.EqualValues(t, 1, result.Rows[0].Value)
	})
}

func TestStale(t *testing.T) {
	WithTestView(t, func(ctx context.Context, db *storage.Database, views *View) {
		seedNumbers(t, ctx, db)

		t.Run("ok skips the update", func(t *testing.T) {
			opts := model.NewQueryOptions()
			opts.Stale = model.StaleOK

			result, err := views.Query(ctx, db, plainView(), opts)
			require.NoError(t, err)
			assert.Empty(t, result.Rows)
		})

		t.Run("update_after serves stale then updates", func(t *testing.T) {
			opts := model.NewQueryOptions()
			opts.Stale = model.StaleUpdateAfter

			result, err := views.Query(ctx, db, plainView(), opts)
			require.NoError(t, err)
			assert.Empty(t, result.Rows)

			// the follow-up update task is queued behind us, a
			// second stale read observes its outcome
			opts = model.NewQueryOptions()
			opts.Stale = model.StaleOK
			result, err = views.Query(ctx, db, plainView(), opts)
			require.NoError(t, err)
			assert.Len(t, result.Rows, 3)
		})
	})
}

// Tasks execute in submission order, one at a time.
func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	var mu sync.Mutex
	var order []int

	tasks := make([]*model.Task, 10)
	for i := 0; i < 10; i++ {
		i := i
		tasks[i] = model.NewTask(model.ActionUpdateIndex, func() error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
		q.Submit(tasks[i])
	}

	for _, task := range tasks {
		require.NoError(t, task.Wait())
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestQueueSurfacesTaskError(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	task := model.NewTask(model.ActionQueryIndex, func() error {
		return assert.AnError
	})

	err := q.Submit(task).Wait()
	assert.ErrorIs(t, err, assert.AnError)
}
