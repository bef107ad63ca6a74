package controller

import (
	"context"
	"testing"

	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/pkg/model"
	"github.com/stretchr/testify/require"
)

func WithTestView(t *testing.T, fn func(ctx context.Context, db *storage.Database, views *View)) {
	ctx := context.Background()

	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)

	views := NewView(s)

	db, err := s.CreateDatabase(ctx, "test")
	require.NoError(t, err)

	fn(ctx, db, views)

	require.NoError(t, views.Close())
	require.NoError(t, s.Close())
}

func putDoc(t *testing.T, ctx context.Context, db *storage.Database, id string, data map[string]interface{}) string {
	t.Helper()
	rev, err := db.PutDocument(ctx, &model.Document{ID: id, Data: data})
	require.NoError(t, err)
	return rev
}

// seedNumbers stores the three documents used by most scenarios.
func seedNumbers(t *testing.T, ctx context.Context, db *storage.Database) {
	putDoc(t, ctx, db, "a", map[string]interface{}{"n": 1})
	putDoc(t, ctx, db, "b", map[string]interface{}{"n": 2})
	putDoc(t, ctx, db, "c", map[string]interface{}{"n": 3})
}

const mapByID = `function(doc) { emit(doc._id, doc.n) }`

func sumView() model.ViewDefinition {
	return model.ViewDefinition{MapFn: mapByID, ReduceFn: "_sum"}
}

func plainView() model.ViewDefinition {
	return model.ViewDefinition{MapFn: mapByID}
}
