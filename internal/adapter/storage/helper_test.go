package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func WithTestStorage(t *testing.T, fn func(ctx context.Context, s *Storage)) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	fn(ctx, s)
	assert.NoError(t, s.Close())
}

func WithTestDatabase(t *testing.T, fn func(ctx context.Context, db *Database)) {
	WithTestStorage(t, func(ctx context.Context, s *Storage) {
		db, err := s.CreateDatabase(ctx, "test")
		require.NoError(t, err)
		fn(ctx, db)
	})
}

func WithTestViewStore(t *testing.T, fn func(ctx context.Context, vs *ViewStore)) {
	WithTestStorage(t, func(ctx context.Context, s *Storage) {
		vs, err := s.OpenViewStore(ctx, "test"+ViewStoreInfix+"0000000")
		require.NoError(t, err)
		fn(ctx, vs)
		assert.NoError(t, vs.Close())
	})
}
