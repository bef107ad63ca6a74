package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeQueryOptions(t *testing.T) {
	opts, err := DecodeQueryOptions(map[string]interface{}{
		"startkey":   "a",
		"endkey":     "b",
		"descending": "true",
		"limit":      "10",
		"skip":       float64(2),
		"group":      true,
		"stale":      "ok",
	})
	require.NoError(t, err)

	assert.Equal(t, "a", opts.StartKey)
	assert.True(t, opts.HasStartKey)
	assert.Equal(t, "b", opts.EndKey)
	assert.True(t, opts.HasEndKey)
	assert.False(t, opts.HasKey)
	assert.True(t, opts.Descending)
	assert.EqualValues(t, 10, opts.Limit)
	assert.EqualValues(t, 2, opts.Skip)
	assert.True(t, opts.Group)
	assert.Equal(t, StaleOK, opts.Stale)
	assert.True(t, opts.InclusiveEnd)
	assert.Nil(t, opts.Reduce)
}

func TestDecodeQueryOptionsDefaults(t *testing.T) {
	opts, err := DecodeQueryOptions(map[string]interface{}{})
	require.NoError(t, err)

	assert.EqualValues(t, -1, opts.Limit)
	assert.EqualValues(t, 0, opts.Skip)
	assert.True(t, opts.InclusiveEnd)
	assert.False(t, opts.Grouped())
}

func TestDecodeQueryOptionsNullKey(t *testing.T) {
	opts, err := DecodeQueryOptions(map[string]interface{}{
		"key": nil,
	})
	require.NoError(t, err)

	assert.True(t, opts.HasKey)
	assert.Nil(t, opts.Key)
}

func TestEffectiveReduce(t *testing.T) {
	opts := NewQueryOptions()
	assert.False(t, opts.EffectiveReduce(false))
	assert.True(t, opts.EffectiveReduce(true))

	off := false
	opts.Reduce = &off
	assert.False(t, opts.EffectiveReduce(true))
}

func TestParseViewRef(t *testing.T) {
	ref, err := ParseViewRef("blog/by_date")
	require.NoError(t, err)
	assert.Equal(t, "_design/blog", ref.DesignDocID)
	assert.Equal(t, "by_date", ref.ViewName)
	assert.Equal(t, "blog/by_date", ref.String())

	ref, err = ParseViewRef("_design/blog/by_date")
	require.NoError(t, err)
	assert.Equal(t, "_design/blog", ref.DesignDocID)

	_, err = ParseViewRef("invalid")
	assert.Error(t, err)
}
