package gojaview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReducer_Reduce(t *testing.T) {
	r, err := NewReducer(`function(keys, values, rereduce) {
		return sum(values);
	}`)
	require.NoError(t, err)

	out, err := r.Reduce([][2]interface{}{
		{"a", "doc1"},
		{"b", "doc2"},
	}, []interface{}{int64(1), int64(2)}, false)
	require.NoError(t, err)
	assert.EqualValues(t, 3, out)
}

func TestReducer_Rereduce(t *testing.T) {
	r, err := NewReducer(`function(keys, values, rereduce) {
		if (rereduce) {
			return sum(values);
		}
		return values.length;
	}`)
	require.NoError(t, err)

	out, err := r.Reduce(nil, []interface{}{int64(3), int64(4)}, true)
	require.NoError(t, err)
	assert.EqualValues(t, 7, out)
}

func TestReducer_RuntimeError(t *testing.T) {
	r, err := NewReducer(`function(keys, values, rereduce) {
		throw new Error("broken reducer");
	}`)
	require.NoError(t, err)

	_, err = r.Reduce(nil, []interface{}{1}, false)
	assert.Error(t, err)
}
