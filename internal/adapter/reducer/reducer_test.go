package reducer

import (
	"testing"

	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keysFor(values []interface{}) [][2]interface{} {
	keys := make([][2]interface{}, len(values))
	for i := range values {
		keys[i] = [2]interface{}{"k", "doc"}
	}
	return keys
}

func TestSum(t *testing.T) {
	r := &Sum{}

	out, err := r.Reduce(keysFor([]interface{}{1, 2, 3}), []interface{}{1, 2, 3}, false)
	require.NoError(t, err)
	assert.Equal(t, float64(6), out)

	out, err = r.Reduce(nil, []interface{}{float64(3), int64(3)}, true)
	require.NoError(t, err)
	assert.Equal(t, float64(6), out)
}

func TestSumVectors(t *testing.T) {
	r := &Sum{}

	out, err := r.Reduce(nil, []interface{}{
		[]interface{}{1, 2},
		[]interface{}{3, 4, 5},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{float64(4), float64(6), float64(5)}, out)
}

func TestSumInvalidValue(t *testing.T) {
	r := &Sum{}

	_, err := r.Reduce(nil, []interface{}{"nope"}, false)
	require.Error(t, err)

	var me *model.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "invalid_value", me.Name)
	assert.Equal(t, 500, me.Status)
}

func TestCount(t *testing.T) {
	r := &Count{}

	out, err := r.Reduce(keysFor([]interface{}{"x", "y", "z"}), []interface{}{"x", "y", "z"}, false)
	require.NoError(t, err)
	assert.Equal(t, float64(3), out)

	// rereduce sums partial counts
	out, err = r.Reduce(nil, []interface{}{float64(3), float64(2)}, true)
	require.NoError(t, err)
	assert.Equal(t, float64(5), out)
}

func TestStats(t *testing.T) {
	r := &Stats{}

	out, err := r.Reduce(keysFor([]interface{}{1, 3}), []interface{}{1, 3}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"sum":    float64(4),
		"min":    float64(1),
		"max":    float64(3),
		"count":  float64(2),
		"sumsqr": float64(10),
	}, out)
}

func TestStatsInvalidValue(t *testing.T) {
	r := &Stats{}

	_, err := r.Reduce(nil, []interface{}{"nope"}, false)
	var me *model.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "invalid_value", me.Name)

	_, err = r.Reduce(nil, []interface{}{"nope"}, true)
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "invalid_value", me.Name)
}

// For any partition of the values, rereduce over the partial
// reductions equals the direct reduction.
func TestReduceRereduceCommute(t *testing.T) {
	values := []interface{}{1, 2, 3, 4, 5}

	reducers := map[string]port.Reducer{
		"_sum":   &Sum{},
		"_count": &Count{},
		"_stats": &Stats{},
	}

	for name, r := range reducers {
		t.Run(name, func(t *testing.T) {
			direct, err := r.Reduce(keysFor(values), values, false)
			require.NoError(t, err)

			for split := 1; split < len(values); split++ {
				left, err := r.Reduce(keysFor(values[:split]), values[:split], false)
				require.NoError(t, err)
				right, err := r.Reduce(keysFor(values[split:]), values[split:], false)
				require.NoError(t, err)

				combined, err := r.Reduce(nil, []interface{}{left, right}, true)
				require.NoError(t, err)
				assert.Equal(t, direct, combined, "split at %d", split)
			}
		})
	}
}

func TestBuiltin(t *testing.T) {
	for _, name := range []string{"_sum", "_count", "_stats"} {
		r, ok := Builtin(name)
		assert.True(t, ok, name)
		assert.NotNil(t, r, name)
	}

	_, ok := Builtin("function(keys, values) { return 1; }")
	assert.False(t, ok)
}
