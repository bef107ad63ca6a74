package reducer

import (
	"math"

	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

var _ port.Reducer = (*Stats)(nil)

// Stats is the builtin _stats reducer:
// {sum, min, max, count, sumsqr} over numeric values.
// Rereduce combines partial stats objects pointwise.
type Stats struct{}

func (r *Stats) Reduce(keys [][2]interface{}, values []interface{}, rereduce bool) (interface{}, error) {
	sum := float64(0)
	min := math.Inf(1)
	max := math.Inf(-1)
	count := float64(0)
	sumsqr := float64(0)

	for _, value := range values {
		if rereduce {
			part, ok := asMap(value)
			if !ok {
				return nil, model.InvalidValueError("_stats rereduce requires stats objects, got %v", value)
			}
			psum, ok1 := toFloat(part["sum"])
			pmin, ok2 := toFloat(part["min"])
			pmax, ok3 := toFloat(part["max"])
			pcount, ok4 := toFloat(part["count"])
			psumsqr, ok5 := toFloat(part["sumsqr"])
			if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
				return nil, model.InvalidValueError("_stats rereduce requires stats objects, got %v", value)
			}
			sum += psum
			min = math.Min(min, pmin)
			max = math.Max(max, pmax)
			count += pcount
			sumsqr += psumsqr
			continue
		}

		f, ok := toFloat(value)
		if !ok {
			return nil, model.InvalidValueError("_stats requires numbers, got %v", value)
		}
		sum += f
		min = math.Min(min, f)
		max = math.Max(max, f)
		count++
		sumsqr += f * f
	}

	return map[string]interface{}{
		"sum":    sum,
		"min":    min,
		"max":    max,
		"count":  count,
		"sumsqr": sumsqr,
	}, nil
}
