package reducer

import (
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

var _ port.Reducer = (*Sum)(nil)

// Sum is the builtin _sum reducer. Values must be numbers or
// arrays of numbers, arrays sum component wise. Reduce and
// rereduce share the same shape, so both paths run identically.
type Sum struct{}

func (r *Sum) Reduce(keys [][2]interface{}, values []interface{}, rereduce bool) (interface{}, error) {
	var total float64
	var vector []float64
	haveVector := false

	for _, value := range values {
		if f, ok := toFloat(value); ok {
			total += f
			continue
		}

		items, ok := asSlice(value)
		if !ok {
			return nil, model.InvalidValueError("_sum requires numbers or arrays of numbers, got %v", value)
		}
		haveVector = true
		for i, item := range items {
			f, ok := toFloat(item)
			if !ok {
				return nil, model.InvalidValueError("_sum requires numbers or arrays of numbers, got %v", item)
			}
			for len(vector) <= i {
				vector = append(vector, 0)
			}
			vector[i] += f
		}
	}

	if haveVector {
		// a scalar mixed between arrays is added to the first component
		if total != 0 {
			if len(vector) == 0 {
				vector = append(vector, 0)
			}
			vector[0] += total
		}
		out := make([]interface{}, len(vector))
		for i, f := range vector {
			out[i] = f
		}
		return out, nil
	}

	return total, nil
}
