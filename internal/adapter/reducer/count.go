package reducer

import (
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

var _ port.Reducer = (*Count)(nil)

// Count is the builtin _count reducer, the number of emitted
// rows per group. Rereduce sums the partial counts.
type Count struct{}

func (r *Count) Reduce(keys [][2]interface{}, values []interface{}, rereduce bool) (interface{}, error) {
	if !rereduce {
		return float64(len(values)), nil
	}

	var total float64
	for _, value := range values {
		f, ok := toFloat(value)
		if !ok {
			return nil, model.InvalidValueError("_count rereduce requires numbers, got %v", value)
		}
		total += f
	}
	return total, nil
}
