package reducer

import (
	"encoding/json"

	"github.com/goydb/mrview/pkg/collate"
	"gopkg.in/mgo.v2/bson"
)

// toFloat converts any numeric value the evaluators or the bson
// codec may hand over. ok is false for non numeric input.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// asMap unwraps object values: stored reduce outputs decode as
// collate.Object, documents come out of bson as bson.M.
func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case collate.Object:
		return v.Map(), true
	case map[string]interface{}:
		return v, true
	case bson.M:
		return v, true
	}
	return nil, false
}

func asSlice(value interface{}) ([]interface{}, bool) {
	v, ok := value.([]interface{})
	return v, ok
}
