// Package collate implements CouchDB compatible collation of JSON
// values and the matching order preserving byte encoding used as
// view index keys.
//
// See: http://wiki.apache.org/couchdb/View_collation#Collation_Specification
package collate

import (
	"encoding/json"
	"math"
	"reflect"
	"sort"
	"strings"
)

type token int

const (
	kNull token = iota
	kFalse
	kTrue
	kNumber
	kString
	kArray
	kObject
)

// Collate compares two JSON values with CouchDB collation:
// null < false < true < number < string < array < object.
// Numbers compare numerically, strings by code point, arrays
// element wise then by length, objects pair by pair in member
// order then by pair count. Inputs are normalized first, so
// NaN and the infinities compare as null.
func Collate(key1, key2 interface{}) int {
	key1 = NormalizeKey(key1)
	key2 = NormalizeKey(key2)

	type1 := collationType(key1)
	type2 := collationType(key2)
	if type1 != type2 {
		return compareInts(int(type1), int(type2))
	}

	switch type1 {
	case kNull, kFalse, kTrue:
		return 0
	case kNumber:
		return compareFloats(key1.(float64), key2.(float64))
	case kString:
		return strings.Compare(key1.(string), key2.(string))
	case kArray:
		array1 := key1.([]interface{})
		array2 := key2.([]interface{})
		for i, item1 := range array1 {
			if i >= len(array2) {
				return 1
			}
			if cmp := Collate(item1, array2[i]); cmp != 0 {
				return cmp
			}
		}
		return compareInts(len(array1), len(array2))
	case kObject:
		return compareObjects(key1.(Object), key2.(Object))
	}
	panic("bogus collation type")
}

// Object members compare in their stored order, which is the
// insertion order of the emitting map, never a sorted one.
func compareObjects(obj1, obj2 Object) int {
	for i, m1 := range obj1 {
		if i >= len(obj2) {
			return 1
		}
		if cmp := strings.Compare(m1.Key, obj2[i].Key); cmp != 0 {
			return cmp
		}
		if cmp := Collate(m1.Value, obj2[i].Value); cmp != 0 {
			return cmp
		}
	}
	return compareInts(len(obj1), len(obj2))
}

// NormalizeKey canonicalizes a JSON value for collation and
// encoding: every numeric type becomes float64, NaN and the
// infinities become null, negative zero becomes zero, objects
// become Object. A plain Go map carries no member order, so it
// falls back to ascending key order; order preserving callers
// hand over Object (see DecodeOrdered). The function is
// idempotent.
func NormalizeKey(value interface{}) interface{} {
	switch v := value.(type) {
	case nil, bool, string:
		return v
	case float64:
		return normalizeNumber(v)
	case float32:
		return normalizeNumber(float64(v))
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return normalizeNumber(f)
	case Object:
		norm := make(Object, len(v))
		for i, member := range v {
			norm[i] = Member{Key: member.Key, Value: NormalizeKey(member.Value)}
		}
		return norm
	case []interface{}:
		norm := make([]interface{}, len(v))
		for i, item := range v {
			norm[i] = NormalizeKey(item)
		}
		return norm
	case map[string]interface{}:
		return objectFromMap(v)
	}

	// evaluators may hand over typed slices or maps
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		norm := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			norm[i] = NormalizeKey(rv.Index(i).Interface())
		}
		return norm
	case reflect.Map:
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, ok := iter.Key().Interface().(string)
			if !ok {
				continue
			}
			m[k] = iter.Value().Interface()
		}
		return objectFromMap(m)
	}

	return nil
}

// objectFromMap is the deterministic fallback for maps without
// member order.
func objectFromMap(m map[string]interface{}) Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := make(Object, len(keys))
	for i, k := range keys {
		obj[i] = Member{Key: k, Value: NormalizeKey(m[k])}
	}
	return obj
}

func normalizeNumber(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f == 0 {
		return float64(0) // -0 becomes 0
	}
	return f
}

func collationType(value interface{}) token {
	switch v := value.(type) {
	case nil:
		return kNull
	case bool:
		if !v {
			return kFalse
		}
		return kTrue
	case float64:
		return kNumber
	case string:
		return kString
	case []interface{}:
		return kArray
	case Object:
		return kObject
	}
	panic("collation type of non normalized value")
}

func compareInts(n1, n2 int) int {
	if n1 < n2 {
		return -1
	} else if n1 > n2 {
		return 1
	}
	return 0
}

func compareFloats(n1, n2 float64) int {
	if n1 < n2 {
		return -1
	} else if n1 > n2 {
		return 1
	}
	return 0
}
