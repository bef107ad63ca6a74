package gojaview

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
	"github.com/goydb/mrview/pkg/collate"
	"github.com/goydb/mrview/pkg/port"
)

var _ port.Reducer = (*Reducer)(nil)

// Reducer runs a javascript reduce function with the CouchDB
// (keys, values, rereduce) convention. Inputs and the result
// cross the runtime as JSON, keeping object member order intact
// in both directions. A javascript exception surfaces as a real
// error, never through the value channel.
type Reducer struct {
	vm *goja.Runtime
}

func NewReducer(source string) (port.Reducer, error) {
	vm := goja.New()
	fn := `
	var _keys_json = "";
	var _values_json = "";
	var rereduce = false;
	function sum(values) {
		var _sum = 0;
		values.forEach(function (value) {
			_sum += value
		});
		return _sum;
	}`
	_, err := vm.RunString(fn)
	if err != nil {
		return nil, fmt.Errorf("script error %v: %w", fn, err)
	}
	_, err = vm.RunScript("reducer.js", "var reduceFn = "+source+";")
	if err != nil {
		return nil, fmt.Errorf("script error %v: %w", source, err)
	}

	return &Reducer{
		vm: vm,
	}, nil
}

func (r *Reducer) Reduce(keys [][2]interface{}, values []interface{}, rereduce bool) (interface{}, error) {
	jsKeys := make([]interface{}, len(keys))
	for i, k := range keys {
		jsKeys[i] = []interface{}{k[0], k[1]}
	}

	keysJSON, err := json.Marshal(jsKeys)
	if err != nil {
		return nil, err
	}
	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}

	r.vm.Set("_keys_json", string(keysJSON))
	r.vm.Set("_values_json", string(valuesJSON))
	r.vm.Set("rereduce", rereduce)

	v, err := r.vm.RunString(`JSON.stringify(reduceFn(
		rereduce ? null : JSON.parse(_keys_json),
		JSON.parse(_values_json),
		rereduce));`)
	if err != nil {
		return nil, fmt.Errorf("reduce error: %w", err)
	}

	data, ok := v.Export().(string)
	if !ok {
		return nil, nil // reducer returned undefined
	}
	return collate.DecodeOrdered([]byte(data))
}
