package gojaview

import (
	"context"
	"fmt"
	"log"

	"github.com/dop251/goja"
	"github.com/goydb/mrview/pkg/collate"
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

var _ port.ViewServer = (*ViewServer)(nil)

// ViewServer runs a javascript map function. Emitted rows leave
// the runtime as JSON and are decoded with order preserving
// object handling, so object keys keep the property insertion
// order of the emitting script. The runtime is not goroutine
// safe, callers serialize access through the task queue.
type ViewServer struct {
	vm *goja.Runtime
}

func NewViewServer(fn string) (port.ViewServer, error) {
	vm := goja.New()
	vm.Set("log", func(args ...interface{}) { log.Println(args...) })
	fn = `
	var _result = [];
	var _doc = {};
	var docs = [];
	function emit(key, value) {
		_result.push([key, value, _doc._id]);
	}
	function sum(values) {
		var _sum = 0;
		values.forEach(function (value) {
			_sum += value
		});
		return _sum;
	}
	var docFn = ` + fn + `;`
	_, err := vm.RunString(fn)
	if err != nil {
		return nil, fmt.Errorf("script error %v: %w", fn, err)
	}

	return &ViewServer{
		vm: vm,
	}, nil
}

func (s *ViewServer) Process(ctx context.Context, docs []*model.Document) ([]*model.Record, error) {
	simpleDocs := make([]interface{}, len(docs))
	for i, doc := range docs {
		if doc.Data == nil {
			doc.Data = make(map[string]interface{})
		}
		doc.Data["_id"] = doc.ID
		doc.Data["_rev"] = doc.Rev
		simpleDocs[i] = doc.Data
	}

	s.vm.Set("docs", simpleDocs)

	v, err := s.vm.RunString(`_result = [];
	docs.forEach(function (doc) {
		_doc = doc;
		docFn(doc);
	});
	JSON.stringify(_result);`)
	if err != nil {
		return nil, err
	}

	data, ok := v.Export().(string)
	if !ok {
		return nil, fmt.Errorf("unable to export")
	}
	decoded, err := collate.DecodeOrdered([]byte(data))
	if err != nil {
		return nil, err
	}
	resultData, ok := decoded.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unable to export")
	}

	result := make([]*model.Record, len(resultData))
	for i, rd := range resultData {
		row := rd.([]interface{})
		result[i] = &model.Record{
			Key:   row[0],
			Value: row[1],
			ID:    row[2].(string),
		}
	}

	return result, nil
}
