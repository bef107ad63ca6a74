package tengoview

import (
	"context"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

var _ port.ViewServer = (*ViewServer)(nil)

// ViewServer runs a tengo map function, selected by the design
// document language "tengo".
type ViewServer struct {
	script   *tengo.Script
	compiled *tengo.Compiled
}

func NewViewServer(fn string) (port.ViewServer, error) {
	fn = `text := import("text")
	math := import("math")
	times := import("times")
	fmt := import("fmt")
	json := import("json")
	enum := import("enum")
	hex := import("hex")
	base64 := import("base64")

	_result := []
	_doc := {}
	emit := func (key, value) {
		_result = _result + [[ key, value, _doc._id ]]
	}
	docFn := ` + fn + `
	for doc in docs {
		_doc = doc
		docFn(doc)
	}`
	script := tengo.NewScript([]byte(fn))
	script.SetImports(stdlib.GetModuleMap(
		"text",   // regular expressions, string conversion, and manipulation
		"math",   // mathematical constants and functions
		"times",  // time-related functions
		"fmt",    // formatting functions
		"json",   // JSON functions
		"enum",   // Enumeration functions
		"hex",    // hex encoding and decoding functions
		"base64", // base64 encoding and decoding functions
	))

	script.Add("docs", []interface{}{})

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script error %v: %w", fn, err)
	}

	return &ViewServer{
		script:   script,
		compiled: compiled,
	}, nil
}

func (s *ViewServer) Process(ctx context.Context, docs []*model.Document) ([]*model.Record, error) {
	err := s.setDocs(docs)
	if err != nil {
		return nil, err
	}

	err = s.compiled.RunContext(ctx)
	if err != nil {
		return nil, err
	}

	resultData := s.compiled.Get("_result").Array()
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

func (s *ViewServer) setDocs(docs []*model.Document) error {
	simpleDocs := make([]interface{}, len(docs))
	for i, doc := range docs {
		if doc.Data == nil {
			doc.Data = make(map[string]interface{})
		}
		doc.Data["_id"] = doc.ID
		doc.Data["_rev"] = doc.Rev
		simpleDocs[i] = doc.Data
	}

	return s.compiled.Set("docs", simpleDocs)
}
