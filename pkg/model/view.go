package model

import (
	"fmt"
	"strings"

	"gopkg.in/mgo.v2/bson"
)

// ViewDefinition is a map function with an optional reduce.
// ReduceFn may be a builtin name (_sum, _count, _stats) or
// evaluator source. Two definitions are equivalent iff their
// source strings are byte equal.
type ViewDefinition struct {
	MapFn    string `json:"map" mapstructure:"map"`
	ReduceFn string `json:"reduce,omitempty" mapstructure:"reduce"`
	Language string `json:"language,omitempty" mapstructure:"language"`
}

// Signature is the canonical source representation the index
// name hash is computed over.
func (v ViewDefinition) Signature() string {
	return v.MapFn + v.ReduceFn
}

func (v ViewDefinition) HasReduce() bool {
	return v.ReduceFn != ""
}

// ViewRef references a view of a design document, the
// "designDoc/viewName" form of the query API.
type ViewRef struct {
	DesignDocID string
	ViewName    string
}

func ParseViewRef(str string) (*ViewRef, error) {
	parts := strings.SplitN(strings.TrimPrefix(str, DesignDocPrefix), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid view reference %q, expected ddoc/view", str)
	}

	return &ViewRef{
		DesignDocID: DesignDocPrefix + parts[0],
		ViewName:    parts[1],
	}, nil
}

func (r ViewRef) String() string {
	return strings.TrimPrefix(r.DesignDocID, DesignDocPrefix) + "/" + r.ViewName
}

// ViewFunction extracts the named view from a design document.
func (doc Document) ViewFunction(name string) *ViewDefinition {
	views, ok := asMap(doc.Data["views"])
	if !ok {
		return nil
	}

	view, ok := asMap(views[name])
	if !ok {
		return nil
	}

	mapFn, _ := view["map"].(string)
	reduceFn, _ := view["reduce"].(string)

	return &ViewDefinition{
		MapFn:    mapFn,
		ReduceFn: reduceFn,
		Language: doc.Language(),
	}
}

// asMap unwraps generic objects, the storage codec decodes
// nested objects as bson.M.
func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case bson.M:
		return m, true
	}
	return nil, false
}
