package controller

import (
	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/pkg/collate"
	"github.com/goydb/mrview/pkg/model"
)

// group is a maximal run of scan rows with collation equal group
// keys, the unit of reduction.
type group struct {
	key     interface{}
	keys    [][2]interface{}
	values  []interface{}
	outputs []interface{}
	partial bool // at least one row without stored reduce output
}

// reduceScan walks the scan in order, groups rows and reduces
// each group. With grouping off all rows form one group under the
// null key.
func (ix *Index) reduceScan(iter *storage.RecordIterator, opts *model.QueryOptions) ([]model.Row, error) {
	rows := []model.Row{}
	var current *group

	flush := func() error {
		if current == nil {
			return nil
		}
		value, err := ix.reduceGroup(current)
		if err != nil {
			return err
		}
		rows = append(rows, model.Row{Key: current.key, Value: value})
		current = nil
		return nil
	}

	for rec := iter.First(); iter.Continue(); rec = iter.Next() {
		key := groupKey(rec.Key, opts)

		if current != nil && (!opts.Grouped() || collate.Collate(current.key, key) == 0) {
			current.append(rec)
			continue
		}

		err := flush()
		if err != nil {
			return nil, err
		}
		current = &group{key: key}
		current.append(rec)
	}

	err := flush()
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (g *group) append(rec *model.Record) {
	g.keys = append(g.keys, [2]interface{}{rec.Key, rec.ID})
	g.values = append(g.values, rec.Value)
	if rec.ReduceOutput == nil {
		g.partial = true
	} else {
		g.outputs = append(g.outputs, rec.ReduceOutput)
	}
}

// reduceGroup picks the cheapest correct path: a single stored
// output is returned as is, complete stored outputs rereduce,
// anything else reduces over the raw keys and values.
func (ix *Index) reduceGroup(g *group) (interface{}, error) {
	if !g.partial && len(g.outputs) == 1 {
		return g.outputs[0], nil
	}
	if !g.partial {
		return ix.Reducer.Reduce(nil, g.outputs, true)
	}
	return ix.Reducer.Reduce(g.keys, g.values, false)
}

// groupKey computes the key a row groups under: null when not
// grouping, the array prefix for numeric group levels, the full
// key otherwise.
func groupKey(key interface{}, opts *model.QueryOptions) interface{} {
	if !opts.Grouped() {
		return nil
	}
	if opts.Group {
		return key
	}
	arr, ok := key.([]interface{})
	if !ok || len(arr) <= opts.GroupLevel {
		return key
	}
	return arr[:opts.GroupLevel]
}
