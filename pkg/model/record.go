package model

// Record is a single persisted key/value record of a view index.
// Its store key is the composite indexable key, so iterating the
// records bucket yields rows in collation order over
// (key, doc id, value, emit index).
type Record struct {
	ID           string      `bson:"id"`
	Key          interface{} `bson:"key"`
	Value        interface{} `bson:"value,omitempty"`
	ReduceOutput interface{} `bson:"reduce_output,omitempty"`
	Deleted      bool        `bson:"deleted,omitempty"`
}

// Row is a single materialized result row of a view query.
type Row struct {
	ID    string                 `json:"id,omitempty"`
	Key   interface{}            `json:"key"`
	Value interface{}            `json:"value"`
	Doc   map[string]interface{} `json:"doc,omitempty"`
}

// ViewResult is the result page of a view query.
// TotalRows and Offset are only meaningful when Reduced is false.
type ViewResult struct {
	TotalRows int   `json:"total_rows"`
	Offset    int   `json:"offset"`
	Reduced   bool  `json:"-"`
	Rows      []Row `json:"rows"`
}
