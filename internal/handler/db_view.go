package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type Row struct {
	ID    string      `json:"id,omitempty"`
	Key   interface{} `json:"key"`
	Value interface{} `json:"value"`
	Doc   interface{} `json:"doc,omitempty"`
}

type ViewResponse struct {
	TotalRows int   `json:"total_rows"`
	Offset    int   `json:"offset"`
	Rows      []Row `json:"rows"`
}

// ReduceResponse carries neither total_rows nor offset.
type ReduceResponse struct {
	Rows []Row `json:"rows"`
}

func viewRef(r *http.Request) string {
	return mux.Vars(r)["docid"] + "/" + mux.Vars(r)["view"]
}

type DBView struct {
	Base
}

func (s *DBView) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	opts, err := queryOptions(r)
	if err != nil {
		WriteErr(w, err)
		return
	}

	result, err := s.Views.Query(r.Context(), db, viewRef(r), opts)
	if err != nil {
		WriteErr(w, err)
		return
	}

	rows := make([]Row, len(result.Rows))
	for i, row := range result.Rows {
		rows[i] = Row{
			ID:    row.ID,
			Key:   row.Key,
			Value: row.Value,
		}
		if row.Doc != nil {
			rows[i].Doc = row.Doc
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Reduced {
		json.NewEncoder(w).Encode(ReduceResponse{Rows: rows}) // nolint: errcheck
		return
	}
	json.NewEncoder(w).Encode(ViewResponse{ // nolint: errcheck
		TotalRows: result.TotalRows,
		Offset:    result.Offset,
		Rows:      rows,
	})
}

type DBViewDelete struct {
	Base
}

func (s *DBViewDelete) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	err := s.Views.RemoveIndex(r.Context(), db, viewRef(r))
	if err != nil {
		WriteErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true}) // nolint: errcheck
}
