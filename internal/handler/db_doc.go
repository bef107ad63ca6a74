package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/goydb/mrview/pkg/model"
)

func docID(r *http.Request, design bool) string {
	id := mux.Vars(r)["docid"]
	if design {
		return model.DesignDocPrefix + id
	}
	return id
}

type DBDocPut struct {
	Base
	Design bool
}

func (s *DBDocPut) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	var data map[string]interface{}
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := docID(r, s.Design)
	rev, _ := data["_rev"].(string)
	deleted, _ := data["_deleted"].(bool)
	delete(data, "_id")
	delete(data, "_rev")
	delete(data, "_deleted")

	newRev, err := db.PutDocument(r.Context(), &model.Document{
		ID:      id,
		Rev:     rev,
		Deleted: deleted,
		Data:    data,
	})
	if err != nil {
		WriteErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{ // nolint: errcheck
		"ok":  true,
		"id":  id,
		"rev": newRev,
	})
}

type DBDocGet struct {
	Base
	Design bool
}

func (s *DBDocGet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	doc, err := db.GetDocument(r.Context(), docID(r, s.Design))
	if err != nil {
		WriteErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc.Data) // nolint: errcheck
}

type DBDocDelete struct {
	Base
	Design bool
}

func (s *DBDocDelete) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	rev := r.URL.Query().Get("rev")
	doc, err := db.DeleteDocument(r.Context(), docID(r, s.Design), rev)
	if err != nil {
		WriteErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{ // nolint: errcheck
		"ok":  true,
		"id":  doc.ID,
		"rev": doc.Rev,
	})
}
