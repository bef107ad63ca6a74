package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type DBAll struct {
	Base
}

func (s *DBAll) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	names, err := s.Storage.Databases(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(names) // nolint: errcheck
}

type DBCreate struct {
	Base
}

func (s *DBCreate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	dbName := mux.Vars(r)["db"]
	db, _ := s.Storage.Database(r.Context(), dbName)
	if db != nil {
		WriteError(w, http.StatusPreconditionFailed, "Database already exists.")
		return
	}

	_, err := s.Storage.CreateDatabase(r.Context(), dbName)
	if err != nil {
		WriteErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]bool{"ok": true}) // nolint: errcheck
}

type DBDelete struct {
	Base
}

func (s *DBDelete) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	err := s.Storage.DeleteDatabase(r.Context(), mux.Vars(r)["db"])
	if err != nil {
		WriteError(w, http.StatusNotFound, "Database does not exist.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true}) // nolint: errcheck
}

type DBInfo struct {
	Base
}

func (s *DBInfo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	db := Database{Base: s.Base}.Do(w, r)
	if db == nil {
		return
	}

	info, err := db.Info(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info) // nolint: errcheck
}
