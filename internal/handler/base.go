package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/internal/controller"
)

type Base struct {
	Storage *storage.Storage
	Views   *controller.View
}

// Database resolves the {db} route variable, writing the error
// response on failure.
type Database struct {
	Base
}

func (d Database) Do(w http.ResponseWriter, r *http.Request) *storage.Database {
	dbName := mux.Vars(r)["db"]
	db, err := d.Storage.Database(r.Context(), dbName)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Database does not exist.")
		return nil
	}
	return db
}
