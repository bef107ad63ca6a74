package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/internal/controller"
)

func Router(s *storage.Storage, views *controller.View) http.Handler {
	b := Base{
		Storage: s,
		Views:   views,
	}

	r := mux.NewRouter()

	r.Methods("GET").Path("/_all_dbs").Handler(&DBAll{Base: b})

	r.Methods("GET", "POST").Path("/{db}/_design/{docid}/_view/{view}").Handler(&DBView{Base: b})
	r.Methods("DELETE").Path("/{db}/_design/{docid}/_view/{view}").Handler(&DBViewDelete{Base: b})
	r.Methods("GET").Path("/{db}/_design/{docid}").Handler(&DBDocGet{Base: b, Design: true})
	r.Methods("PUT").Path("/{db}/_design/{docid}").Handler(&DBDocPut{Base: b, Design: true})
	r.Methods("DELETE").Path("/{db}/_design/{docid}").Handler(&DBDocDelete{Base: b, Design: true})

	r.Methods("GET").Path("/{db}/{docid}").Handler(&DBDocGet{Base: b})
	r.Methods("PUT").Path("/{db}/{docid}").Handler(&DBDocPut{Base: b})
	r.Methods("DELETE").Path("/{db}/{docid}").Handler(&DBDocDelete{Base: b})

	r.Methods("GET").Path("/{db}").Handler(&DBInfo{Base: b})
	r.Methods("PUT").Path("/{db}").Handler(&DBCreate{Base: b})
	r.Methods("DELETE").Path("/{db}").Handler(&DBDelete{Base: b})

	return r
}
