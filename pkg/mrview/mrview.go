// Package mrview is an incremental map/reduce view engine with
// CouchDB compatible query semantics on top of bbolt backed
// document databases.
package mrview

import (
	"context"
	"net/http"

	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/internal/controller"
	"github.com/goydb/mrview/internal/handler"
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

// Engine owns the storage directory, the index registry and the
// serializer queue.
type Engine struct {
	storage *storage.Storage
	views   *controller.View

	// Handler serves the HTTP surface of the engine.
	Handler http.Handler
}

// Open loads all databases below dataDir.
func Open(dataDir string) (*Engine, error) {
	s, err := storage.Open(dataDir)
	if err != nil {
		return nil, err
	}

	views := controller.NewView(s)

	return &Engine{
		storage: s,
		views:   views,
		Handler: handler.Router(s, views),
	}, nil
}

func (e *Engine) CreateDatabase(ctx context.Context, name string) (port.SourceDatabase, error) {
	return e.storage.CreateDatabase(ctx, name)
}

func (e *Engine) Database(ctx context.Context, name string) (port.SourceDatabase, error) {
	return e.storage.Database(ctx, name)
}

// Query answers a view query. view is either a
// model.ViewDefinition for a temporary view or a
// "designDoc/viewName" string resolved through the source.
func (e *Engine) Query(ctx context.Context, source port.SourceDatabase, view interface{}, opts *model.QueryOptions) (*model.ViewResult, error) {
	return e.views.Query(ctx, source, view, opts)
}

// RemoveIndex destroys the persisted index of the view.
func (e *Engine) RemoveIndex(ctx context.Context, source port.SourceDatabase, view interface{}) error {
	return e.views.RemoveIndex(ctx, source, view)
}

func (e *Engine) Close() error {
	err := e.views.Close()
	if err != nil {
		return err
	}
	return e.storage.Close()
}
