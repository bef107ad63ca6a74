package controller

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/goydb/mrview/internal/adapter/reducer"
	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/internal/adapter/view/gojaview"
	"github.com/goydb/mrview/internal/adapter/view/tengoview"
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

// Index is the process local handle of one view index: the
// secondary store, the compiled map function, the optional
// reducer and the cached last indexed sequence.
type Index struct {
	Name    string
	Source  port.SourceDatabase
	Store   *storage.ViewStore
	Def     model.ViewDefinition
	Server  port.ViewServer
	Reducer port.Reducer

	lastSeq uint64
}

func (ix *Index) String() string {
	return fmt.Sprintf("<Index name=%q lastSeq=%d>", ix.Name, ix.lastSeq)
}

func (ix *Index) HasReducer() bool {
	return ix.Reducer != nil
}

// Registry resolves (source, map, reduce) to an index handle.
// Handles are cached per index name and destroyed only by Remove.
type Registry struct {
	storage        *storage.Storage
	viewEngines    port.ViewEngines
	reducerEngines port.ReducerEngines

	mu      sync.Mutex
	indices map[string]*Index
}

func NewRegistry(s *storage.Storage) *Registry {
	return &Registry{
		storage: s,
		viewEngines: port.ViewEngines{
			"":           gojaview.NewViewServer,
			"javascript": gojaview.NewViewServer,
			"tengo":      tengoview.NewViewServer,
		},
		reducerEngines: port.ReducerEngines{
			"":           gojaview.NewReducer,
			"javascript": gojaview.NewReducer,
		},
		indices: make(map[string]*Index),
	}
}

// IndexName derives the persistent index name from the source
// database name and a 28 bit hash over the map and reduce source.
// Byte equal definitions share an index, everything else gets its
// own store.
func IndexName(dbName string, def model.ViewDefinition) string {
	sum := md5.Sum([]byte(def.Signature()))
	return dbName + storage.ViewStoreInfix + hex.EncodeToString(sum[:])[:7]
}

// Open resolves the handle, creating the secondary store and
// compiling the view functions on first use.
func (r *Registry) Open(ctx context.Context, source port.SourceDatabase, def model.ViewDefinition) (*Index, error) {
	info, err := source.Info(ctx)
	if err != nil {
		return nil, err
	}
	name := IndexName(info.DBName, def)

	r.mu.Lock()
	defer r.mu.Unlock()

	if ix, ok := r.indices[name]; ok {
		return ix, nil
	}

	builder, ok := r.viewEngines[def.Language]
	if !ok {
		return nil, fmt.Errorf("language %q unknown", def.Language)
	}
	server, err := builder(def.MapFn)
	if err != nil {
		return nil, err
	}

	var red port.Reducer
	if def.HasReduce() {
		red, ok = reducer.Builtin(def.ReduceFn)
		if !ok {
			rb, okLang := r.reducerEngines[def.Language]
			if !okLang {
				return nil, fmt.Errorf("language %q has no reducer support", def.Language)
			}
			red, err = rb(def.ReduceFn)
			if err != nil {
				return nil, err
			}
		}
	}

	store, err := r.storage.OpenViewStore(ctx, name)
	if err != nil {
		return nil, err
	}

	lastSeq, err := store.LastSeq(ctx)
	if err != nil {
		store.Close() // nolint: errcheck
		return nil, err
	}

	ix := &Index{
		Name:    name,
		Source:  source,
		Store:   store,
		Def:     def,
		Server:  server,
		Reducer: red,
		lastSeq: lastSeq,
	}
	r.indices[name] = ix

	return ix, nil
}

// Remove destroys the index: the handle is dropped and the
// secondary store file deleted.
func (r *Registry) Remove(ctx context.Context, source port.SourceDatabase, def model.ViewDefinition) error {
	ix, err := r.Open(ctx, source, def)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.storage.DeleteViewStore(ix.Store)
	if err != nil {
		return err
	}
	delete(r.indices, ix.Name)

	return nil
}

// Close closes all cached handles.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, ix := range r.indices {
		err := ix.Store.Close()
		if err != nil {
			return fmt.Errorf("failed to close index %q: %w", name, err)
		}
		delete(r.indices, name)
	}

	return nil
}
