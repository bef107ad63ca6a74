package controller

import (
	"context"
	"fmt"
	"log"

	"github.com/goydb/mrview/internal/adapter/storage"
	"github.com/goydb/mrview/pkg/model"
	"github.com/goydb/mrview/pkg/port"
)

// View glues the index registry and the serializer queue into the
// public query surface. A view is addressed either inline with a
// ViewDefinition (temporary view) or as "designDoc/viewName"
// (persisted view, resolved through the source database).
type View struct {
	Registry *Registry
	Queue    *Queue
}

func NewView(s *storage.Storage) *View {
	return &View{
		Registry: NewRegistry(s),
		Queue:    NewQueue(),
	}
}

// Resolve turns a view spec into its definition. Missing design
// documents or views are not_found, nothing is created.
func (c *View) Resolve(ctx context.Context, source port.SourceDatabase, view interface{}) (*model.ViewDefinition, error) {
	switch v := view.(type) {
	case model.ViewDefinition:
		return &v, nil
	case *model.ViewDefinition:
		return v, nil
	case string:
		ref, err := model.ParseViewRef(v)
		if err != nil {
			return nil, model.NotFoundError("%v", err)
		}

		doc, err := source.GetDocument(ctx, ref.DesignDocID)
		if err == port.ErrNotFound {
			return nil, model.NotFoundError("missing design document %q", ref.DesignDocID)
		}
		if err != nil {
			return nil, err
		}

		def := doc.ViewFunction(ref.ViewName)
		if def == nil {
			return nil, model.NotFoundError("missing named view %q", ref.ViewName)
		}
		return def, nil
	}

	return nil, fmt.Errorf("invalid view spec %T", view)
}

// Query resolves the index and executes update and query as one
// serialized task, so the result observes every source change
// that existed at submission. stale=ok skips the update,
// stale=update_after serves the stale result and enqueues the
// update behind it.
func (c *View) Query(ctx context.Context, source port.SourceDatabase, view interface{}, opts *model.QueryOptions) (*model.ViewResult, error) {
	if opts == nil {
		opts = model.NewQueryOptions()
	}

	def, err := c.Resolve(ctx, source, view)
	if err != nil {
		return nil, err
	}

	ix, err := c.Registry.Open(ctx, source, *def)
	if err != nil {
		return nil, err
	}

	stale := opts.Stale == model.StaleOK || opts.Stale == model.StaleUpdateAfter

	var result *model.ViewResult
	task := model.NewTask(model.ActionQueryIndex, func() error {
		if !stale {
			err := ix.Update(ctx)
			if err != nil {
				return err
			}
		}
		var err error
		result, err = ix.Query(ctx, opts)
		return err
	})
	task.IndexName = ix.Name

	err = c.Queue.Submit(task).Wait()
	if err != nil {
		return nil, err
	}

	if opts.Stale == model.StaleUpdateAfter {
		update := model.NewTask(model.ActionUpdateIndex, func() error {
			return ix.Update(context.Background())
		})
		update.IndexName = ix.Name
		c.Queue.Submit(update)
		go func() {
			if err := update.Wait(); err != nil {
				log.Printf("stale update of %s failed: %v", ix.Name, err)
			}
		}()
	}

	return result, nil
}

// RemoveIndex destroys the persisted index of the view, the task
// cannot interleave with an in-flight update.
func (c *View) RemoveIndex(ctx context.Context, source port.SourceDatabase, view interface{}) error {
	def, err := c.Resolve(ctx, source, view)
	if err != nil {
		return err
	}

	task := model.NewTask(model.ActionDestroyIndex, func() error {
		return c.Registry.Remove(ctx, source, *def)
	})

	return c.Queue.Submit(task).Wait()
}

// Close drains the queue and closes all index handles.
func (c *View) Close() error {
	c.Queue.Close()
	return c.Registry.Close()
}
