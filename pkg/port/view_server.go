package port

import (
	"context"

	"github.com/goydb/mrview/pkg/model"
)

// ViewServer evaluates a compiled map function. Process runs the
// function once per document and returns the emitted rows in emit
// order, each tagged with the emitting document's id.
type ViewServer interface {
	Process(ctx context.Context, docs []*model.Document) ([]*model.Record, error)
}

// ViewServerBuilder compiles map function source into a server.
type ViewServerBuilder func(fn string) (ViewServer, error)

// ViewEngines maps a design document language to its builder.
type ViewEngines map[string]ViewServerBuilder
