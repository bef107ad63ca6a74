package port

import (
	"context"

	"github.com/goydb/mrview/pkg/model"
)

// DatabaseInfo describes a source database.
type DatabaseInfo struct {
	DBName    string `json:"db_name"`
	UpdateSeq uint64 `json:"update_seq"`
	DocCount  uint64 `json:"doc_count"`
}

// SourceDatabase is the read side of the document database a
// view indexes. The engine never writes through this interface.
type SourceDatabase interface {
	// Info returns the database name and current update sequence.
	Info(ctx context.Context) (*DatabaseInfo, error)

	// GetDocument returns the document or ErrNotFound.
	GetDocument(ctx context.Context, docID string) (*model.Document, error)

	// Changes streams every change with seq > options.Since in
	// ascending seq order, one callback per change, collapsed to
	// the latest change per document. Returning an error from fn
	// aborts the feed with that error.
	Changes(ctx context.Context, options model.ChangesOptions, fn func(change *model.Change) error) error
}
