package model

// ChangesOptions controls the change feed of the source database.
// The feed starts after Since and runs to the current end.
type ChangesOptions struct {
	Since       uint64
	Limit       int
	IncludeDocs bool
	Conflicts   bool
}
