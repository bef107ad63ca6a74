package reducer

import "github.com/goydb/mrview/pkg/port"

// Builtin resolves a builtin reducer name.
func Builtin(name string) (port.Reducer, bool) {
	switch name {
	case "_sum":
		return &Sum{}, true
	case "_count":
		return &Count{}, true
	case "_stats":
		return &Stats{}, true
	}
	return nil, false
}
