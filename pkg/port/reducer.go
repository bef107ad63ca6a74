package port

// Reducer aggregates emitted values. Keys pair each emitted key
// with the emitting doc id and is empty on rereduce, where values
// are the outputs of earlier Reduce calls.
type Reducer interface {
	Reduce(keys [][2]interface{}, values []interface{}, rereduce bool) (interface{}, error)
}

// ReducerBuilder compiles reduce function source into a reducer.
type ReducerBuilder func(fn string) (Reducer, error)

// ReducerEngines maps a design document language to its builder,
// used for non builtin reduce functions.
type ReducerEngines map[string]ReducerBuilder
