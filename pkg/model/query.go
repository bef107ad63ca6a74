package model

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

const (
	StaleOK          = "ok"
	StaleUpdateAfter = "update_after"
)

// QueryOptions are the view query options. Key, StartKey and
// EndKey use explicit presence flags because null is a valid key.
type QueryOptions struct {
	Key      interface{}   `mapstructure:"key"`
	StartKey interface{}   `mapstructure:"startkey"`
	EndKey   interface{}   `mapstructure:"endkey"`
	Keys     []interface{} `mapstructure:"keys"`

	HasKey      bool `mapstructure:"-"`
	HasStartKey bool `mapstructure:"-"`
	HasEndKey   bool `mapstructure:"-"`

	Descending   bool  `mapstructure:"descending"`
	Limit        int64 `mapstructure:"limit"`
	Skip         int64 `mapstructure:"skip"`
	IncludeDocs  bool  `mapstructure:"include_docs"`
	InclusiveEnd bool  `mapstructure:"inclusive_end"`

	Reduce     *bool  `mapstructure:"reduce"`
	Group      bool   `mapstructure:"group"`
	GroupLevel int    `mapstructure:"group_level"`
	Stale      string `mapstructure:"stale"`
}

// NewQueryOptions returns the option defaults, no limit and
// inclusive end key.
func NewQueryOptions() *QueryOptions {
	return &QueryOptions{
		Limit:        -1,
		InclusiveEnd: true,
	}
}

// DecodeQueryOptions decodes a generic option map, e.g. a parsed
// JSON body, into QueryOptions.
func DecodeQueryOptions(in map[string]interface{}) (*QueryOptions, error) {
	opts := NewQueryOptions()

	cfg := &mapstructure.DecoderConfig{
		Result:           opts,
		WeaklyTypedInput: true,
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(in); err != nil {
		return nil, fmt.Errorf("invalid query options: %w", err)
	}

	_, opts.HasKey = in["key"]
	_, opts.HasStartKey = in["startkey"]
	_, opts.HasEndKey = in["endkey"]

	return opts, nil
}

// EffectiveReduce reports whether the query reduces, given
// whether the view carries a reducer.
func (o *QueryOptions) EffectiveReduce(hasReducer bool) bool {
	if !hasReducer {
		return false
	}
	if o.Reduce != nil {
		return *o.Reduce
	}
	return true
}

// Grouped reports whether rows are grouped by key.
func (o *QueryOptions) Grouped() bool {
	return o.Group || o.GroupLevel > 0
}
