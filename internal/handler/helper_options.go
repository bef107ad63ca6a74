package handler

import (
	"encoding/json"
	"net/http"

	"github.com/goydb/mrview/pkg/model"
)

// jsonParams are the options carrying a JSON encoded value in the
// query string.
var jsonParams = map[string]bool{
	"key":      true,
	"startkey": true,
	"endkey":   true,
	"keys":     true,
}

// queryOptions merges the URL query string and, for POST, the
// JSON body into the view query options. URL parameters win.
func queryOptions(r *http.Request) (*model.QueryOptions, error) {
	raw := make(map[string]interface{})

	if r.Method == http.MethodPost {
		err := json.NewDecoder(r.Body).Decode(&raw)
		if err != nil {
			return nil, model.QueryParseError("invalid request body: %v", err)
		}
	}

	for name, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]

		if jsonParams[name] {
			var v interface{}
			err := json.Unmarshal([]byte(value), &v)
			if err != nil {
				return nil, model.QueryParseError("invalid JSON for %q: %v", name, err)
			}
			raw[name] = v
			continue
		}

		raw[name] = value
	}

	// modern alias for the stale option
	switch raw["update"] {
	case "false", false:
		raw["stale"] = model.StaleOK
	case "lazy":
		raw["stale"] = model.StaleUpdateAfter
	}
	delete(raw, "update")

	opts, err := model.DecodeQueryOptions(raw)
	if err != nil {
		return nil, model.QueryParseError("%v", err)
	}
	return opts, nil
}
