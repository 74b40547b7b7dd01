package server

import (
	"encoding/json"

	"github.com/mintaslang/dew/internal/types"
)

// parseJSONValue converts a JSON document into the script value model.
func parseJSONValue(s string) (types.Value, bool) {
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return types.Null(), false
	}
	return fromJSON(raw), true
}

func fromJSON(raw any) types.Value {
	switch v := raw.(type) {
	case nil:
		return types.Null()
	case bool:
		return types.Bool(v)
	case float64:
		return types.Number(v)
	case string:
		return types.Str(v)
	case []any:
		items := make([]types.Value, len(v))
		for i, it := range v {
			items[i] = fromJSON(it)
		}
		return types.Array(items)
	case map[string]any:
		fields := make(map[string]types.Value, len(v))
		for k, it := range v {
			fields[k] = fromJSON(it)
		}
		return types.Table(fields)
	}
	return types.Null()
}
