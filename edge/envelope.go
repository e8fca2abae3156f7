package edge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// envelope is the decoded {code, message, data} response body. raw keeps the
// full top-level object because some deployments put created ids outside data.
type envelope struct {
	Code    int
	Message string
	Data    map[string]any
	raw     map[string]any
}

func parseEnvelope(body []byte) (envelope, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return envelope{}, fmt.Errorf("invalid json body: %w", err)
	}
	env := envelope{raw: raw}
	if code, ok := readAnyInt64(raw["code"]); ok {
		env.Code = int(code)
	}
	env.Message = readString(raw, "message")
	if data, ok := raw["data"].(map[string]any); ok {
		env.Data = data
	} else {
		env.Data = map[string]any{}
	}
	return env, nil
}

// createdID walks the known response shapes for a freshly created record id,
// most specific first. Returns false when no shape carries a positive id.
func (e envelope) createdID(field string) (int64, bool) {
	paths := [][]string{
		{field},
		{"user", "id"},
		{"id"},
		{"data", field},
		{"data", "id"},
		{"result", field},
		{"result", "id"},
	}
	for _, path := range paths {
		if id, ok := readPathInt64(e.raw, path...); ok && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// indicatesSuccess reports whether the response signals success even when the
// created id is missing from every known shape.
func (e envelope) indicatesSuccess() bool {
	if ok, valid := readAnyBool(e.raw["isOk"]); valid && ok {
		return true
	}
	if ok, valid := readAnyBool(e.raw["success"]); valid && ok {
		return true
	}
	return e.Code == 200
}

func readPathInt64(source map[string]any, path ...string) (int64, bool) {
	current := any(source)
	for i, key := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return 0, false
		}
		current, ok = node[key]
		if !ok {
			return 0, false
		}
		if i == len(path)-1 {
			return readAnyInt64(current)
		}
	}
	return 0, false
}

func readString(source map[string]any, key string) string {
	if source == nil {
		return ""
	}
	if value, ok := source[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func readInt64(source map[string]any, key string) int64 {
	if source == nil {
		return 0
	}
	value, _ := readAnyInt64(source[key])
	return value
}

func readBool(source map[string]any, key string) bool {
	if source == nil {
		return false
	}
	value, _ := readAnyBool(source[key])
	return value
}

func readAnyInt64(value any) (int64, bool) {
	switch typed := value.(type) {
	case nil:
		return 0, false
	case float64:
		return int64(typed), true
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func readAnyBool(value any) (bool, bool) {
	switch typed := value.(type) {
	case nil:
		return false, false
	case bool:
		return typed, true
	case float64:
		return typed != 0, true
	case int:
		return typed != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no", "":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

func readSlice(source map[string]any, key string) []map[string]any {
	if source == nil {
		return nil
	}
	items, ok := source[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if entry, ok := item.(map[string]any); ok {
			out = append(out, entry)
		}
	}
	return out
}

func readMap(source map[string]any, key string) (map[string]any, bool) {
	if source == nil {
		return nil, false
	}
	value, ok := source[key].(map[string]any)
	return value, ok
}
