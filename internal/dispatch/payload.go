package dispatch

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// NormalizeCriteria flattens a payload into filter criteria. Keys and string
// values are lower-cased; numbers and booleans are formatted; nested objects,
// arrays and nulls are dropped. Keys that collide after lower-casing resolve
// in sorted key order so the output is deterministic.
func NormalizeCriteria(p Payload) map[string]string {
	if len(p) == 0 {
		return nil
	}

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	criteria := make(map[string]string, len(p))
	for _, k := range keys {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		val, ok := primitiveString(p[k])
		if !ok {
			continue
		}
		criteria[key] = val
	}
	if len(criteria) == 0 {
		return nil
	}
	return criteria
}

func primitiveString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.ToLower(t), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
