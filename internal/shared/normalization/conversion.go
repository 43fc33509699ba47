package normalization

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NullText is how JSON null values are rendered in output records.
const NullText = "null"

// AsText renders a decoded JSON value as plain text for line and CSV output.
// Scalars print as-is, null prints as "null" and nested values print as compact JSON.
func AsText(value any) string {
	switch typed := value.(type) {
	case nil:
		return NullText
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case []any, map[string]any:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	default:
		return fmt.Sprint(typed)
	}
}
