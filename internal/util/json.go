package util

import "encoding/json"

// ConvertStructToJson marshals v to a JSON string, returning "{}" on
// failure so callers can embed the result without error handling.
func ConvertStructToJson(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
