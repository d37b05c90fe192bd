package content

import (
	"bytes"
	"encoding/json"
	"strings"
)

// SerializeTags turns the raw tags field of a request into its stored form.
// A missing or null value stores an empty list, a list is stored as JSON,
// and anything else is stored as text.
func SerializeTags(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "[]"
	}
	if raw[0] == '[' {
		var list []any
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&list); err == nil {
			var out bytes.Buffer
			enc := json.NewEncoder(&out)
			enc.SetEscapeHTML(false)
			if err := enc.Encode(list); err == nil {
				return strings.TrimSuffix(out.String(), "\n")
			}
		}
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// DecodeTags parses a stored tags value. Anything that is not a JSON list
// decodes to an empty list.
func DecodeTags(stored string) []any {
	var list []any
	if strings.TrimSpace(stored) == "" {
		return []any{}
	}
	if err := json.Unmarshal([]byte(stored), &list); err != nil || list == nil {
		return []any{}
	}
	return list
}
