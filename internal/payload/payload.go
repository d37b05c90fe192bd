// Package payload decodes loosely typed JSON request bodies. Fields keep
// their raw encoding so callers can tell an absent key from an explicit null
// and can store non-string values in their literal JSON form.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrNoData is returned when a body is missing, is not valid JSON, is not an
// object, or is an empty object.
var ErrNoData = errors.New("no data")

// ErrInvalid is returned by typed accessors when the stored value has the
// wrong shape.
var ErrInvalid = errors.New("invalid value")

type Object map[string]json.RawMessage

func Decode(r io.Reader) (Object, error) {
	if r == nil {
		return nil, ErrNoData
	}
	var obj Object
	dec := json.NewDecoder(r)
	if err := dec.Decode(&obj); err != nil || len(obj) == 0 {
		return nil, ErrNoData
	}
	return obj, nil
}

// Has reports whether key is present, regardless of its value.
func (o Object) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// Present reports whether key is present with a non-null value.
func (o Object) Present(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

// HasAll reports whether every key is present.
func (o Object) HasAll(keys ...string) bool {
	for _, k := range keys {
		if !o.Has(k) {
			return false
		}
	}
	return true
}

// String returns the contents of a JSON string field. Absent and null
// fields are invalid.
func (o Object) String(key string) (string, error) {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return "", ErrInvalid
	}
	var s string
	if err := json.Unmarshal(o[key], &s); err != nil {
		return "", ErrInvalid
	}
	return s, nil
}

// Int accepts a JSON integer or a string holding one.
func (o Object) Int(key string) (int64, error) {
	raw := bytes.TrimSpace(o[key])
	if len(raw) > 0 && raw[0] == '"' {
		s, err := o.String(key)
		if err != nil {
			return 0, err
		}
		raw = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return n, nil
}

// Text returns a field as text: a JSON string's contents or, for any other
// value, its literal JSON. Falsy values (absent, null, false, 0, "", [] and
// {}) yield ok == false.
func (o Object) Text(key string) (text string, ok bool) {
	raw, present := o[key]
	if !present || !Truthy(raw) {
		return "", false
	}
	if s, err := o.String(key); err == nil {
		return s, true
	}
	return string(bytes.TrimSpace(raw)), true
}

// Raw returns the undecoded value of key.
func (o Object) Raw(key string) json.RawMessage {
	return o[key]
}

// Truthy applies JSON truthiness: null, false, zero numbers, empty strings,
// empty arrays and empty objects are false.
func Truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
