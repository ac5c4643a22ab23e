package types

import (
	"bytes"
	"encoding/json"
)

// NullableString is an optional string that serializes to JSON null when unset.
type NullableString struct {
	Value string
	Valid bool
}

// String returns the value, or "" when null.
func (ns NullableString) String() string {
	if ns.Valid {
		return ns.Value
	}
	return ""
}

// IsNil reports whether the string is null or empty.
func (ns NullableString) IsNil() bool {
	return !ns.Valid || ns.Value == ""
}

// OrDefault returns the value, or def when the string is null or empty.
func (ns NullableString) OrDefault(def string) string {
	if ns.IsNil() {
		return def
	}
	return ns.Value
}

// Set assigns a value and marks the string valid.
func (ns *NullableString) Set(value string) {
	ns.Value = value
	ns.Valid = true
}

// Clear marks the string null.
func (ns *NullableString) Clear() {
	ns.Value = ""
	ns.Valid = false
}

// MarshalJSON writes the value, or null when unset.
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.Value)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON string, a JSON number (kept in its literal
// form, so hand-edited numeric IDs survive) or null.
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		ns.Clear()
		return nil
	}
	if data[0] != '"' {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		ns.Set(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	ns.Set(s)
	return nil
}

// NullableStringFrom returns a valid NullableString holding s.
func NullableStringFrom(s string) NullableString {
	return NullableString{Value: s, Valid: true}
}

// NullString returns a null NullableString.
func NullString() NullableString {
	return NullableString{}
}

var _ json.Marshaler = &NullableString{}
var _ json.Unmarshaler = &NullableString{}
var _ Nullable = &NullableString{}
