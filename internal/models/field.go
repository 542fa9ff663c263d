package models

import (
	"bytes"
	"encoding/json"
)

// Field is a nullable string that also records whether its key appeared in
// the decoded JSON object. The zero value is an absent field.
type Field struct {
	Value   string
	Valid   bool // false when absent or null
	Present bool // key was present, possibly with a null value
}

// NewField returns a present, non-null field.
func NewField(v string) Field {
	return Field{Value: v, Valid: true, Present: true}
}

// NullField returns a present field holding null.
func NullField() Field {
	return Field{Present: true}
}

// UnmarshalJSON is only invoked for keys present in the object.
func (f *Field) UnmarshalJSON(b []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Value, f.Valid = "", false
		return nil
	}
	if err := json.Unmarshal(b, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr returns nil for absent or null fields.
func (f Field) Ptr() *string {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}
