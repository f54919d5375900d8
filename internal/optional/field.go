// Package optional models PATCH payload fields that can be absent, explicitly
// null, or carry a value.
package optional

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	Set   bool // key present in the payload
	Null  bool // key present with a JSON null
	Value T
}

func Of[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

func Null[T any]() Field[T] { return Field[T]{Set: true, Null: true} }

// HasValue reports whether the field was sent with a non-null value.
func (f Field[T]) HasValue() bool { return f.Set && !f.Null }

// Ptr returns nil for absent or null fields.
func (f Field[T]) Ptr() *T {
	if !f.HasValue() {
		return nil
	}
	v := f.Value
	return &v
}

// UnmarshalJSON is only invoked when the key is present.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
