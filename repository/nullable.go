package repository

import (
	"bytes"
	"encoding/json"
)

// Nullable separates the three states of an optional update field:
// absent (Set=false, left untouched), explicit null (Set=true, Valid=false,
// column cleared) and a value (Set=true, Valid=true).
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func Some[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Valid: true, Value: v} }

func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		n.Valid, n.Value = false, zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// column returns the value to write, nil meaning SQL NULL.
func (n Nullable[T]) column() interface{} {
	if !n.Valid {
		return nil
	}
	return n.Value
}
