package models

import (
	"encoding/json"
	"time"
)

// Nullable distinguishes the three states of a JSON field in a PATCH body:
//
//	absent        Set=false Valid=false
//	null          Set=true  Valid=false
//	value         Set=true  Valid=true
//
// Pointer fields cannot tell the first two apart.
type Nullable[T any] struct {
	Value T
	Valid bool
	Set   bool
}

// NullableString is an optional, clearable string field
type NullableString = Nullable[string]

// NullableTime is an optional, clearable timestamp field
type NullableTime = Nullable[time.Time]

// UnmarshalJSON only runs when the key is present, which is what sets Set.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true

	var zero T
	if string(data) == "null" {
		n.Value, n.Valid = zero, false
		return nil
	}

	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ToPtr returns nil for absent or null fields
func (n Nullable[T]) ToPtr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
