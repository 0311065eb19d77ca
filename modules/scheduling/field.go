package scheduling

import "encoding/json"

// Field carries an optional update value with three states: absent (zero
// value, the field is left unmodified), set to a value, or set to NULL for
// nullable columns. Update payloads use it so partial updates only touch
// the fields the caller actually supplied.
type Field[T any] struct {
	set   bool
	value *T
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{set: true, value: &v}
}

// Null returns a Field that clears a nullable column.
func Null[T any]() Field[T] {
	return Field[T]{set: true}
}

// IsSet reports whether the field was supplied at all.
func (f Field[T]) IsSet() bool {
	return f.set
}

// Value returns the carried value and whether it is non-NULL.
func (f Field[T]) Value() (T, bool) {
	if f.value == nil {
		var zero T
		return zero, false
	}
	return *f.value, true
}

// UnmarshalJSON maps a present key to Set, an explicit null to Null.
// Absent keys never reach the unmarshaler and leave the field zero, which
// is how PATCH bodies decode straight into update payloads.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Set(v)
	return nil
}

// arg returns the value shaped for parameter binding: nil for NULL.
func (f Field[T]) arg() any {
	if f.value == nil {
		return nil
	}
	return *f.value
}
