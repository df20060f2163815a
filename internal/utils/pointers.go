// Package utils holds small generic helpers shared by the API models and handlers.
package utils

// Value dereferences v, giving the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// ValueOr dereferences v, giving def for nil.
func ValueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// PtrIfSet is Ptr except that the zero value maps to nil, which keeps optional
// fields out of JSON bodies.
func PtrIfSet[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}
