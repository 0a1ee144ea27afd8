// Package ptr contains helpers to create pointers from literals.
package ptr

// To returns a pointer to the given value.
func To[T any](v T) *T {
	return &v
}
