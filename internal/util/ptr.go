// Package util holds small generic helpers shared across packages.
package util

// Ptr returns a pointer to a copy of v. Optional record fields are pointers,
// so literals and loop values need one.
func Ptr[T any](v T) *T {
	return &v
}
