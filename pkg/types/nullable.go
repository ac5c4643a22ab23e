// Package types provides nullable value types for optional fields in
// persisted documents.
package types

// Nullable is implemented by types that distinguish a null value from a zero
// value.
type Nullable interface {
	IsNil() bool
}
