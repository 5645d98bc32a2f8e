//go:build assertions_disabled

package assert

import "context"

// True asserts that the given value is true.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func True(value bool, args ...any) {
	// Intentionally left blanks
}

// False asserts that the given value is false.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func False(value bool, args ...any) {
	// Intentionally left blanks
}

// Nil asserts that the given value is nil.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func Nil(value any, args ...any) {
	// Intentionally left blanks
}

// NotNil asserts that the given value is not nil.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func NotNil(value any, args ...any) {
	// Intentionally left blanks
}

// ContextHasValue asserts that the given context contains a value for the specified key.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func ContextHasValue[Key any, Value any](ctx context.Context, key Key, args ...any) {
	// Intentionally left blanks
}

// ContextDoesNotHaveValue asserts that the given context does not contain a value for the specified key.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func ContextDoesNotHaveValue[Key any, Value any](ctx context.Context, key Key, args ...any) {
	// Intentionally left blanks
}

// ContextIsAlive asserts that the given context is alive (not cancelled or done).
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func ContextIsAlive(ctx context.Context, args ...any) {
	// Intentionally left blanks
}

// ContextIsDead asserts that the given context is not alive (cancelled or done).
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func ContextIsDead(ctx context.Context, args ...any) {
	// Intentionally left blanks
}

// EmptySlice asserts that the given slice is empty.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func EmptySlice[T any](slice []T, args ...any) {
	// Intentionally left blanks
}

// NonEmptySlice asserts that the given slice is not empty.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func NonEmptySlice[T any](slice []T, args ...any) {
	// Intentionally left blanks
}

// EmptyMap asserts that the given map is empty.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func EmptyMap[K comparable, V any](m map[K]V, args ...any) {
	// Intentionally left blanks
}

// NonEmptyMap asserts that the given map is not empty.
// With the assertions_disabled build tag this is a no-op: its arguments are
// ignored and it never panics.
func NonEmptyMap[K comparable, V any](m map[K]V, args ...any) {
	// Intentionally left blanks
}
