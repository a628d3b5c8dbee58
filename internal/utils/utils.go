package utils

// Ptr returns a pointer to value, useful for the optional pointer fields
// of wire payloads.
func Ptr[T any](value T) *T {
	return &value
}
