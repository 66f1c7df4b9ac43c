package utils

// ValueOr dereferences v, returning fallback for nil.
func ValueOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// Clone returns a copy of the pointed-to value so callers cannot mutate shared state.
func Clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
