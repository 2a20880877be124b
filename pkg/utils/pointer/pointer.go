package pointer

// OrDefault dereferences ptr, or returns def when ptr is nil.
func OrDefault[T any](ptr *T, def T) T {
	if ptr == nil {
		return def
	}
	return *ptr
}
