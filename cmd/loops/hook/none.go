package hook

// None is the no-op Hook, used when no hook URLs are configured.
type None[T any] struct{}

func (None[T]) Before(value T) (struct{}, error) {
	return struct{}{}, nil
}

func (None[T]) After(value T) error {
	return nil
}
