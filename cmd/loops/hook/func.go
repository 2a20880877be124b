package hook

import "errors"

// Func adapts plain functions into a Hook.
type Func[T any, R any] struct {
	// BeforeFn, if not nil, is called before processing the value T.
	BeforeFn func(T) (R, error)

	// AfterFn, if not nil, is called after processing the value T.
	AfterFn func(T) error
}

func (f Func[T, R]) Before(value T) (R, error) {
	if f.BeforeFn == nil {
		return *new(R), nil
	}
	ret, err := f.BeforeFn(value)
	if err != nil {
		return ret, errors.Join(err, ErrHookFailed)
	}
	return ret, nil
}

func (f Func[T, R]) After(value T) error {
	if f.AfterFn == nil {
		return nil
	}
	err := f.AfterFn(value)
	if err != nil {
		return errors.Join(err, ErrHookFailed)
	}
	return nil
}
