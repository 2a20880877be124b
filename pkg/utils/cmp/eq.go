package cmp

// BiPredicator tests elements coming from two collections pairwise.
type BiPredicator[A any, B any] func(a A, b B) bool

// a == b as BiPredicator.
func EqEq[T comparable](a, b T) bool {
	return a == b
}
