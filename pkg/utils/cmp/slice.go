package cmp

// SliceEq checks two slices have equal elements in the same order.
func SliceEq[T comparable](a, b []T) bool {
	return SliceEqWith(a, b, EqEq[T])
}

// SliceEqWith checks two slices are element-wise equivalent under pred.
func SliceEqWith[A, B any](a []A, b []B, pred BiPredicator[A, B]) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !pred(a[i], b[i]) {
			return false
		}
	}
	return true
}

// SliceContentEq checks two slices are equal as bags (multisets).
// Ordering does not matter, multiplicity does.
//
// example:
//
//	SliceContentEq([]string{"a", "b", "c"}, []string{"c", "b", "a"})       // ==> true
//	SliceContentEq([]string{"a", "b", "c", "c"}, []string{"a", "b", "c"})  // ==> false. left has 2 "c"s but right has only 1.
func SliceContentEq[T comparable](a, b []T) bool {
	return SliceContentEqWith(a, b, EqEq[T])
}

// SliceContentEqWith checks two slices are equivalent as bags under equiv.
func SliceContentEqWith[A, B any](a []A, b []B, equiv BiPredicator[A, B]) bool {
	if len(a) != len(b) {
		return false
	}

	rest := make(map[int]*B, len(b))
	for i := range b {
		rest[i] = &b[i]
	}

NEXT_A:
	for _, va := range a {
		for i, vb := range rest {
			if equiv(va, *vb) {
				// drop i-th element, since it is matched.
				delete(rest, i)
				continue NEXT_A
			}
		}
		return false
	}

	return len(rest) == 0
}
