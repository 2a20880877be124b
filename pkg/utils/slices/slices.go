package slices

import "sort"

// Map converts each element in sli with mapper.
//
// The returned slice has the same length as sli, and
// its N-th element is mapper(sli[N]).
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// ToMap converts a slice to a map, indexed with the value given by toKey.
//
// When two or more elements share a key, the last one wins.
func ToMap[T any, K comparable](sli []T, toKey func(v T) K) map[K]T {
	ret := make(map[K]T, len(sli))
	for _, v := range sli {
		ret[toKey(v)] = v
	}
	return ret
}

// KeysOf lists keys of a map, in stable (sorted) order.
func KeysOf[K interface {
	comparable
	Ordered
}, V any](m map[K]V) []K {
	ret := make([]K, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Ordered is a constraint for types comparable with < .
type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~string
}

// Contains returns true when at least one element in sli satisfies pred.
func Contains[T any](sli []T, pred func(v T) bool) bool {
	for _, v := range sli {
		if pred(v) {
			return true
		}
	}
	return false
}
