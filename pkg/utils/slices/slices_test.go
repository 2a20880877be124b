package slices_test

import (
	"strconv"
	"testing"

	"github.com/harborml/berth/pkg/utils/cmp"
	"github.com/harborml/berth/pkg/utils/slices"
)

func TestMap(t *testing.T) {
	t.Run("it maps each element with the mapper", func(t *testing.T) {
		actual := slices.Map([]int{1, 2, 3}, strconv.Itoa)
		expected := []string{"1", "2", "3"}
		if !cmp.SliceEq(actual, expected) {
			t.Errorf("unmatch: %v != %v", actual, expected)
		}
	})
	t.Run("it maps empty to empty", func(t *testing.T) {
		actual := slices.Map([]int{}, strconv.Itoa)
		if len(actual) != 0 {
			t.Errorf("unmatch: %v is not empty", actual)
		}
	})
}

func TestToMap(t *testing.T) {
	t.Run("it indexes elements by key", func(t *testing.T) {
		type item struct {
			Id   string
			Name string
		}
		actual := slices.ToMap(
			[]item{{Id: "a", Name: "ani"}, {Id: "b", Name: "budgie"}},
			func(i item) string { return i.Id },
		)
		expected := map[string]item{
			"a": {Id: "a", Name: "ani"},
			"b": {Id: "b", Name: "budgie"},
		}
		if !cmp.MapEq(actual, expected) {
			t.Errorf("unmatch: %v != %v", actual, expected)
		}
	})
}

func TestKeysOf(t *testing.T) {
	t.Run("it lists keys in sorted order", func(t *testing.T) {
		actual := slices.KeysOf(map[string]int{"c": 3, "a": 1, "b": 2})
		expected := []string{"a", "b", "c"}
		if !cmp.SliceEq(actual, expected) {
			t.Errorf("unmatch: %v != %v", actual, expected)
		}
	})
}

func TestContains(t *testing.T) {
	for name, testcase := range map[string]struct {
		sli      []int
		expected bool
	}{
		"when an element satisfies the predicate, it returns true": {[]int{1, 2, 3}, true},
		"when no elements satisfy the predicate, it returns false": {[]int{1, 3, 5}, false},
		"when the slice is empty, it returns false":                {[]int{}, false},
	} {
		t.Run(name, func(t *testing.T) {
			actual := slices.Contains(testcase.sli, func(v int) bool { return v%2 == 0 })
			if actual != testcase.expected {
				t.Errorf("unmatch: %v != %v", actual, testcase.expected)
			}
		})
	}
}
