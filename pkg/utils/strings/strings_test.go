package strings_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/harborml/berth/pkg/utils/cmp"
	bstr "github.com/harborml/berth/pkg/utils/strings"
)

func TestTrimPrefixAll(t *testing.T) {
	type when struct {
		s      string
		prefix string
	}

	for name, testcase := range map[string]struct {
		when when
		then string
	}{
		"when string has one prefix, it returns s without prefix": {
			when: when{s: "aaabbbccc", prefix: "aaab"},
			then: "bbccc",
		},
		"when string has repeated prefixes, it returns s without all of them": {
			when: when{s: "aaabbbccc", prefix: "a"},
			then: "bbbccc",
		},
		"when string has the prefix pattern in mid, it trims the leading ones only": {
			when: when{s: "aaabbbaaacccaaa", prefix: "a"},
			then: "bbbaaacccaaa",
		},
		"when string has no prefix, it returns s unchanged": {
			when: when{s: "aaabbbaaacccaaa", prefix: "b"},
			then: "aaabbbaaacccaaa",
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual := bstr.TrimPrefixAll(testcase.when.s, testcase.when.prefix)
			if actual != testcase.then {
				t.Errorf("wrong result: (actual, expected) = (%s, %s)", actual, testcase.then)
			}
		})
	}
}

func TestSupplySuffix(t *testing.T) {
	type when struct {
		text   string
		suffix string
	}
	for name, testcase := range map[string]struct {
		when when
		then string
	}{
		"when text does not have suffix, it returns text + suffix": {
			when: when{text: "foobar", suffix: "baz"},
			then: "foobarbaz",
		},
		"when text has suffix, it returns text as input": {
			when: when{text: "foobar", suffix: "ar"},
			then: "foobar",
		},
		"when text is empty, it returns suffix": {
			when: when{text: "", suffix: "foo"},
			then: "foo",
		},
		"when suffix is empty, it returns input text": {
			when: when{text: "bar", suffix: ""},
			then: "bar",
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual := bstr.SupplySuffix(testcase.when.text, testcase.when.suffix)
			if actual != testcase.then {
				t.Errorf(
					`unexpected result: SupplySuffix("%s", "%s") --> %v`,
					testcase.when.text, testcase.when.suffix, actual,
				)
			}
		})
	}
}

func TestRandomHex(t *testing.T) {
	notLowerHex := regexp.MustCompile(`[^0-9a-f]`)

	for name, expectedLen := range map[string]uint{
		"zero": 0,
		"one":  1,
		"even": 8,
		"odd":  9,
	} {
		t.Run("it generates random hex string with "+name+" length", func(t *testing.T) {
			s, err := bstr.RandomHex(expectedLen)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			if len(s) != int(expectedLen) {
				t.Error("wrong length:", s)
			}
			if notLowerHex.MatchString(s) {
				t.Error("non-hex char found:", s)
			}
		})
	}

	t.Run("it generates varying strings for each call", func(t *testing.T) {
		tries := 1024
		length := uint(32) // 16 bytes = 128 bits, same length as UUID

		// Repeated draws of 128 bit values should stay collision-free
		// for far more than 1k tries. Collisions mean broken randomness.
		collision := map[string]struct{}{}
		for i := 0; i < tries; i++ {
			s, err := bstr.RandomHex(length)
			if err != nil {
				t.Fatal("unexpected error:", err)
			}
			collision[s] = struct{}{}
		}

		if len(collision) != tries {
			t.Error("it generates collisions")
		}
	})
}

func TestSplitIfNotEmpty(t *testing.T) {
	t.Run("it does not split empty string", func(t *testing.T) {
		actual := bstr.SplitIfNotEmpty("", ",")
		if len(actual) != 0 {
			t.Errorf(`"%s" -> %+v`, "", actual)
		}
	})

	for _, pattern := range []string{
		"aa,bbb,ccc",
		",aaa,bb", // leading separator
		"aa,bb,",  // trailing separator
		",,,",     // separator only sequence
		",",       // single separator
	} {
		t.Run("it does split non-empty string like strings.Split", func(t *testing.T) {
			actual := bstr.SplitIfNotEmpty(pattern, ",")
			expected := strings.Split(pattern, ",")
			if !cmp.SliceEq(actual, expected) {
				t.Errorf(`"%s" -> (actual, expected) = (%+v, %+v)`, pattern, actual, expected)
			}
		})
	}
}
