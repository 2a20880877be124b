package cluster

import (
	"sort"
	"strings"
)

// LabelSelector is an equality-based k8s label selector.
//
// see: https://kubernetes.io/docs/concepts/overview/working-with-objects/labels/#equality-based-requirement
type LabelSelector map[string]string

// convert to string value in form of query string.
//
// Keys are sorted, so the expression is deterministic.
func (ls LabelSelector) QueryString() string {
	if len(ls) == 0 {
		return ""
	}

	keys := make([]string, 0, len(ls))
	for k := range ls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	terms := make([]string, len(keys))
	for i, k := range keys {
		terms[i] = k + "=" + ls[k]
	}
	return strings.Join(terms, ",")
}
