package metasource

import (
	"fmt"

	"github.com/harborml/berth/pkg/buildtime"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type SpecBuilder[C any, D any] interface {
	// Build k8s resource descriptor(s)
	Build(conf C) D
}

// berth component metadata which is deployed or placed in k8s cluster.
//
// ToLabels function converts MetaSource to k8s labels.
type MetaSource interface {
	// The name of application/resource.
	//
	// If there are many resources running a same app, they may have same `Name()`.
	//
	// For `ObjectMeta.Name`, USE `Instance()`, NOT THIS.
	//
	// This is set as a value of k8s label "app.kubernetes.io/name".
	//
	// see: https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
	Name() string

	// This is set as a value of k8s label "app.kubernetes.io/instance"
	// AND ALSO `ObjectMeta.Name` .
	//
	// This will identify an instance from others sharing Name() and Component().
	//
	// see: https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
	//
	// When you doubt what value should be set,
	// Name() + "-" + IdType() + "-" + "Id()" is recommended.
	Instance() string

	// Where is this positioned in system architecture.
	//
	// example: database, cache, reverse-proxy, ...
	//
	// This is set as a value of k8s label "app.kubernetes.io/component".
	//
	// see: https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
	Component() string

	// Identifier of entity in berth object model.
	Id() string

	// type of "Id()"
	//
	// example: instanceid, modelid, ...
	IdType() string

	// convert to ObjectMeta
	ObjectMeta(namespace string) kubeapimeta.ObjectMeta
}

type Extraer interface {

	// Extra labels.
	//
	// See document of `ToLabels` for more details.
	Extras() map[string]string
}

type ResourceBuilder[C any, D any] interface {
	MetaSource
	SpecBuilder[C, D]
}

// convert from MetaSource to k8s labels, including "recommended labels".
//
// https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
//
// # Recommended Labels:
//
// Recommended labels are generated like below.
//
// - "app.kubernetes.io/version"    : build version of the berth.
//
// - "app.kubernetes.io/part-of"    : "berth"
//
// - "app.kubernetes.io/managed-by" : "berth"
//
// - "app.kubernetes.io/component"  : s.Component()
//
// - "app.kubernetes.io/name"       : s.Name()
//
// - "app.kubernetes.io/instance"   : s.Instance()
//
// Each `s`s are MetaSource passed to `ToLabels`.
//
// # Berth Labels:
//
// Berth specific labels are prefixed with "berth/" .
// They are generated like below.
//
// - "berth/${s.Name()}.${s.IdType()}" : s.Id()
//
// - "berth/${s.Name()}.KEY"           : s.Extras()[KEY] (if any)
//
// Each `s`s here are MetaSource passed to `ToLabels`.
//
// Expression `${...}` are placeholder, replaced with evaluation of its content.
// CAPITALIZED `KEY` is a key in `s.Extras()`,
// only if `s` implements `interface { Extras() map[string]string }`
// (otherwise, they do not appear).
//
// #params:
//
// - MetaSource: berth object which is to be k8s resource.
func ToLabels(s MetaSource) map[string]string {
	berthLabelPrefix := fmt.Sprintf("berth/%s.", s.Name())

	l := map[string]string{
		"app.kubernetes.io/version":    buildtime.VERSION(),
		"app.kubernetes.io/name":       s.Name(),
		"app.kubernetes.io/instance":   s.Instance(),
		"app.kubernetes.io/component":  s.Component(),
		"app.kubernetes.io/part-of":    "berth",
		"app.kubernetes.io/managed-by": "berth",

		// berth/NAME.ID_TYPE: ID  --  example: `berth/instance.instanceid: SOMEUUID-VALU-E...`
		berthLabelPrefix + s.IdType(): s.Id(),
	}

	if withEx, ok := s.(Extraer); ok {
		for k, v := range withEx.Extras() {
			l[berthLabelPrefix+k] = v
		}
	}

	return l
}

// default (and reference) implementation of MetaSource.ObjectMeta.
//
// For users:
//
// This is a helper function for MetaSource implementer, not for users.
//
// When you using specific MetaSource implementations,
// it is recommended that you use MetaSource.ObjectMeta methods, not this,
// to respect for each types.
func ToObjectMeta(m MetaSource, namespace string) kubeapimeta.ObjectMeta {
	labels := ToLabels(m)
	return kubeapimeta.ObjectMeta{
		Name:      m.Instance(),
		Namespace: namespace,
		Labels:    labels,
	}
}
