package k8s

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	bconf "github.com/harborml/berth/pkg/configs/backend"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/berth/k8s/metasource"
	kubecore "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Label holding the instance id on instance workload pods.
const LabelInstanceId = "berth/instance.instanceid"

// name of the container serving the model API.
const containerMain = "main"

func podName(instanceId string) string {
	return "instance-" + instanceId
}

type InstanceIdentifier struct{ domain.InstanceBody }

// The name of application/resource.
//
// This is set as a value of k8s label "app.kubernetes.io/name".
func (ii InstanceIdentifier) Name() string {
	return ii.Component()
}

// This is set as a value of k8s label "app.kubernetes.io/instance"
// AND ALSO `ObjectMeta.Name` .
func (ii InstanceIdentifier) Instance() string {
	return podName(ii.InstanceBody.Id)
}

// Where is this positioned in system architecture.
//
// This is set as a value of k8s label "app.kubernetes.io/component".
func (ii InstanceIdentifier) Component() string {
	return "instance"
}

// Identifier of entity in berth object model.
func (ii InstanceIdentifier) Id() string {
	return ii.InstanceBody.Id
}

// type of "Id()"
func (ii InstanceIdentifier) IdType() string {
	return "instanceid"
}

func (ii InstanceIdentifier) Extras() map[string]string {
	return map[string]string{
		"model": ii.ModelId,
	}
}

func (ii *InstanceIdentifier) ObjectMeta(namespace string) kubeapimeta.ObjectMeta {
	return metasource.ToObjectMeta(ii, namespace)
}

// Workload builds the pod spec serving an instance.
type Workload struct {
	InstanceIdentifier
}

// NewWorkload validates the instance and wraps it as a pod spec builder.
//
// # return:
//
// - *Workload
//
//   - error : it will be caused when the instance cannot be converted to
//     a pod because of its inconsistency or missing properties.
func NewWorkload(i domain.Instance) (*Workload, error) {
	if _, err := name.ParseReference(i.ImageRef); err != nil {
		return nil, fmt.Errorf(
			"malformed [instanceId:%s]: bad image ref %s: %w", i.Id, i.ImageRef, err,
		)
	}

	switch i.Shape.LaunchType {
	case domain.Serverless:
		if i.Shape.CPU <= 0 || i.Shape.Memory <= 0 {
			return nil, fmt.Errorf(
				"malformed [instanceId:%s]: serverless shape without cpu/memory", i.Id,
			)
		}
	case domain.HostPool:
		if i.Shape.HostType == "" || len(i.Shape.Constraints) == 0 {
			return nil, fmt.Errorf(
				"malformed [instanceId:%s]: host-pool shape without host type constraint", i.Id,
			)
		}
	default:
		return nil, fmt.Errorf(
			"malformed [instanceId:%s]: unknown launch type '%s'", i.Id, i.Shape.LaunchType,
		)
	}

	return &Workload{
		InstanceIdentifier: InstanceIdentifier{InstanceBody: i.InstanceBody},
	}, nil
}

var _ metasource.ResourceBuilder[*bconf.ClusterConfig, *kubecore.Pod] = &Workload{}

// convert Workload into kubernetes Pod spec.
//
// Serverless shapes are pinned by cpu/memory requests (= limits).
// Host-pool shapes are pinned to nodes of their host type, with a GPU limit.
func (w *Workload) Build(conf *bconf.ClusterConfig) *kubecore.Pod {
	resources := kubecore.ResourceRequirements{}
	var nodeSelector map[string]string
	var tolerations []kubecore.Toleration

	switch w.Shape.LaunchType {
	case domain.Serverless:
		reserved := kubecore.ResourceList{
			kubecore.ResourceCPU: *resource.NewMilliQuantity(
				int64(w.Shape.CPU)*1000/1024, resource.DecimalSI,
			),
			kubecore.ResourceMemory: *resource.NewQuantity(
				int64(w.Shape.Memory)<<20, resource.BinarySI,
			),
		}
		resources.Requests = reserved
		resources.Limits = reserved

	case domain.HostPool:
		nodeSelector = map[string]string{}
		for _, c := range w.Shape.Constraints {
			key := c.Attribute
			if key == domain.HostTypeAttribute {
				key = conf.Instance().HostTypeLabel()
			}
			nodeSelector[key] = c.Equals
			tolerations = append(tolerations, kubecore.Toleration{
				Key:      key,
				Operator: kubecore.TolerationOpEqual,
				Value:    c.Equals,
				Effect:   kubecore.TaintEffectNoSchedule,
			})
		}
		resources.Limits = kubecore.ResourceList{
			"nvidia.com/gpu": *resource.NewQuantity(
				int64(w.Shape.GPUCount), resource.DecimalSI,
			),
		}
	}

	return &kubecore.Pod{
		ObjectMeta: w.ObjectMeta(conf.Namespace()),
		Spec: kubecore.PodSpec{
			RestartPolicy: kubecore.RestartPolicyAlways,
			NodeSelector:  nodeSelector,
			Tolerations:   tolerations,
			Containers: []kubecore.Container{
				{
					Name:  containerMain,
					Image: w.ImageRef,
					Ports: []kubecore.ContainerPort{
						{Name: "api", ContainerPort: conf.Instance().Port()},
					},
					Resources: resources,
				},
			},
		},
	}
}
