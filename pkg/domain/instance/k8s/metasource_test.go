package k8s_test

import (
	"strings"
	"testing"

	"github.com/harborml/berth/pkg/buildtime"
	bconf "github.com/harborml/berth/pkg/configs/backend"
	"github.com/harborml/berth/pkg/domain"
	ik8s "github.com/harborml/berth/pkg/domain/instance/k8s"
	"github.com/harborml/berth/pkg/utils/cmp"
	"github.com/harborml/berth/pkg/utils/try"
	kubecore "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

func TestWorkload(t *testing.T) {
	config := bconf.TrySeal(&bconf.ClusterConfigMarshall{
		Namespace: "berth-test",
		Database:  "postgres://do-no-care",
		Auth:      &bconf.AuthConfigMarshall{SignKey: "ZG8tbm90LWNhcmU="},
		Instance: &bconf.InstanceConfigMarshall{
			Port:          8501,
			HostTypeLabel: "node.berth.invalid/host-type",
		},
	})

	type When struct {
		instance domain.Instance
	}

	theoryOk := func(when When, then kubecore.PodSpec) func(*testing.T) {
		return func(t *testing.T) {
			w := try.To(ik8s.NewWorkload(when.instance)).OrFatal(t)

			testee := w.Build(config)

			if w.Instance() != testee.ObjectMeta.Name {
				t.Errorf(
					"source.Instance != ObjectMeta.Name: (actual, expected) = (%s, %s)",
					testee.ObjectMeta.Name, w.Instance(),
				)
			}

			if testee.ObjectMeta.Namespace != "berth-test" {
				t.Errorf(
					"Namespace: (actual, expected) = (%s, %s)",
					testee.ObjectMeta.Namespace, "berth-test",
				)
			}

			{
				actual := testee.ObjectMeta.Labels
				expected := map[string]string{
					"app.kubernetes.io/version":    buildtime.VERSION(),
					"app.kubernetes.io/name":       "instance",
					"app.kubernetes.io/instance":   w.Instance(),
					"app.kubernetes.io/component":  "instance",
					"app.kubernetes.io/part-of":    "berth",
					"app.kubernetes.io/managed-by": "berth",
					"berth/instance.instanceid":    when.instance.Id,
					"berth/instance.model":         when.instance.ModelId,
				}
				if !cmp.MapEq(actual, expected) {
					t.Errorf(
						"Labels:\n=== actual ===\n%+v\n=== expected ===\n%+v",
						actual, expected,
					)
				}
			}

			{
				actual := testee.Spec.RestartPolicy
				expected := then.RestartPolicy
				if actual != expected {
					t.Errorf(
						"RestartPolicy: (actual, expected) = (%s, %s)",
						actual, expected,
					)
				}
			}

			if !cmp.MapEq(testee.Spec.NodeSelector, then.NodeSelector) {
				t.Errorf(
					"NodeSelector:\n=== actual ===\n%+v\n=== expected ===\n%+v",
					testee.Spec.NodeSelector, then.NodeSelector,
				)
			}

			{
				actual := testee.Spec.Tolerations
				expected := then.Tolerations
				if !cmp.SliceContentEqWith(actual, expected, func(a, b kubecore.Toleration) bool {
					return a.Key == b.Key &&
						a.Operator == b.Operator &&
						a.Value == b.Value &&
						a.Effect == b.Effect
				}) {
					t.Errorf(
						"Tolerations:\n=== actual ===\n%+v\n=== expected ===\n%+v",
						actual, expected,
					)
				}
			}

			{
				actual := testee.Spec.Containers
				expected := then.Containers
				if !cmp.SliceContentEqWith(actual, expected, func(a, b kubecore.Container) bool {
					return a.Name == b.Name &&
						a.Image == b.Image &&
						cmp.SliceContentEqWith(a.Ports, b.Ports, func(a, b kubecore.ContainerPort) bool {
							return a.Name == b.Name && a.ContainerPort == b.ContainerPort
						}) &&
						cmp.MapEqWith(a.Resources.Requests, b.Resources.Requests, resource.Quantity.Equal) &&
						cmp.MapEqWith(a.Resources.Limits, b.Resources.Limits, resource.Quantity.Equal)
				}) {
					t.Errorf(
						"Containers:\n=== actual ===\n%+v\n=== expected ===\n%+v",
						actual, expected,
					)
				}
			}
		}
	}

	t.Run("when it builds a pod spec for a serverless instance, it reserves cpu and memory", theoryOk(
		When{
			instance: domain.Instance{
				InstanceBody: domain.InstanceBody{
					Id:     "test-instance-id",
					Status: domain.Starting,
					Shape: domain.ComputeShape{
						LaunchType: domain.Serverless,
						CPU:        512,
						Memory:     2048,
					},
					ModelBody: domain.ModelBody{
						ModelId:  "test-model-id",
						ImageRef: "repo.invalid/model-image:1.0",
					},
				},
			},
		},
		kubecore.PodSpec{
			RestartPolicy: kubecore.RestartPolicyAlways,
			Containers: []kubecore.Container{
				{
					Name:  "main",
					Image: "repo.invalid/model-image:1.0",
					Ports: []kubecore.ContainerPort{
						{Name: "api", ContainerPort: 8501},
					},
					Resources: kubecore.ResourceRequirements{
						Requests: kubecore.ResourceList{
							"cpu":    resource.MustParse("500m"),
							"memory": resource.MustParse("2Gi"),
						},
						Limits: kubecore.ResourceList{
							"cpu":    resource.MustParse("500m"),
							"memory": resource.MustParse("2Gi"),
						},
					},
				},
			},
		},
	))

	t.Run("when it builds a pod spec for a host-pool instance, it pins the pod to its host type", theoryOk(
		When{
			instance: domain.Instance{
				InstanceBody: domain.InstanceBody{
					Id:     "test-instance-id",
					Status: domain.Starting,
					Shape: domain.ComputeShape{
						LaunchType: domain.HostPool,
						HostType:   "gpu-large",
						GPUCount:   2,
						Constraints: []domain.PlacementConstraint{
							{Attribute: domain.HostTypeAttribute, Equals: "gpu-large"},
						},
					},
					ModelBody: domain.ModelBody{
						ModelId:  "test-model-id",
						ImageRef: "repo.invalid/model-image:1.0",
					},
				},
			},
		},
		kubecore.PodSpec{
			RestartPolicy: kubecore.RestartPolicyAlways,
			NodeSelector: map[string]string{
				"node.berth.invalid/host-type": "gpu-large",
			},
			Tolerations: []kubecore.Toleration{
				{
					Key:      "node.berth.invalid/host-type",
					Operator: kubecore.TolerationOpEqual,
					Value:    "gpu-large",
					Effect:   kubecore.TaintEffectNoSchedule,
				},
			},
			Containers: []kubecore.Container{
				{
					Name:  "main",
					Image: "repo.invalid/model-image:1.0",
					Ports: []kubecore.ContainerPort{
						{Name: "api", ContainerPort: 8501},
					},
					Resources: kubecore.ResourceRequirements{
						Limits: kubecore.ResourceList{
							"nvidia.com/gpu": resource.MustParse("2"),
						},
					},
				},
			},
		},
	))

	theoryNg := func(when When) func(*testing.T) {
		return func(t *testing.T) {
			w, err := ik8s.NewWorkload(when.instance)
			if err == nil {
				t.Fatalf("NewWorkload does not cause error. workload = %+v", w)
			}
			if !strings.Contains(err.Error(), when.instance.Id) {
				t.Errorf("error does not hold instance id: %s", err)
			}
		}
	}

	t.Run("when an instance has a broken image ref, it does not build a workload", theoryNg(
		When{
			instance: domain.Instance{
				InstanceBody: domain.InstanceBody{
					Id: "test-instance-id",
					Shape: domain.ComputeShape{
						LaunchType: domain.Serverless, CPU: 512, Memory: 2048,
					},
					ModelBody: domain.ModelBody{
						ModelId:  "test-model-id",
						ImageRef: "repo.invalid/MODEL IMAGE:::broken",
					},
				},
			},
		},
	))

	t.Run("when a serverless instance misses cpu or memory, it does not build a workload", theoryNg(
		When{
			instance: domain.Instance{
				InstanceBody: domain.InstanceBody{
					Id: "test-instance-id",
					Shape: domain.ComputeShape{
						LaunchType: domain.Serverless, CPU: 512,
					},
					ModelBody: domain.ModelBody{
						ModelId:  "test-model-id",
						ImageRef: "repo.invalid/model-image:1.0",
					},
				},
			},
		},
	))

	t.Run("when a host-pool instance misses its host type constraint, it does not build a workload", theoryNg(
		When{
			instance: domain.Instance{
				InstanceBody: domain.InstanceBody{
					Id: "test-instance-id",
					Shape: domain.ComputeShape{
						LaunchType: domain.HostPool, HostType: "gpu-large",
					},
					ModelBody: domain.ModelBody{
						ModelId:  "test-model-id",
						ImageRef: "repo.invalid/model-image:1.0",
					},
				},
			},
		},
	))

	t.Run("when an instance has an unknown launch type, it does not build a workload", theoryNg(
		When{
			instance: domain.Instance{
				InstanceBody: domain.InstanceBody{
					Id: "test-instance-id",
					Shape: domain.ComputeShape{
						LaunchType: domain.LaunchType("on-premise"),
					},
					ModelBody: domain.ModelBody{
						ModelId:  "test-model-id",
						ImageRef: "repo.invalid/model-image:1.0",
					},
				},
			},
		},
	))
}
