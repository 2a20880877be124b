package instances_test

import (
	"testing"
	"time"

	"github.com/harborml/berth/pkg/api/types/instances"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/utils/rfctime"
)

func TestComputeSpec_Descriptor(t *testing.T) {
	t.Run("it converts a pooled-cpu spec", func(t *testing.T) {
		testee := instances.ComputeSpec{Mode: "pooled-cpu", CPU: 1024, Memory: 4096}
		actual, err := testee.Descriptor()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := domain.ComputeDescriptor{
			Mode: domain.PooledCPU, CPU: 1024, Memory: 4096,
		}
		if actual != expected {
			t.Errorf("descriptor: (actual, expected) = (%+v, %+v)", actual, expected)
		}
	})

	t.Run("it converts a pooled-gpu spec", func(t *testing.T) {
		testee := instances.ComputeSpec{Mode: "pooled-gpu", HostType: "gpu-small"}
		actual, err := testee.Descriptor()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		expected := domain.ComputeDescriptor{
			Mode: domain.PooledGPU, HostType: "gpu-small",
		}
		if actual != expected {
			t.Errorf("descriptor: (actual, expected) = (%+v, %+v)", actual, expected)
		}
	})

	t.Run("it rejects an unknown mode", func(t *testing.T) {
		testee := instances.ComputeSpec{Mode: "bare-metal"}
		if _, err := testee.Descriptor(); err == nil {
			t.Error("unknown mode does not cause error")
		}
	})
}

func TestComposeDetail(t *testing.T) {
	rates := domain.ServerlessRates{VCPUPerHour: 0.04048, MemoryGiBPerHour: 0.004445}
	hostTypes := []domain.HostType{
		{Name: "gpu-small", GPUCount: 1, GPUMemory: 16384, CostPerHour: 0.526},
	}

	createdAt := time.Date(2026, 4, 1, 12, 13, 14, 0, time.UTC)
	updatedAt := createdAt.Add(90 * time.Second)

	t.Run("it composes a running serverless instance", func(t *testing.T) {
		actual := instances.ComposeDetail(
			domain.Instance{
				InstanceBody: domain.InstanceBody{
					Id:      "instance-id-1",
					OwnerId: "user-1",
					Name:    "my-llama",
					Status:  domain.Running,
					Shape: domain.ComputeShape{
						LaunchType: domain.Serverless, CPU: 1024, Memory: 4096,
					},
					Endpoint:  "http://10.0.0.1:8501",
					CreatedAt: createdAt,
					UpdatedAt: updatedAt,
					ModelBody: domain.ModelBody{
						ModelId: "model-1", ModelName: "Llama 2 7B",
						ImageRef: "repo.invalid/llama2:7b",
					},
				},
			},
			rates, hostTypes,
		)

		expected := instances.Detail{
			Summary: instances.Summary{
				InstanceId: "instance-id-1",
				ModelId:    "model-1",
				Name:       "my-llama",
				OwnerId:    "user-1",
				Status:     "running",
				UpdatedAt:  rfctime.RFC3339(updatedAt),
			},
			Compute: instances.Compute{
				LaunchType: "serverless", CPU: 1024, Memory: 4096,
			},
			Endpoint:    "http://10.0.0.1:8501",
			CostPerHour: 1.0*rates.VCPUPerHour + 4.0*rates.MemoryGiBPerHour,
			CreatedAt:   rfctime.RFC3339(createdAt),
		}

		if !actual.Equal(&expected) {
			t.Errorf(
				"detail:\n=== actual ===\n%+v\n=== expected ===\n%+v",
				actual, expected,
			)
		}
	})

	t.Run("it composes an errored host-pool instance with its failure", func(t *testing.T) {
		actual := instances.ComposeDetail(
			domain.Instance{
				InstanceBody: domain.InstanceBody{
					Id:      "instance-id-2",
					OwnerId: "user-2",
					Status:  domain.Errored,
					Shape: domain.ComputeShape{
						LaunchType: domain.HostPool, HostType: "gpu-small", GPUCount: 1,
						Constraints: []domain.PlacementConstraint{
							{Attribute: domain.HostTypeAttribute, Equals: "gpu-small"},
						},
					},
					Failure: &domain.InstanceFailure{
						Reason:  domain.StartupTimeout,
						Message: "not healthy in 10m0s",
					},
					CreatedAt: createdAt,
					UpdatedAt: updatedAt,
					ModelBody: domain.ModelBody{
						ModelId: "model-2", ModelName: "Llama 2 70B",
						ImageRef: "repo.invalid/llama2:70b",
					},
				},
			},
			rates, hostTypes,
		)

		expected := instances.Detail{
			Summary: instances.Summary{
				InstanceId: "instance-id-2",
				ModelId:    "model-2",
				OwnerId:    "user-2",
				Status:     "error",
				UpdatedAt:  rfctime.RFC3339(updatedAt),
			},
			Compute: instances.Compute{
				LaunchType: "host-pool", HostType: "gpu-small", GPUCount: 1,
			},
			CostPerHour: 0.526,
			Failure: &instances.Failure{
				Reason:  "startup timeout",
				Message: "not healthy in 10m0s",
			},
			CreatedAt: rfctime.RFC3339(createdAt),
		}

		if !actual.Equal(&expected) {
			t.Errorf(
				"detail:\n=== actual ===\n%+v\n=== expected ===\n%+v",
				actual, expected,
			)
		}
	})
}
