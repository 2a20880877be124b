package domain

import (
	"errors"
	"fmt"

	"github.com/harborml/berth/pkg/utils/cmp"
	"github.com/harborml/berth/pkg/utils/slices"
)

type ComputeMode string

const (
	// Deploy on the shared serverless pool, sized by cpu/memory.
	PooledCPU ComputeMode = "pooled-cpu"

	// Deploy on a managed pool of GPU hosts of a named type.
	PooledGPU ComputeMode = "pooled-gpu"
)

func (cm ComputeMode) String() string {
	return string(cm)
}

func AsComputeMode(mode string) (ComputeMode, error) {
	switch mode {
	case string(PooledCPU):
		return PooledCPU, nil
	case string(PooledGPU):
		return PooledGPU, nil
	default:
		return "", fmt.Errorf("'%s' is not ComputeMode", mode)
	}
}

// ComputeDescriptor is the compute a deployer requests for an instance.
type ComputeDescriptor struct {
	Mode ComputeMode

	// cpu units (1024 = 1 vCPU). Meaningful when Mode is PooledCPU.
	CPU int

	// memory in MiB. Meaningful when Mode is PooledCPU.
	Memory int

	// name of the host type to run on. Meaningful when Mode is PooledGPU.
	HostType string
}

func (cd ComputeDescriptor) String() string {
	switch cd.Mode {
	case PooledCPU:
		return fmt.Sprintf("%s[cpu=%d memory=%dMiB]", cd.Mode, cd.CPU, cd.Memory)
	case PooledGPU:
		return fmt.Sprintf("%s[host-type=%s]", cd.Mode, cd.HostType)
	default:
		return string(cd.Mode)
	}
}

type LaunchType string

const (
	// Run on the shared pool without knowing hosts.
	Serverless LaunchType = "serverless"

	// Run on a managed pool of hosts, restricted by placement constraints.
	HostPool LaunchType = "host-pool"
)

func (lt LaunchType) String() string {
	return string(lt)
}

func AsLaunchType(lt string) (LaunchType, error) {
	switch lt {
	case string(Serverless):
		return Serverless, nil
	case string(HostPool):
		return HostPool, nil
	default:
		return "", fmt.Errorf("'%s' is not LaunchType", lt)
	}
}

// PlacementConstraint restricts which host in a pool may run a workload:
// the host attribute named Attribute must equal Equals.
type PlacementConstraint struct {
	Attribute string
	Equals    string
}

// Host attribute naming the type of a pool host. In k8s this is a node label key.
const HostTypeAttribute = "berth/host-type"

// ComputeShape is the resolved execution descriptor an instance is scheduled with.
//
// It is produced by ComputeDescriptor.Resolve, never persisted independently;
// it is embedded in Instance.
type ComputeShape struct {
	LaunchType LaunchType

	// cpu units and memory MiB. Meaningful when LaunchType is Serverless.
	CPU    int
	Memory int

	// host type name and the GPU count of one such host.
	// Meaningful when LaunchType is HostPool.
	HostType string
	GPUCount int

	// empty for Serverless; exactly one host-type constraint for HostPool.
	Constraints []PlacementConstraint
}

func (cs ComputeShape) Equal(other ComputeShape) bool {
	return cs.LaunchType == other.LaunchType &&
		cs.CPU == other.CPU &&
		cs.Memory == other.Memory &&
		cs.HostType == other.HostType &&
		cs.GPUCount == other.GPUCount &&
		cmp.SliceEq(cs.Constraints, other.Constraints)
}

func (cs ComputeShape) String() string {
	switch cs.LaunchType {
	case Serverless:
		return fmt.Sprintf("%s[cpu=%d memory=%dMiB]", cs.LaunchType, cs.CPU, cs.Memory)
	case HostPool:
		return fmt.Sprintf("%s[host-type=%s gpus=%d]", cs.LaunchType, cs.HostType, cs.GPUCount)
	default:
		return string(cs.LaunchType)
	}
}

// HostType describes one type of host in the GPU pool.
type HostType struct {
	Name string

	// Number of GPUs on one host of this type.
	GPUCount int

	// GPU memory in MiB available on one host of this type.
	GPUMemory int

	// Price of occupying one host for an hour.
	CostPerHour float64
}

// Hourly rates of the serverless pool, for cost estimation.
type ServerlessRates struct {
	// price of 1 vCPU (1024 cpu units) for an hour.
	VCPUPerHour float64

	// price of 1 GiB of memory for an hour.
	MemoryGiBPerHour float64
}

// CostPerHour estimates what running this shape costs per hour.
//
// For host-pool shapes the rate comes from the matching host type;
// unknown host types estimate as zero.
func (cs ComputeShape) CostPerHour(rates ServerlessRates, hostTypes []HostType) float64 {
	switch cs.LaunchType {
	case Serverless:
		return float64(cs.CPU)/1024.0*rates.VCPUPerHour +
			float64(cs.Memory)/1024.0*rates.MemoryGiBPerHour
	case HostPool:
		for _, ht := range hostTypes {
			if ht.Name == cs.HostType {
				return ht.CostPerHour
			}
		}
	}
	return 0
}

var ErrInvalidComputeShape = errors.New("invalid compute shape")

// The serverless pool accepts only these cpu/memory pairs
// (cpu units -> allowed memory MiB).
var serverlessCombinations = map[int][]int{
	256:  {512, 1024, 2048},
	512:  memoryRange(1024, 4096),
	1024: memoryRange(2048, 8192),
	2048: memoryRange(4096, 16384),
	4096: memoryRange(8192, 30720),
}

func memoryRange(min, max int) []int {
	r := make([]int, 0, (max-min)/1024+1)
	for m := min; m <= max; m += 1024 {
		r = append(r, m)
	}
	return r
}

// Resolve maps this descriptor to a scheduler-ready ComputeShape,
// validated against the model's minimum requirements and,
// for GPU deployments, against the known host types.
//
// It is pure: no side effects, deterministic given its arguments.
func (cd ComputeDescriptor) Resolve(model ModelBody, hostTypes []HostType) (ComputeShape, error) {
	switch cd.Mode {
	case PooledCPU:
		allowed, ok := serverlessCombinations[cd.CPU]
		if !ok {
			return ComputeShape{}, fmt.Errorf(
				"%w: cpu %d is not offered by the serverless pool", ErrInvalidComputeShape, cd.CPU,
			)
		}
		if !slices.Contains(allowed, func(m int) bool { return m == cd.Memory }) {
			return ComputeShape{}, fmt.Errorf(
				"%w: cpu %d does not pair with memory %d MiB", ErrInvalidComputeShape, cd.CPU, cd.Memory,
			)
		}
		if cd.CPU < model.MinCPU || cd.Memory < model.MinMemory {
			return ComputeShape{}, fmt.Errorf(
				"%w: model %s requires at least cpu %d / memory %d MiB",
				ErrInvalidComputeShape, model.ModelId, model.MinCPU, model.MinMemory,
			)
		}
		return ComputeShape{LaunchType: Serverless, CPU: cd.CPU, Memory: cd.Memory}, nil

	case PooledGPU:
		var hostType *HostType
		for i, ht := range hostTypes {
			if ht.Name == cd.HostType {
				hostType = &hostTypes[i]
				break
			}
		}
		if hostType == nil {
			return ComputeShape{}, fmt.Errorf(
				"%w: unknown host type %s", ErrInvalidComputeShape, cd.HostType,
			)
		}
		if model.MinGPUMemory <= 0 {
			return ComputeShape{}, fmt.Errorf(
				"%w: model %s has no GPU build", ErrInvalidComputeShape, model.ModelId,
			)
		}
		if hostType.GPUMemory < model.MinGPUMemory {
			return ComputeShape{}, fmt.Errorf(
				"%w: model %s requires at least %d MiB of GPU memory, but host type %s has %d MiB",
				ErrInvalidComputeShape, model.ModelId, model.MinGPUMemory, hostType.Name, hostType.GPUMemory,
			)
		}
		return ComputeShape{
			LaunchType: HostPool,
			HostType:   hostType.Name,
			GPUCount:   hostType.GPUCount,
			Constraints: []PlacementConstraint{
				{Attribute: HostTypeAttribute, Equals: hostType.Name},
			},
		}, nil

	default:
		return ComputeShape{}, fmt.Errorf(
			"%w: unknown compute mode '%s'", ErrInvalidComputeShape, cd.Mode,
		)
	}
}
