package instances

import (
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/utils/rfctime"
)

// ComputeSpec is the compute a deploy request asks for.
type ComputeSpec struct {
	Mode string `json:"mode"`

	// cpu units (1024 = 1 vCPU). For mode "pooled-cpu".
	CPU int `json:"cpu,omitempty"`

	// memory in MiB. For mode "pooled-cpu".
	Memory int `json:"memory,omitempty"`

	// host type name. For mode "pooled-gpu".
	HostType string `json:"hostType,omitempty"`
}

func (c ComputeSpec) Descriptor() (domain.ComputeDescriptor, error) {
	mode, err := domain.AsComputeMode(c.Mode)
	if err != nil {
		return domain.ComputeDescriptor{}, err
	}
	return domain.ComputeDescriptor{
		Mode:     mode,
		CPU:      c.CPU,
		Memory:   c.Memory,
		HostType: c.HostType,
	}, nil
}

// InstanceSpec is the body of a deploy request.
type InstanceSpec struct {
	ModelId string      `json:"modelId"`
	Name    string      `json:"name,omitempty"`
	Compute ComputeSpec `json:"compute"`
}

type Failure struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

func (f *Failure) Equal(o *Failure) bool {
	if f == nil || o == nil {
		return (f == nil) && (o == nil)
	}
	return f.Reason == o.Reason && f.Message == o.Message
}

type Summary struct {
	InstanceId string          `json:"instanceId"`
	ModelId    string          `json:"modelId"`
	Name       string          `json:"name,omitempty"`
	OwnerId    string          `json:"ownerId"`
	Status     string          `json:"status"`
	UpdatedAt  rfctime.RFC3339 `json:"updatedAt"`
}

func ComposeSummary(i domain.InstanceBody) Summary {
	return Summary{
		InstanceId: i.Id,
		ModelId:    i.ModelId,
		Name:       i.Name,
		OwnerId:    i.OwnerId,
		Status:     string(i.Status),
		UpdatedAt:  rfctime.RFC3339(i.UpdatedAt),
	}
}

func (s *Summary) Equal(o *Summary) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return s.InstanceId == o.InstanceId &&
		s.ModelId == o.ModelId &&
		s.Name == o.Name &&
		s.OwnerId == o.OwnerId &&
		s.Status == o.Status &&
		s.UpdatedAt.Equal(&o.UpdatedAt)
}

// Compute is the resolved shape an instance runs with.
type Compute struct {
	LaunchType string `json:"launchType"`
	CPU        int    `json:"cpu,omitempty"`
	Memory     int    `json:"memory,omitempty"`
	HostType   string `json:"hostType,omitempty"`
	GPUCount   int    `json:"gpuCount,omitempty"`
}

func (c Compute) Equal(o Compute) bool {
	return c == o
}

type Detail struct {
	Summary
	Compute Compute `json:"compute"`

	// URL serving the model API. Non-empty only when the instance is running.
	Endpoint string `json:"endpoint,omitempty"`

	// Estimated price of keeping this instance up for an hour.
	CostPerHour float64 `json:"costPerHour"`

	Failure *Failure `json:"failure,omitempty"`

	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

func ComposeDetail(
	i domain.Instance,
	rates domain.ServerlessRates,
	hostTypes []domain.HostType,
) Detail {
	var failure *Failure
	if f := i.Failure; f != nil {
		failure = &Failure{
			Reason:  string(f.Reason),
			Message: f.Message,
		}
	}

	return Detail{
		Summary: ComposeSummary(i.InstanceBody),
		Compute: Compute{
			LaunchType: string(i.Shape.LaunchType),
			CPU:        i.Shape.CPU,
			Memory:     i.Shape.Memory,
			HostType:   i.Shape.HostType,
			GPUCount:   i.Shape.GPUCount,
		},
		Endpoint:    i.Endpoint,
		CostPerHour: i.Shape.CostPerHour(rates, hostTypes),
		Failure:     failure,
		CreatedAt:   rfctime.RFC3339(i.CreatedAt),
	}
}

func (d *Detail) Equal(o *Detail) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.Summary.Equal(&o.Summary) &&
		d.Compute.Equal(o.Compute) &&
		d.Endpoint == o.Endpoint &&
		d.CostPerHour == o.CostPerHour &&
		d.Failure.Equal(o.Failure) &&
		d.CreatedAt.Equal(&o.CreatedAt)
}
