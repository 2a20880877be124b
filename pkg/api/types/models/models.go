package models

import (
	"github.com/harborml/berth/pkg/domain"
)

type Summary struct {
	ModelId string `json:"modelId"`
	Name    string `json:"name"`

	// minimum cpu units (1024 = 1 vCPU) a deployment must reserve.
	MinCPU int `json:"minCpu"`

	// minimum memory in MiB a deployment must reserve.
	MinMemory int `json:"minMemory"`

	// minimum GPU memory in MiB. Zero for CPU-only models.
	MinGPUMemory int `json:"minGpuMemory,omitempty"`
}

func ComposeSummary(m domain.ModelBody) Summary {
	return Summary{
		ModelId:      m.ModelId,
		Name:         m.ModelName,
		MinCPU:       m.MinCPU,
		MinMemory:    m.MinMemory,
		MinGPUMemory: m.MinGPUMemory,
	}
}

func (s *Summary) Equal(o *Summary) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return *s == *o
}

type Detail struct {
	Summary
	ImageRef    string `json:"imageRef"`
	Description string `json:"description,omitempty"`
}

func ComposeDetail(m domain.Model) Detail {
	return Detail{
		Summary:     ComposeSummary(m.ModelBody),
		ImageRef:    m.ImageRef,
		Description: m.Description,
	}
}

func (d *Detail) Equal(o *Detail) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.Summary.Equal(&o.Summary) &&
		d.ImageRef == o.ImageRef &&
		d.Description == o.Description
}
