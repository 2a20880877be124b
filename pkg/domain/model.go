package domain

// Core part of Model, a catalog entry of a deployable packaged model.
type ModelBody struct {
	ModelId string

	// Human readable name, like "Llama 2 7B".
	ModelName string

	// Container image reference serving this model.
	ImageRef string

	// Minimum cpu units (1024 = 1 vCPU) for serverless deployment.
	MinCPU int

	// Minimum memory in MiB for serverless deployment.
	MinMemory int

	// Minimum GPU memory in MiB for host-pool deployment.
	//
	// Zero means this model has no GPU build and cannot be deployed on a GPU pool.
	MinGPUMemory int
}

func (mb *ModelBody) Equal(o *ModelBody) bool {
	if (mb == nil) || (o == nil) {
		return (mb == nil) && (o == nil)
	}
	return mb.ModelId == o.ModelId &&
		mb.ModelName == o.ModelName &&
		mb.ImageRef == o.ImageRef &&
		mb.MinCPU == o.MinCPU &&
		mb.MinMemory == o.MinMemory &&
		mb.MinGPUMemory == o.MinGPUMemory
}

type Model struct {
	ModelBody

	// Catalog description for listings.
	Description string
}

func (m *Model) Equal(other *Model) bool {
	if (m == nil) || (other == nil) {
		return (m == nil) && (other == nil)
	}
	return m.ModelBody.Equal(&other.ModelBody) &&
		m.Description == other.Description
}
