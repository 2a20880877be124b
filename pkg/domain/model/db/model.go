package db

import (
	"context"

	"github.com/harborml/berth/pkg/domain"
)

type Interface interface {
	// Retreive Model
	//
	// Args
	//
	// - context.Context
	//
	// - []string: modelIds
	//
	// Returns
	//
	// - map[string]Model: mapping modelId->Model.
	// Ids which are not found are just omitted from the map.
	//
	// - error
	Get(ctx context.Context, modelIds []string) (map[string]domain.Model, error)

	// list all modelIds in the catalog.
	//
	// Returns
	//
	// - []string: modelIds, in lexical order
	//
	// - error
	List(ctx context.Context) ([]string, error)
}
