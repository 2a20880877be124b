package postgres

import (
	"context"

	kpool "github.com/harborml/berth/pkg/conn/db/postgres/pool"
	"github.com/harborml/berth/pkg/domain"
)

// get ModelBody by modelId
//
// # Args
//
// - context.Context
//
// - Queryer
//
// - []string : modelIds to query
//
// # Return
//
// - map[string]domain.ModelBody : mapping from modelId to ModelBody.
// Ids which are not found are just omitted.
//
// - error
func GetModelBody(ctx context.Context, conn kpool.Queryer, modelIds []string) (map[string]domain.ModelBody, error) {
	result := map[string]domain.ModelBody{}
	rows, err := conn.Query(
		ctx,
		`
		select
			"model_id", "name", "image_ref",
			"min_cpu", "min_memory", "min_gpu_memory"
		from "model"
		where "model_id" = ANY($1)
		`,
		modelIds,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var mb domain.ModelBody
		if err := rows.Scan(
			&mb.ModelId, &mb.ModelName, &mb.ImageRef,
			&mb.MinCPU, &mb.MinMemory, &mb.MinGPUMemory,
		); err != nil {
			return nil, err
		}
		result[mb.ModelId] = mb
	}

	return result, nil
}

// get Model, with its catalog description, by modelId
func GetModel(ctx context.Context, conn kpool.Queryer, modelIds []string) (map[string]domain.Model, error) {
	result := map[string]domain.Model{}
	rows, err := conn.Query(
		ctx,
		`
		select
			"model_id", "name", "image_ref",
			"min_cpu", "min_memory", "min_gpu_memory",
			"description"
		from "model"
		where "model_id" = ANY($1)
		`,
		modelIds,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Model
		if err := rows.Scan(
			&m.ModelId, &m.ModelName, &m.ImageRef,
			&m.MinCPU, &m.MinMemory, &m.MinGPUMemory,
			&m.Description,
		); err != nil {
			return nil, err
		}
		result[m.ModelId] = m
	}

	return result, nil
}
