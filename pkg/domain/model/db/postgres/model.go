package postgres

import (
	"context"

	kpool "github.com/harborml/berth/pkg/conn/db/postgres/pool"
	"github.com/harborml/berth/pkg/conn/db/postgres/scanner"
	"github.com/harborml/berth/pkg/domain"
	kdb "github.com/harborml/berth/pkg/domain/model/db"
	kpgintr "github.com/harborml/berth/pkg/domain/internal/db/postgres"
)

// a struct for DB operations related to Model
type modelPG struct { // implements db.Interface
	pool kpool.Pool
}

func New(pool kpool.Pool) *modelPG {
	return &modelPG{pool: pool}
}

var _ kdb.Interface = &modelPG{}

func (m *modelPG) Get(ctx context.Context, modelIds []string) (map[string]domain.Model, error) {
	if len(modelIds) == 0 {
		return map[string]domain.Model{}, nil
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.GetModel(ctx, conn, modelIds)
}

func (m *modelPG) List(ctx context.Context) ([]string, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return scanner.New[string]().QueryAll(
		ctx, conn,
		`select "model_id" from "model" order by "model_id"`,
	)
}
