package postgres

import (
	"context"
	"time"

	kpool "github.com/harborml/berth/pkg/conn/db/postgres/pool"
	dbInterface "github.com/harborml/berth/pkg/domain/berth/db"
	kinstance "github.com/harborml/berth/pkg/domain/instance/db"
	kpginstance "github.com/harborml/berth/pkg/domain/instance/db/postgres"
	kmodel "github.com/harborml/berth/pkg/domain/model/db"
	kpgmodel "github.com/harborml/berth/pkg/domain/model/db/postgres"
	kschema "github.com/harborml/berth/pkg/domain/schema/db"
	kpgschema "github.com/harborml/berth/pkg/domain/schema/db/postgres"
	xe "github.com/harborml/berth/pkg/errors"
	"github.com/jackc/pgx/v4/pgxpool"
)

type berthDBPostgres struct {
	pool     *pgxpool.Pool
	instance kinstance.Interface
	model    kmodel.Interface
	schema   kschema.SchemaInterface
}

type Config struct {
	InstanceRetention time.Duration
	SchemaRepository  string
}

func DefaultConfig() Config {
	return Config{
		InstanceRetention: 24 * time.Hour,
	}
}

type Option func(*Config) *Config

func WithInstanceRetention(retention time.Duration) Option {
	return func(c *Config) *Config {
		c.InstanceRetention = retention
		return c
	}
}

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

func New(
	ctx context.Context,
	url string,
	options ...Option,
) (dbInterface.BerthDatabase, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}

	p := kpool.Wrap(pool)
	var schema kschema.SchemaInterface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(p, c.SchemaRepository)
	}

	return &berthDBPostgres{
		pool:     pool,
		instance: kpginstance.New(p, kpginstance.WithRetention(c.InstanceRetention)),
		model:    kpgmodel.New(p),
		schema:   schema,
	}, nil
}

func (b *berthDBPostgres) Instance() kinstance.Interface {
	return b.instance
}

func (b *berthDBPostgres) Model() kmodel.Interface {
	return b.model
}

func (b *berthDBPostgres) Schema() kschema.SchemaInterface {
	return b.schema
}

func (b *berthDBPostgres) Close() error {
	b.pool.Close()
	return nil
}
