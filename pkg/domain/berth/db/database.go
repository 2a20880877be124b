package db

import (
	kinstance "github.com/harborml/berth/pkg/domain/instance/db"
	kmodel "github.com/harborml/berth/pkg/domain/model/db"
	kschema "github.com/harborml/berth/pkg/domain/schema/db"
)

type BerthDatabase interface {
	Instance() kinstance.Interface
	Model() kmodel.Interface
	Schema() kschema.SchemaInterface
	Close() error
}
