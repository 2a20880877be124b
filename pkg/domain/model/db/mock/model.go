package mock

import (
	"context"
	"errors"

	"github.com/harborml/berth/pkg/domain"
	dbmock "github.com/harborml/berth/pkg/domain/internal/db/mock"
	kdb "github.com/harborml/berth/pkg/domain/model/db"
)

type ModelInterface struct {
	Impl struct {
		Get  func(ctx context.Context, modelIds []string) (map[string]domain.Model, error)
		List func(ctx context.Context) ([]string, error)
	}

	Calls struct {
		Get  dbmock.CallLog[[]string]
		List dbmock.CallLog[struct{}]
	}
}

func NewModelInterface() *ModelInterface {
	return &ModelInterface{}
}

var _ kdb.Interface = &ModelInterface{}

func (m *ModelInterface) Get(ctx context.Context, modelIds []string) (map[string]domain.Model, error) {
	m.Calls.Get = append(m.Calls.Get, modelIds)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, modelIds)
	}

	panic(errors.New("it should not be called"))
}

func (m *ModelInterface) List(ctx context.Context) ([]string, error) {
	m.Calls.List = append(m.Calls.List, struct{}{})
	if m.Impl.List != nil {
		return m.Impl.List(ctx)
	}

	panic(errors.New("it should not be called"))
}
