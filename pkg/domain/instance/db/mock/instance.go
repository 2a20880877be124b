package mock

import (
	"context"
	"errors"
	"time"

	"github.com/harborml/berth/pkg/domain"
	kdb "github.com/harborml/berth/pkg/domain/instance/db"
	dbmock "github.com/harborml/berth/pkg/domain/internal/db/mock"
)

type InstanceInterface struct {
	Impl struct {
		Register         func(ctx context.Context, instance domain.Instance) error
		Get              func(ctx context.Context, instanceIds []string) (map[string]domain.Instance, error)
		Find             func(ctx context.Context, query domain.InstanceFindQuery) ([]string, error)
		SetStatus        func(ctx context.Context, instanceId string, change kdb.StatusChange) error
		PickAndSetStatus func(ctx context.Context, cursor domain.InstanceCursor, task func(domain.Instance) (kdb.StatusChange, error)) (domain.InstanceCursor, bool, error)
		CountActive      func(ctx context.Context, ownerId string) (int, error)
		KnownIds         func(ctx context.Context) ([]string, error)
		PurgeExpired     func(ctx context.Context, now time.Time) ([]string, error)
	}

	Calls struct {
		Register  dbmock.CallLog[domain.Instance]
		Get       dbmock.CallLog[[]string]
		Find      dbmock.CallLog[domain.InstanceFindQuery]
		SetStatus dbmock.CallLog[struct {
			InstanceId string
			Change     kdb.StatusChange
		}]
		PickAndSetStatus dbmock.CallLog[domain.InstanceCursor]
		CountActive      dbmock.CallLog[string]
		KnownIds         dbmock.CallLog[struct{}]
		PurgeExpired     dbmock.CallLog[time.Time]
	}
}

func NewInstanceInterface() *InstanceInterface {
	return &InstanceInterface{}
}

var _ kdb.Interface = &InstanceInterface{}

func (m *InstanceInterface) Register(ctx context.Context, instance domain.Instance) error {
	m.Calls.Register = append(m.Calls.Register, instance)
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, instance)
	}

	panic(errors.New("it should not be called"))
}

func (m *InstanceInterface) Get(ctx context.Context, instanceIds []string) (map[string]domain.Instance, error) {
	m.Calls.Get = append(m.Calls.Get, instanceIds)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, instanceIds)
	}

	panic(errors.New("it should not be called"))
}

func (m *InstanceInterface) Find(ctx context.Context, query domain.InstanceFindQuery) ([]string, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}

	panic(errors.New("it should not be called"))
}

func (m *InstanceInterface) SetStatus(ctx context.Context, instanceId string, change kdb.StatusChange) error {
	m.Calls.SetStatus = append(m.Calls.SetStatus, struct {
		InstanceId string
		Change     kdb.StatusChange
	}{
		InstanceId: instanceId,
		Change:     change,
	})
	if m.Impl.SetStatus != nil {
		return m.Impl.SetStatus(ctx, instanceId, change)
	}

	panic(errors.New("it should not be called"))
}

func (m *InstanceInterface) PickAndSetStatus(
	ctx context.Context,
	cursor domain.InstanceCursor,
	task func(domain.Instance) (kdb.StatusChange, error),
) (domain.InstanceCursor, bool, error) {
	m.Calls.PickAndSetStatus = append(m.Calls.PickAndSetStatus, cursor)
	if m.Impl.PickAndSetStatus != nil {
		return m.Impl.PickAndSetStatus(ctx, cursor, task)
	}

	panic(errors.New("it should not be called"))
}

func (m *InstanceInterface) CountActive(ctx context.Context, ownerId string) (int, error) {
	m.Calls.CountActive = append(m.Calls.CountActive, ownerId)
	if m.Impl.CountActive != nil {
		return m.Impl.CountActive(ctx, ownerId)
	}

	panic(errors.New("it should not be called"))
}

func (m *InstanceInterface) KnownIds(ctx context.Context) ([]string, error) {
	m.Calls.KnownIds = append(m.Calls.KnownIds, struct{}{})
	if m.Impl.KnownIds != nil {
		return m.Impl.KnownIds(ctx)
	}

	panic(errors.New("it should not be called"))
}

func (m *InstanceInterface) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	m.Calls.PurgeExpired = append(m.Calls.PurgeExpired, now)
	if m.Impl.PurgeExpired != nil {
		return m.Impl.PurgeExpired(ctx, now)
	}

	panic(errors.New("it should not be called"))
}
