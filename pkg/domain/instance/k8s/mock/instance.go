package mock

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/instance/k8s"
)

type MockInstanceInterface struct {
	t    *testing.T
	Impl struct {
		Schedule func(ctx context.Context, instance domain.Instance) error
		Teardown func(ctx context.Context, instanceId string) error
		Health   func(ctx context.Context, instanceId string) (k8s.Report, error)
		Log      func(ctx context.Context, instanceId string, follow bool) (io.ReadCloser, error)
		Deployed func(ctx context.Context) (map[string]time.Time, error)
	}
}

var _ k8s.Interface = &MockInstanceInterface{}

func New(t *testing.T) *MockInstanceInterface {
	return &MockInstanceInterface{
		t: t,
	}
}

func (m *MockInstanceInterface) Schedule(ctx context.Context, instance domain.Instance) error {
	if m.Impl.Schedule == nil {
		m.t.Fatal("Schedule is not implemented")
	}
	return m.Impl.Schedule(ctx, instance)
}

func (m *MockInstanceInterface) Teardown(ctx context.Context, instanceId string) error {
	if m.Impl.Teardown == nil {
		m.t.Fatal("Teardown is not implemented")
	}
	return m.Impl.Teardown(ctx, instanceId)
}

func (m *MockInstanceInterface) Health(ctx context.Context, instanceId string) (k8s.Report, error) {
	if m.Impl.Health == nil {
		m.t.Fatal("Health is not implemented")
	}
	return m.Impl.Health(ctx, instanceId)
}

func (m *MockInstanceInterface) Log(ctx context.Context, instanceId string, follow bool) (io.ReadCloser, error) {
	if m.Impl.Log == nil {
		m.t.Fatal("Log is not implemented")
	}
	return m.Impl.Log(ctx, instanceId, follow)
}

func (m *MockInstanceInterface) Deployed(ctx context.Context) (map[string]time.Time, error) {
	if m.Impl.Deployed == nil {
		m.t.Fatal("Deployed is not implemented")
	}
	return m.Impl.Deployed(ctx)
}
