package mock

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/harborml/berth/pkg/domain/berth/k8s/cluster"
	"github.com/harborml/berth/pkg/utils/retry"
	kubecore "k8s.io/api/core/v1"
)

type MockCluster struct {
	t    *testing.T
	Impl struct {
		Namespace func() string
		Domain    func() string
		NewPod    func(
			ctx context.Context, b retry.Backoff, spec *kubecore.Pod,
			requirements ...cluster.Requirement[*kubecore.Pod],
		) retry.Promise[cluster.Pod]
		GetPod func(
			ctx context.Context, b retry.Backoff, name string,
			requirements ...cluster.Requirement[*kubecore.Pod],
		) retry.Promise[cluster.Pod]
		FindPods func(
			ctx context.Context, selector cluster.LabelSelector,
		) ([]cluster.Pod, error)
	}
}

var _ cluster.Cluster = (*MockCluster)(nil)

func NewCluster(t *testing.T) *MockCluster {
	return &MockCluster{t: t}
}

func (m *MockCluster) Namespace() string {
	if m.Impl.Namespace == nil {
		m.t.Fatal("Namespace not implemented")
	}
	return m.Impl.Namespace()
}

func (m *MockCluster) Domain() string {
	if m.Impl.Domain == nil {
		m.t.Fatal("Domain not implemented")
	}
	return m.Impl.Domain()
}

func (m *MockCluster) NewPod(
	ctx context.Context, b retry.Backoff, spec *kubecore.Pod,
	requirements ...cluster.Requirement[*kubecore.Pod],
) retry.Promise[cluster.Pod] {
	if m.Impl.NewPod == nil {
		m.t.Fatal("NewPod not implemented")
	}
	return m.Impl.NewPod(ctx, b, spec, requirements...)
}

func (m *MockCluster) GetPod(
	ctx context.Context, b retry.Backoff, name string,
	requirements ...cluster.Requirement[*kubecore.Pod],
) retry.Promise[cluster.Pod] {
	if m.Impl.GetPod == nil {
		m.t.Fatal("GetPod not implemented")
	}
	return m.Impl.GetPod(ctx, b, name, requirements...)
}

func (m *MockCluster) FindPods(
	ctx context.Context, selector cluster.LabelSelector,
) ([]cluster.Pod, error) {
	if m.Impl.FindPods == nil {
		m.t.Fatal("FindPods not implemented")
	}
	return m.Impl.FindPods(ctx, selector)
}

type MockPod struct {
	t    *testing.T
	Impl struct {
		Name      func() string
		Status    func() cluster.PodPhase
		Host      func() string
		Ports     func() map[string]int32
		Labels    func() map[string]string
		CreatedAt func() time.Time
		Log       func(ctx context.Context, containerName string, follow bool) (io.ReadCloser, error)
		Close     func() error
	}
}

var _ cluster.Pod = (*MockPod)(nil)

func NewPod(t *testing.T) *MockPod {
	return &MockPod{t: t}
}

func (m *MockPod) Name() string {
	if m.Impl.Name == nil {
		m.t.Fatal("Name not implemented")
	}
	return m.Impl.Name()
}

func (m *MockPod) Status() cluster.PodPhase {
	if m.Impl.Status == nil {
		m.t.Fatal("Status not implemented")
	}
	return m.Impl.Status()
}

func (m *MockPod) Host() string {
	if m.Impl.Host == nil {
		m.t.Fatal("Host not implemented")
	}
	return m.Impl.Host()
}

func (m *MockPod) Ports() map[string]int32 {
	if m.Impl.Ports == nil {
		m.t.Fatal("Ports not implemented")
	}
	return m.Impl.Ports()
}

func (m *MockPod) Labels() map[string]string {
	if m.Impl.Labels == nil {
		m.t.Fatal("Labels not implemented")
	}
	return m.Impl.Labels()
}

func (m *MockPod) CreatedAt() time.Time {
	if m.Impl.CreatedAt == nil {
		m.t.Fatal("CreatedAt not implemented")
	}
	return m.Impl.CreatedAt()
}

func (m *MockPod) Log(ctx context.Context, containerName string, follow bool) (io.ReadCloser, error) {
	if m.Impl.Log == nil {
		m.t.Fatal("Log not implemented")
	}
	return m.Impl.Log(ctx, containerName, follow)
}

func (m *MockPod) Close() error {
	if m.Impl.Close == nil {
		m.t.Fatal("Close not implemented")
	}
	return m.Impl.Close()
}
