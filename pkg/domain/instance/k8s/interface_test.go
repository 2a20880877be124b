package k8s_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	bconf "github.com/harborml/berth/pkg/configs/backend"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/berth/k8s/cluster"
	"github.com/harborml/berth/pkg/domain/berth/k8s/cluster/mock"
	k8serrors "github.com/harborml/berth/pkg/domain/errors/k8serrors"
	ik8s "github.com/harborml/berth/pkg/domain/instance/k8s"
	"github.com/harborml/berth/pkg/utils/cmp"
	"github.com/harborml/berth/pkg/utils/retry"
	kubecore "k8s.io/api/core/v1"
)

func testConfig() *bconf.ClusterConfig {
	return bconf.TrySeal(&bconf.ClusterConfigMarshall{
		Namespace: "berth-test",
		Database:  "postgres://do-no-care",
		Auth:      &bconf.AuthConfigMarshall{SignKey: "ZG8tbm90LWNhcmU="},
		Instance:  &bconf.InstanceConfigMarshall{Port: 8501},
	})
}

func serverlessInstance(instanceId string) domain.Instance {
	return domain.Instance{
		InstanceBody: domain.InstanceBody{
			Id:     instanceId,
			Status: domain.Starting,
			Shape: domain.ComputeShape{
				LaunchType: domain.Serverless, CPU: 512, Memory: 2048,
			},
			ModelBody: domain.ModelBody{
				ModelId:  "test-model-id",
				ImageRef: "repo.invalid/model-image:1.0",
			},
		},
	}
}

func TestInterface_Schedule(t *testing.T) {

	type When struct {
		instance  domain.Instance
		errNewPod error
	}

	type Then struct {
		err            error
		schedulingFail bool
	}

	theory := func(when When, then Then) func(t *testing.T) {
		return func(t *testing.T) {
			kluster := mock.NewCluster(t)
			kluster.Impl.NewPod = func(
				ctx context.Context, b retry.Backoff, spec *kubecore.Pod,
				requirements ...cluster.Requirement[*kubecore.Pod],
			) retry.Promise[cluster.Pod] {
				if expected := "instance-" + when.instance.Id; spec.ObjectMeta.Name != expected {
					t.Errorf(
						"pod name: (actual, expected) = (%s, %s)",
						spec.ObjectMeta.Name, expected,
					)
				}
				if len(requirements) != 1 {
					t.Errorf("unexpected requirements: %d", len(requirements))
				}
				if when.errNewPod != nil {
					return retry.Failed[cluster.Pod](when.errNewPod)
				}
				pod := mock.NewPod(t)
				return retry.Ok[cluster.Pod](pod)
			}

			testee := ik8s.New(testConfig(), kluster)
			err := testee.Schedule(context.Background(), when.instance)

			if then.schedulingFail {
				if !errors.Is(err, domain.ErrSchedulingFailed) {
					t.Errorf("err = %v, want %v", err, domain.ErrSchedulingFailed)
				}
				return
			}
			if then.err == nil {
				if err != nil {
					t.Errorf("err = %v, want nil", err)
				}
			} else if !errors.Is(err, then.err) {
				t.Errorf("err = %v, want %v", err, then.err)
			}
		}
	}

	t.Run("when the cluster accepts the workload, it returns nil", theory(
		When{instance: serverlessInstance("test-instance-id")},
		Then{err: nil},
	))

	t.Run("when the workload is already in the cluster, it returns nil", theory(
		When{
			instance:  serverlessInstance("test-instance-id"),
			errNewPod: k8serrors.NewConflictCausedBy("", errors.New("fake conflict")),
		},
		Then{err: nil},
	))

	t.Run("when the cluster rejects the workload, it fails scheduling", theory(
		When{
			instance:  serverlessInstance("test-instance-id"),
			errNewPod: errors.New("fake rejection"),
		},
		Then{schedulingFail: true},
	))

	t.Run("when the context is cancelled, it exposes the cancel", theory(
		When{
			instance:  serverlessInstance("test-instance-id"),
			errNewPod: context.Canceled,
		},
		Then{err: context.Canceled},
	))

	t.Run("when an instance cannot be a workload, it fails scheduling without reaching the cluster", func(t *testing.T) {
		broken := serverlessInstance("test-instance-id")
		broken.Shape.CPU = 0

		// mock.Impl.NewPod is left nil. Calling it fails the test.
		testee := ik8s.New(testConfig(), mock.NewCluster(t))
		err := testee.Schedule(context.Background(), broken)

		if !errors.Is(err, domain.ErrSchedulingFailed) {
			t.Errorf("err = %v, want %v", err, domain.ErrSchedulingFailed)
		}
	})
}

func TestInterface_Teardown(t *testing.T) {

	t.Run("when the workload is found, it deletes the workload", func(t *testing.T) {
		closed := 0
		pod := mock.NewPod(t)
		pod.Impl.Close = func() error {
			closed += 1
			return nil
		}

		kluster := mock.NewCluster(t)
		kluster.Impl.GetPod = func(
			ctx context.Context, b retry.Backoff, name string,
			requirements ...cluster.Requirement[*kubecore.Pod],
		) retry.Promise[cluster.Pod] {
			if name != "instance-test-instance-id" {
				t.Errorf("pod name: %s", name)
			}
			return retry.Ok[cluster.Pod](pod)
		}

		testee := ik8s.New(testConfig(), kluster)
		if err := testee.Teardown(context.Background(), "test-instance-id"); err != nil {
			t.Errorf("err = %v, want nil", err)
		}
		if closed != 1 {
			t.Errorf("pod is closed %d times, want once", closed)
		}
	})

	t.Run("when the workload is gone already, it returns nil", func(t *testing.T) {
		kluster := mock.NewCluster(t)
		kluster.Impl.GetPod = func(
			ctx context.Context, b retry.Backoff, name string,
			requirements ...cluster.Requirement[*kubecore.Pod],
		) retry.Promise[cluster.Pod] {
			return retry.Failed[cluster.Pod](
				k8serrors.NewMissingCausedBy("", errors.New("fake not found")),
			)
		}

		testee := ik8s.New(testConfig(), kluster)
		if err := testee.Teardown(context.Background(), "test-instance-id"); err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	})

	t.Run("when the cluster fails, it exposes the error", func(t *testing.T) {
		wantErr := errors.New("fake error")
		kluster := mock.NewCluster(t)
		kluster.Impl.GetPod = func(
			ctx context.Context, b retry.Backoff, name string,
			requirements ...cluster.Requirement[*kubecore.Pod],
		) retry.Promise[cluster.Pod] {
			return retry.Failed[cluster.Pod](wantErr)
		}

		testee := ik8s.New(testConfig(), kluster)
		if err := testee.Teardown(context.Background(), "test-instance-id"); !errors.Is(err, wantErr) {
			t.Errorf("err = %v, want %v", err, wantErr)
		}
	})
}

func TestInterface_Health(t *testing.T) {

	type When struct {
		missing bool
		phase   cluster.PodPhase
		host    string
	}

	type Then struct {
		report ik8s.Report
	}

	theory := func(when When, then Then) func(t *testing.T) {
		return func(t *testing.T) {
			kluster := mock.NewCluster(t)
			kluster.Impl.GetPod = func(
				ctx context.Context, b retry.Backoff, name string,
				requirements ...cluster.Requirement[*kubecore.Pod],
			) retry.Promise[cluster.Pod] {
				if when.missing {
					return retry.Failed[cluster.Pod](
						k8serrors.NewMissingCausedBy("", errors.New("fake not found")),
					)
				}
				pod := mock.NewPod(t)
				pod.Impl.Status = func() cluster.PodPhase { return when.phase }
				pod.Impl.Host = func() string { return when.host }
				return retry.Ok[cluster.Pod](pod)
			}

			testee := ik8s.New(testConfig(), kluster)
			report, err := testee.Health(context.Background(), "test-instance-id")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if report != then.report {
				t.Errorf("report: (actual, expected) = (%+v, %+v)", report, then.report)
			}
		}
	}

	t.Run("when no workload is found, the instance is gone", theory(
		When{missing: true},
		Then{report: ik8s.Report{Health: ik8s.Gone}},
	))

	t.Run("when the workload is running on a host, the instance is healthy", theory(
		When{phase: cluster.PodRunning, host: "10.0.0.1"},
		Then{report: ik8s.Report{
			Health:   ik8s.Healthy,
			Endpoint: "http://10.0.0.1:8501",
		}},
	))

	t.Run("when the workload runs but has no host yet, the instance is pending", theory(
		When{phase: cluster.PodRunning, host: ""},
		Then{report: ik8s.Report{Health: ik8s.Pending}},
	))

	t.Run("when the workload is waiting for a node, the instance is pending", theory(
		When{phase: cluster.PodPending},
		Then{report: ik8s.Report{Health: ik8s.Pending}},
	))

	t.Run("when the workload has exited, the instance is gone", theory(
		When{phase: cluster.PodSucceeded},
		Then{report: ik8s.Report{Health: ik8s.Gone}},
	))

	t.Run("when the workload has crashed out, the instance is gone", theory(
		When{phase: cluster.PodFailed},
		Then{report: ik8s.Report{Health: ik8s.Gone}},
	))
}

func TestInterface_Log(t *testing.T) {

	t.Run("when the workload is found, it streams the log of the model container", func(t *testing.T) {
		payload := "model log lines"

		pod := mock.NewPod(t)
		pod.Impl.Log = func(ctx context.Context, containerName string, follow bool) (io.ReadCloser, error) {
			if containerName != "main" {
				t.Errorf("container: (actual, expected) = (%s, main)", containerName)
			}
			if !follow {
				t.Errorf("follow: (actual, expected) = (%t, true)", follow)
			}
			return io.NopCloser(bytes.NewBufferString(payload)), nil
		}

		kluster := mock.NewCluster(t)
		kluster.Impl.GetPod = func(
			ctx context.Context, b retry.Backoff, name string,
			requirements ...cluster.Requirement[*kubecore.Pod],
		) retry.Promise[cluster.Pod] {
			return retry.Ok[cluster.Pod](pod)
		}

		testee := ik8s.New(testConfig(), kluster)
		stream, err := testee.Log(context.Background(), "test-instance-id", true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer stream.Close()

		actual, err := io.ReadAll(stream)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(actual) != payload {
			t.Errorf("log: (actual, expected) = (%s, %s)", string(actual), payload)
		}
	})

	t.Run("when no workload is found, it exposes the missing error", func(t *testing.T) {
		kluster := mock.NewCluster(t)
		kluster.Impl.GetPod = func(
			ctx context.Context, b retry.Backoff, name string,
			requirements ...cluster.Requirement[*kubecore.Pod],
		) retry.Promise[cluster.Pod] {
			return retry.Failed[cluster.Pod](
				k8serrors.NewMissingCausedBy("", errors.New("fake not found")),
			)
		}

		testee := ik8s.New(testConfig(), kluster)
		if _, err := testee.Log(context.Background(), "test-instance-id", false); !k8serrors.AsMissingError(err) {
			t.Errorf("err = %v, want missing error", err)
		}
	})
}

func TestInterface_Deployed(t *testing.T) {

	t.Run("it maps instance workloads in the cluster to instance ids", func(t *testing.T) {
		created1 := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
		created2 := time.Date(2026, 4, 2, 13, 30, 0, 0, time.UTC)

		newPod := func(labels map[string]string, createdAt time.Time) cluster.Pod {
			p := mock.NewPod(t)
			p.Impl.Labels = func() map[string]string { return labels }
			p.Impl.CreatedAt = func() time.Time { return createdAt }
			return p
		}

		kluster := mock.NewCluster(t)
		kluster.Impl.FindPods = func(
			ctx context.Context, selector cluster.LabelSelector,
		) ([]cluster.Pod, error) {
			expected := cluster.LabelSelector{
				"app.kubernetes.io/part-of":   "berth",
				"app.kubernetes.io/component": "instance",
			}
			if !cmp.MapEq(map[string]string(selector), map[string]string(expected)) {
				t.Errorf(
					"selector: (actual, expected) = (%+v, %+v)",
					selector, expected,
				)
			}
			return []cluster.Pod{
				newPod(map[string]string{ik8s.LabelInstanceId: "instance-1"}, created1),
				newPod(map[string]string{ik8s.LabelInstanceId: "instance-2"}, created2),
				newPod(map[string]string{"unrelated": "pod"}, created1),
			}, nil
		}

		testee := ik8s.New(testConfig(), kluster)
		actual, err := testee.Deployed(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := map[string]time.Time{
			"instance-1": created1,
			"instance-2": created2,
		}
		if !cmp.MapEqWith(actual, expected, func(a, b time.Time) bool { return a.Equal(b) }) {
			t.Errorf(
				"deployed: (actual, expected) = (%+v, %+v)",
				actual, expected,
			)
		}
	})

	t.Run("when the cluster fails, it exposes the error", func(t *testing.T) {
		wantErr := errors.New("fake error")
		kluster := mock.NewCluster(t)
		kluster.Impl.FindPods = func(
			ctx context.Context, selector cluster.LabelSelector,
		) ([]cluster.Pod, error) {
			return nil, wantErr
		}

		testee := ik8s.New(testConfig(), kluster)
		if _, err := testee.Deployed(context.Background()); !errors.Is(err, wantErr) {
			t.Errorf("err = %v, want %v", err, wantErr)
		}
	})
}
