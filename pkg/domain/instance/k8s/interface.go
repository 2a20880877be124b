package k8s

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	bconf "github.com/harborml/berth/pkg/configs/backend"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/berth/k8s/cluster"
	k8serrors "github.com/harborml/berth/pkg/domain/errors/k8serrors"
	"github.com/harborml/berth/pkg/utils/retry"
	kubecore "k8s.io/api/core/v1"
)

// Health of an instance workload as the cluster reports it.
type Health string

const (
	// The workload is accepted by the cluster but not serving yet.
	Pending Health = "pending"

	// The workload is up and serving.
	Healthy Health = "healthy"

	// No workload is found in the cluster, or it has terminated.
	Gone Health = "gone"
)

// Report is a snapshot of an instance workload observed in the cluster.
type Report struct {
	Health Health

	// URL where the workload serves. Non-empty only when Health is Healthy.
	Endpoint string
}

type Interface interface {
	// Schedule places the workload of the instance into the cluster.
	//
	// Scheduling the same instance twice is a no-op,
	// so retried deployments do not duplicate workloads.
	//
	// # Returns
	//
	// - error: domain.ErrSchedulingFailed when the cluster rejects the
	// workload. Such a rejection writes nothing to the cluster.
	Schedule(ctx context.Context, instance domain.Instance) error

	// Teardown removes the workload of the instance from the cluster.
	//
	// Tearing down an instance which has no workload is a no-op.
	Teardown(ctx context.Context, instanceId string) error

	// Health reports how the workload of the instance is doing,
	// with its endpoint when it is serving.
	Health(ctx context.Context, instanceId string) (Report, error)

	// Log streams the log of the model container of the instance.
	//
	// # Returns
	//
	// - io.ReadCloser: the log stream. Caller should Close it.
	//
	// - error: k8serrors.ErrMissing when the instance has no workload.
	Log(ctx context.Context, instanceId string, follow bool) (io.ReadCloser, error)

	// Deployed lists instance ids which have workloads in the cluster,
	// with the creation time of each workload.
	//
	// Sweepers diff these ids against the record store to find orphans.
	Deployed(ctx context.Context) (map[string]time.Time, error)
}

type impl struct {
	cluster cluster.Cluster
	conf    *bconf.ClusterConfig
}

func New(conf *bconf.ClusterConfig, cluster cluster.Cluster) Interface {
	return &impl{cluster: cluster, conf: conf}
}

func (i *impl) Schedule(ctx context.Context, instance domain.Instance) error {
	w, err := NewWorkload(instance)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrSchedulingFailed, err)
	}

	ppod := <-i.cluster.NewPod(
		ctx,
		retry.StaticBackoff(200*time.Millisecond),
		w.Build(i.conf),
		cluster.PodHasBeenPending,
	)
	if err := ppod.Err; err != nil {
		if k8serrors.AsConflict(err) {
			// the workload is already there.
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %s", domain.ErrSchedulingFailed, err)
	}
	return nil
}

func (i *impl) Teardown(ctx context.Context, instanceId string) error {
	ppod := <-i.cluster.GetPod(
		ctx, retry.StaticBackoff(50*time.Millisecond), podName(instanceId),
		func(*kubecore.Pod) error { return nil }, // whichever phase it is in
	)
	if err := ppod.Err; err != nil {
		if k8serrors.AsMissingError(err) {
			return nil
		}
		return err
	}
	return ppod.Value.Close()
}

func (i *impl) Health(ctx context.Context, instanceId string) (Report, error) {
	ppod := <-i.cluster.GetPod(
		ctx, retry.StaticBackoff(50*time.Millisecond), podName(instanceId),
		func(*kubecore.Pod) error { return nil }, // whichever phase it is in
	)
	if err := ppod.Err; err != nil {
		if k8serrors.AsMissingError(err) {
			return Report{Health: Gone}, nil
		}
		return Report{}, err
	}

	pod := ppod.Value
	switch pod.Status() {
	case cluster.PodRunning:
		host := pod.Host()
		if host == "" {
			return Report{Health: Pending}, nil
		}
		return Report{
			Health:   Healthy,
			Endpoint: fmt.Sprintf("http://%s:%d", host, i.conf.Instance().Port()),
		}, nil
	case cluster.PodSucceeded, cluster.PodFailed:
		return Report{Health: Gone}, nil
	default:
		return Report{Health: Pending}, nil
	}
}

func (i *impl) Log(ctx context.Context, instanceId string, follow bool) (io.ReadCloser, error) {
	ppod := <-i.cluster.GetPod(
		ctx, retry.StaticBackoff(50*time.Millisecond), podName(instanceId),
		func(*kubecore.Pod) error { return nil }, // whichever phase it is in
	)
	if err := ppod.Err; err != nil {
		return nil, err
	}
	return ppod.Value.Log(ctx, containerMain, follow)
}

func (i *impl) Deployed(ctx context.Context) (map[string]time.Time, error) {
	pods, err := i.cluster.FindPods(ctx, cluster.LabelSelector{
		"app.kubernetes.io/part-of":   "berth",
		"app.kubernetes.io/component": "instance",
	})
	if err != nil {
		return nil, err
	}

	found := map[string]time.Time{}
	for _, p := range pods {
		id, ok := p.Labels()[LabelInstanceId]
		if !ok {
			continue
		}
		found[id] = p.CreatedAt()
	}
	return found, nil
}
