package startup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harborml/berth/cmd/loops/hook"
	"github.com/harborml/berth/cmd/loops/recurring"
	api_instances "github.com/harborml/berth/pkg/api/types/instances"
	"github.com/harborml/berth/pkg/domain"
	kdbinstance "github.com/harborml/berth/pkg/domain/instance/db"
	k8sinstance "github.com/harborml/berth/pkg/domain/instance/k8s"
)

// initial value for task
func Seed() domain.InstanceCursor {
	return domain.InstanceCursor{
		Status:   []domain.InstanceStatus{domain.Starting},
		Debounce: 30 * time.Second,
	}
}

// Task for the startup loop.
//
// It watches starting instances until their workloads report healthy, and
// records them as running with the endpoint. An instance which is not
// healthy within the startup grace is recorded as error.
//
// # Params
//
// - iDbInstance: instance records in database
//
// - iK8sInstance: instance workloads on the cluster
//
// - grace: how long an instance may stay starting, counted from its creation
//
// - compose: build the webhook payload from an instance
//
// - hook: hooks invoked around the status transition
//
// # Return
//
// - task: promote starting instance to running.
func Task(
	iDbInstance kdbinstance.Interface,
	iK8sInstance k8sinstance.Interface,
	grace time.Duration,
	compose func(domain.Instance) api_instances.Detail,
	hook hook.Hook[api_instances.Detail, struct{}],
) recurring.Task[domain.InstanceCursor] {
	return func(ctx context.Context, cursor domain.InstanceCursor) (domain.InstanceCursor, bool, error) {
		nextCursor, statusChanged, err := iDbInstance.PickAndSetStatus(
			ctx, cursor,
			func(target domain.Instance) (kdbinstance.StatusChange, error) {
				noChange := kdbinstance.StatusChange{Status: target.Status}

				if _, err := hook.Before(compose(target)); err != nil {
					return noChange, err
				}

				report, err := iK8sInstance.Health(ctx, target.Id)
				if err != nil {
					return noChange, err
				}

				if report.Health == k8sinstance.Healthy {
					return kdbinstance.StatusChange{
						Status:   domain.Running,
						Endpoint: report.Endpoint,
					}, nil
				}

				// pending, or gone before getting healthy. Wait more, unless it is too late.
				if time.Now().Before(target.CreatedAt.Add(grace)) {
					return noChange, nil
				}

				return kdbinstance.StatusChange{
					Status: domain.Errored,
					Failure: &domain.InstanceFailure{
						Reason:  domain.StartupTimeout,
						Message: fmt.Sprintf("not healthy in %s", grace),
					},
				}, nil
			},
		)

		if statusChanged {
			if instances, _ := iDbInstance.Get(ctx, []string{nextCursor.Head}); instances != nil {
				if i, ok := instances[nextCursor.Head]; ok {
					hook.After(compose(i))
				}
			}
		}

		cursorMoved := !cursor.Equal(nextCursor)
		// Context cancelled/deadline exceeded are okay. It will be retried.
		if err != nil && !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return nextCursor, cursorMoved, err
		}
		return nextCursor, cursorMoved, nil
	}
}
