package teardown

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
		Status:   []domain.InstanceStatus{domain.Stopping},
		Debounce: 30 * time.Second,
	}
}

// Task for the teardown loop.
//
// It watches stopping instances until their workloads are gone from the
// cluster, and records them as stopped. While the workload remains within
// the teardown grace, the removal is told to the cluster again. An instance
// whose workload remains after the grace is recorded as error, and the
// alert hook is notified.
//
// # Params
//
// - iDbInstance: instance records in database
//
// - iK8sInstance: instance workloads on the cluster
//
// - grace: how long an instance may stay stopping, counted from its last update
//
// - compose: build the webhook payload from an instance
//
// - hook: hooks invoked around the status transition
//
// - alert: hook notified (as "after" hook) when an instance is recorded as error
//
// # Return
//
// - task: let the stopping instance be stopped.
func Task(
	iDbInstance kdbinstance.Interface,
	iK8sInstance k8sinstance.Interface,
	grace time.Duration,
	compose func(domain.Instance) api_instances.Detail,
	hook hook.Hook[api_instances.Detail, struct{}],
	alert hook.Hook[api_instances.Detail, struct{}],
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

				if report.Health == k8sinstance.Gone {
					return kdbinstance.StatusChange{Status: domain.Stopped}, nil
				}

				// the workload is still there.
				if time.Now().Before(target.UpdatedAt.Add(grace)) {
					// tell the cluster to remove it, again.
					if err := iK8sInstance.Teardown(ctx, target.Id); err != nil {
						return noChange, err
					}
					return noChange, nil
				}

				return kdbinstance.StatusChange{
					Status: domain.Errored,
					Failure: &domain.InstanceFailure{
						Reason:  domain.TeardownTimeout,
						Message: fmt.Sprintf("not gone in %s", grace),
					},
				}, nil
			},
		)

		if statusChanged {
			if instances, _ := iDbInstance.Get(ctx, []string{nextCursor.Head}); instances != nil {
				if i, ok := instances[nextCursor.Head]; ok {
					detail := compose(i)
					hook.After(detail)
					if i.Status == domain.Errored {
						// operators should know. Failing to notify is not fatal, though.
						alert.After(detail)
					}
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
