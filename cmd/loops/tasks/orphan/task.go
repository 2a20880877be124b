package orphan

import (
	"context"
	"log"
	"time"

	"github.com/harborml/berth/cmd/loops/recurring"
	kdbinstance "github.com/harborml/berth/pkg/domain/instance/db"
	k8sinstance "github.com/harborml/berth/pkg/domain/instance/k8s"
)

// initial value for task
func Seed() []string {
	return nil
}

// Task for the orphan loop.
//
// It finds instance workloads which run on the cluster without a record in
// database, and removes them. Such workloads are left when a deployment
// schedules its workload but fails to write the record, or when records are
// purged behind the cluster's back.
//
// Workloads younger than the grace are kept, since their record may be
// about to be written.
//
// # Return
//
// - task: remove orphan workloads.
// The task value is instance ids removed in the cycle.
func Task(
	logger *log.Logger,
	iDbInstance kdbinstance.Interface,
	iK8sInstance k8sinstance.Interface,
	grace time.Duration,
) recurring.Task[[]string] {
	return func(ctx context.Context, _ []string) ([]string, bool, error) {
		deployed, err := iK8sInstance.Deployed(ctx)
		if err != nil {
			return nil, false, err
		}
		known, err := iDbInstance.KnownIds(ctx)
		if err != nil {
			return nil, false, err
		}

		knownIds := map[string]struct{}{}
		for _, id := range known {
			knownIds[id] = struct{}{}
		}

		removed := []string{}
		for id, since := range deployed {
			if _, ok := knownIds[id]; ok {
				continue
			}
			if time.Since(since) < grace {
				continue
			}
			if err := iK8sInstance.Teardown(ctx, id); err != nil {
				// leave it for the next cycle.
				logger.Printf("failed to remove orphan workload: %s: %s", id, err)
				continue
			}
			logger.Printf(
				"removed orphan workload: %s (deployed at %s)",
				id, since.Format(time.RFC3339),
			)
			removed = append(removed, id)
		}

		return removed, 0 < len(removed), nil
	}
}
