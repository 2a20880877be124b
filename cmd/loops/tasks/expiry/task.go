package expiry

import (
	"context"
	"log"
	"time"

	"github.com/harborml/berth/cmd/loops/recurring"
	kdbinstance "github.com/harborml/berth/pkg/domain/instance/db"
)

// initial value for task
func Seed() []string {
	return nil
}

// Task for the expiry loop.
//
// It purges stopped and errored instance records which outlived the
// retention, so that the store does not grow without bound.
//
// # Return
//
// - task: purge expired records.
// The task value is instance ids purged in the cycle.
func Task(logger *log.Logger, iDbInstance kdbinstance.Interface) recurring.Task[[]string] {
	return func(ctx context.Context, _ []string) ([]string, bool, error) {
		purged, err := iDbInstance.PurgeExpired(ctx, time.Now())
		if err != nil {
			return nil, false, err
		}
		if 0 < len(purged) {
			logger.Printf("purged expired instance records: %v", purged)
		}
		return purged, 0 < len(purged), nil
	}
}
