package expiry_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/harborml/berth/cmd/loops/tasks/expiry"
	kdbmock "github.com/harborml/berth/pkg/domain/instance/db/mock"
	"github.com/harborml/berth/pkg/utils/cmp"
)

func TestTask(t *testing.T) {
	logger := log.New(io.Discard, "", 0)

	t.Run("it purges expired records", func(t *testing.T) {
		before := time.Now()

		instance := kdbmock.NewInstanceInterface()
		instance.Impl.PurgeExpired = func(ctx context.Context, now time.Time) ([]string, error) {
			if now.Before(before) || time.Now().Before(now) {
				t.Errorf("unexpected now: %s", now)
			}
			return []string{"instance-1", "instance-2"}, nil
		}

		testee := expiry.Task(logger, instance)

		purged, ok, err := testee(context.Background(), expiry.Seed())

		if err != nil {
			t.Errorf("unexpected error: %+v", err)
		}
		if !ok {
			t.Error("unexpected ok: false")
		}
		if !cmp.SliceContentEq(purged, []string{"instance-1", "instance-2"}) {
			t.Errorf("unexpected purged ids: %+v", purged)
		}
	})

	t.Run("it does nothing when no records are expired", func(t *testing.T) {
		instance := kdbmock.NewInstanceInterface()
		instance.Impl.PurgeExpired = func(ctx context.Context, now time.Time) ([]string, error) {
			return []string{}, nil
		}

		testee := expiry.Task(logger, instance)

		purged, ok, err := testee(context.Background(), expiry.Seed())

		if err != nil {
			t.Errorf("unexpected error: %+v", err)
		}
		if ok {
			t.Error("unexpected ok: true")
		}
		if len(purged) != 0 {
			t.Errorf("unexpected purged ids: %+v", purged)
		}
	})

	t.Run("it stops with error when PurgeExpired fails", func(t *testing.T) {
		expectedErr := errors.New("fake error")

		instance := kdbmock.NewInstanceInterface()
		instance.Impl.PurgeExpired = func(ctx context.Context, now time.Time) ([]string, error) {
			return nil, expectedErr
		}

		testee := expiry.Task(logger, instance)

		purged, ok, err := testee(context.Background(), expiry.Seed())

		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %+v", err)
		}
		if ok {
			t.Error("unexpected ok: true")
		}
		if purged != nil {
			t.Errorf("unexpected purged ids: %+v", purged)
		}
	})
}
