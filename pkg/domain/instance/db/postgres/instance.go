package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"

	kpool "github.com/harborml/berth/pkg/conn/db/postgres/pool"
	"github.com/harborml/berth/pkg/conn/db/postgres/scanner"
	"github.com/harborml/berth/pkg/domain"
	kpgerr "github.com/harborml/berth/pkg/domain/errors/dberrors/postgres"
	kdb "github.com/harborml/berth/pkg/domain/instance/db"
	kpgintr "github.com/harborml/berth/pkg/domain/internal/db/postgres"
	xe "github.com/harborml/berth/pkg/errors"
	"github.com/harborml/berth/pkg/utils/slices"
)

// how long terminal records are kept before they get purged.
const DefaultRetention = 24 * time.Hour

// a struct for DB operations related to Instance
type instancePG struct { // implements db.Interface

	// Db connection pool
	pool kpool.Pool

	// retention of terminal records
	retention time.Duration
}

type Option func(*instancePG) *instancePG

func WithRetention(retention time.Duration) Option {
	return func(i *instancePG) *instancePG {
		i.retention = retention
		return i
	}
}

func New(pool kpool.Pool, options ...Option) *instancePG {
	i := &instancePG{
		pool:      pool,
		retention: DefaultRetention,
	}
	for _, o := range options {
		i = o(i)
	}
	return i
}

var _ kdb.Interface = &instancePG{}

func (m *instancePG) Register(ctx context.Context, instance domain.Instance) error {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	// "on conflict do nothing" makes retried registrations no-ops.
	if _, err := conn.Exec(
		ctx,
		`
		insert into "instance" (
			"instance_id", "owner_id", "name", "model_id", "status",
			"launch_type", "cpu", "memory", "host_type", "gpu_count"
		)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		on conflict ("instance_id") do nothing
		`,
		instance.Id, instance.OwnerId, instance.Name, instance.ModelId,
		domain.Starting,
		instance.Shape.LaunchType, instance.Shape.CPU, instance.Shape.Memory,
		instance.Shape.HostType, instance.Shape.GPUCount,
	); err != nil {
		return xe.Wrap(err)
	}

	return nil
}

func (m *instancePG) Get(ctx context.Context, instanceIds []string) (map[string]domain.Instance, error) {
	if len(instanceIds) == 0 {
		return map[string]domain.Instance{}, nil
	}

	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return kpgintr.GetInstance(ctx, conn, instanceIds)
}

func (m *instancePG) Find(ctx context.Context, query domain.InstanceFindQuery) ([]string, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	instanceIds := []string{}
	rows, err := conn.Query(
		ctx,
		`
		select "instance_id" from "instance"
		where
			($1 or "owner_id" = $2)
			and ($3 or "status" = any($4::instanceStatus[]))
		order by "created_at" desc, "instance_id"
		`,
		query.OwnerId == "", query.OwnerId,
		len(query.Status) == 0, slices.Map(
			query.Status, func(s domain.InstanceStatus) string { return string(s) },
		),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		instanceIds = append(instanceIds, id)
	}

	return instanceIds, nil
}

func (m *instancePG) SetStatus(ctx context.Context, instanceId string, change kdb.StatusChange) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := m.setStatus(ctx, tx, instanceId, change, 0); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	return nil
}

func (m *instancePG) setStatus(
	ctx context.Context, tx kpool.Tx, instanceId string,
	change kdb.StatusChange, debounceIfNotChanged time.Duration,
) (bool, error) {
	var current domain.InstanceStatus
	{
		var _current kpgintr.InstanceStatus
		if err := tx.QueryRow(
			ctx,
			`
			select "status" from "instance"
			where "instance_id" = $1
			for update
			`,
			instanceId,
		).Scan(&_current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return false, kpgerr.Missing{
					Table:    "instance",
					Identity: fmt.Sprintf("instance_id = %s", instanceId),
				}
			}
			return false, err
		}
		current = domain.InstanceStatus(_current)
	}

	newStatus := change.Status

	allowed, err := domain.TransitInstanceStatus(current, newStatus)
	if err != nil {
		return false, err
	}
	if !allowed {
		// Nothing to change. Postpone the next pick instead.
		if _, err := tx.Exec(
			ctx,
			`
			update "instance" set
				"lifecycle_suspend_until" = now() + $1
			where "instance_id" = $2
			`,
			debounceIfNotChanged, instanceId,
		); err != nil {
			return false, err
		}

		return false, nil
	}

	endpoint := ""
	if newStatus == domain.Running {
		endpoint = change.Endpoint
	}
	failureReason, failureMessage := "", ""
	if newStatus == domain.Errored && change.Failure != nil {
		failureReason = string(change.Failure.Reason)
		failureMessage = change.Failure.Message
	}

	cmd, err := tx.Exec(
		ctx,
		`
		update "instance" set
			"status" = $1,
			"endpoint" = $2,
			"failure_reason" = $3,
			"failure_message" = $4,
			"expires_at" = case when $5 then now() + $6 else null end,
			"updated_at" = now(),
			"lifecycle_suspend_until" = now()
		where "instance_id" = $7
		`,
		newStatus, endpoint, failureReason, failureMessage,
		newStatus.IsTerminal(), m.retention,
		instanceId,
	)
	if err != nil {
		return false, xe.Wrap(err)
	}

	if cmd.RowsAffected() == 0 {
		return false, kpgerr.Missing{
			Table:    "instance",
			Identity: fmt.Sprintf("updating instance_id='%s'", instanceId),
		}
	}

	return true, nil
}

// select the instance which satisfies the specified condition, and change its status.
func (m *instancePG) PickAndSetStatus(
	ctx context.Context,
	cursorFrom domain.InstanceCursor,
	task func(domain.Instance) (kdb.StatusChange, error),
) (domain.InstanceCursor, bool, error) {
	cursor := cursorFrom
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return cursor, false, err
	}
	defer tx.Rollback(ctx)

	var instance domain.Instance
	{
		var instanceId string
		if err := tx.QueryRow(
			ctx,
			`
			with "target" as (
				select "instance_id" from "instance"
				where
					"status" = any($1::instanceStatus[])
					and "lifecycle_suspend_until" < now()
				order by "instance_id" <= $2, "instance_id"
				limit 1
				for no key update skip locked
			)
			select "instance_id" from "target"
			`,
			slices.Map(cursor.Status, domain.InstanceStatus.String),
			cursor.Head,
		).Scan(&instanceId); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return cursor, false, nil
			}
			return cursor, false, err
		}

		i, err := kpgintr.GetInstance(ctx, tx, []string{instanceId})
		if err != nil {
			return cursor, false, err
		}
		instance = i[instanceId]

		// cursor is moved!
		cursor = domain.InstanceCursor{
			Head:     instanceId,
			Status:   cursorFrom.Status,
			Debounce: cursorFrom.Debounce,
		}
	}

	// exec task() and get its result.
	change, err := task(instance)
	if err != nil {
		return cursor, false, err
	}
	// according to the result above, reflect the new status to the database.
	changed, err := m.setStatus(ctx, tx, instance.Id, change, cursor.Debounce)
	if err != nil {
		return cursor, false, err
	}
	// commit the transaction
	if err := tx.Commit(ctx); err != nil {
		return cursor, false, err
	}
	return cursor, changed, nil
}

func (m *instancePG) CountActive(ctx context.Context, ownerId string) (int, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	var count int
	if err := conn.QueryRow(
		ctx,
		`
		select count(*) from "instance"
		where "owner_id" = $1 and "status" = any($2::instanceStatus[])
		`,
		ownerId,
		slices.Map(domain.ActiveStatuses(), domain.InstanceStatus.String),
	).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (m *instancePG) KnownIds(ctx context.Context) ([]string, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	return scanner.New[string]().QueryAll(
		ctx, conn,
		`select "instance_id" from "instance" order by "instance_id"`,
	)
}

func (m *instancePG) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	conn, err := m.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	purged := []string{}
	rows, err := conn.Query(
		ctx,
		`
		delete from "instance"
		where "expires_at" is not null and "expires_at" <= $1
		returning "instance_id"
		`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		purged = append(purged, id)
	}

	return purged, nil
}
