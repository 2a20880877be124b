package db

import (
	"context"
	"time"

	"github.com/harborml/berth/pkg/domain"
)

// StatusChange is the target state of an instance status transition.
type StatusChange struct {
	// Status to transit into.
	Status domain.InstanceStatus

	// Endpoint where the workload serves.
	//
	// This is recorded only when Status is Running, and cleared otherwise.
	Endpoint string

	// Failure tells why the instance comes to the error status.
	//
	// This is recorded only when Status is Errored, and cleared otherwise.
	Failure *domain.InstanceFailure
}

type Interface interface {
	// register a new instance record in starting status.
	//
	// Registering the same instance id twice is a no-op,
	// so that retried deployments do not duplicate records.
	//
	// Args
	//
	// - context.Context
	//
	// - Instance: record to be registered. Status is forced to starting.
	//
	// Returns
	//
	// - error
	Register(ctx context.Context, instance domain.Instance) error

	// Retreive Instance
	//
	// Args
	//
	// - context.Context
	//
	// - []string: instanceIds
	//
	// Returns
	//
	// - map[string]Instance: mapping instanceId->Instance.
	// Ids which are not found are just omitted from the map.
	//
	// - error
	Get(ctx context.Context, instanceIds []string) (map[string]domain.Instance, error)

	// find instances which...
	//
	// - are owned by the owner in argument "OwnerId" and
	//
	// - are in a status which is in argument "Status"
	//
	// (all conditions should be met).
	//
	// when some conditions are empty, such empty conditions are ignored
	// and do not narrow results.
	//
	// Args
	//
	// - context.Context
	//
	// - InstanceFindQuery: find instances which the query matches
	//
	// Returns
	//
	// - []string: found instanceIds, newest first.
	//
	// - error
	Find(ctx context.Context, query domain.InstanceFindQuery) ([]string, error)

	// update instance status.
	//
	// Args
	//
	// - context.Context
	//
	// - string: instanceId to be updated.
	//
	// - StatusChange: new status with its endpoint or failure.
	//
	// Returns
	//
	// - error: ErrInvalidInstanceStateChanging (when the new status is not
	// next of the current one), ErrMissing (when no instance is found for
	// the given instanceId)
	//
	// When the instance already is in the requested status, this is a no-op
	// and returns nil -- unless that status is terminal. Stopped and errored
	// records accept no change request at all, the same status included.
	SetStatus(ctx context.Context, instanceId string, change StatusChange) error

	// pick next instance of cursor, and change its status to the return value of task.
	//
	// Args
	//
	// - context.Context
	//
	// - cursorFrom: initial InstanceCursor
	//
	// - func(Instance) (StatusChange, error): task which should occur along with
	// the status transition. The return value of this func is to be the next
	// state of the instance.
	//
	// Return
	//
	// - InstanceCursor: cursor points on the picked (and updated, if succeeded)
	// instance. If no instances can be picked, cursor state is as it was passed.
	//
	// - bool: it is true only when the status is changed and saved in database.
	//
	// - error: ErrInvalidInstanceStateChanging (when the task requests a
	// transition which is not allowed from the current status)
	PickAndSetStatus(ctx context.Context, cursorFrom domain.InstanceCursor, task func(domain.Instance) (StatusChange, error)) (domain.InstanceCursor, bool, error)

	// count instances of the owner which are starting or running.
	//
	// Args
	//
	// - context.Context
	//
	// - string: ownerId
	//
	// Returns
	//
	// - int: how many active instances the owner has
	//
	// - error
	CountActive(ctx context.Context, ownerId string) (int, error)

	// list all recorded instance ids.
	//
	// Sweepers diff these ids against what the cluster is actually running
	// to detect orphan workloads.
	//
	// Returns
	//
	// - []string: every instanceId in the store, terminal ones included
	//
	// - error
	KnownIds(ctx context.Context) ([]string, error)

	// delete terminal records which are expired at the passed time.
	//
	// Args
	//
	// - context.Context
	//
	// - time.Time: records whose retention deadline is at or before this
	// time are purged
	//
	// Returns
	//
	// - []string: purged instanceIds
	//
	// - error
	PurgeExpired(ctx context.Context, now time.Time) ([]string, error)
}
