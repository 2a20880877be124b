package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/harborml/berth/pkg/utils/cmp"
)

type InstanceStatus string

const (
	// The workload of this Instance has been accepted by the cluster and is coming up.
	Starting InstanceStatus = "starting"

	// The workload of this Instance is up and serving its endpoint.
	Running InstanceStatus = "running"

	// This Instance is going to be torn down.
	Stopping InstanceStatus = "stopping"

	// This Instance has been torn down on request. Terminal.
	Stopped InstanceStatus = "stopped"

	// This Instance failed to start or to stop. Terminal.
	Errored InstanceStatus = "error"
)

func (is InstanceStatus) String() string {
	return string(is)
}

func AsInstanceStatus(status string) (InstanceStatus, error) {
	switch status {
	case string(Starting):
		return Starting, nil
	case string(Running):
		return Running, nil
	case string(Stopping):
		return Stopping, nil
	case string(Stopped):
		return Stopped, nil
	case string(Errored):
		return Errored, nil
	default:
		return "", fmt.Errorf("'%s' is not InstanceStatus", status)
	}
}

// Terminal statuses are never left, except by expiry.
func (is InstanceStatus) IsTerminal() bool {
	switch is {
	case Stopped, Errored:
		return true
	default:
		return false
	}
}

// Instances in these statuses count against per-owner limits.
//
// Stopping instances do not; their compute is already being released.
func ActiveStatuses() []InstanceStatus {
	return []InstanceStatus{Starting, Running}
}

// TransitInstanceStatus judges a status change of an instance.
//
// # Returns
//
// - bool: true when the change from `from` to `to` is to be applied.
// False with nil error when the instance is in `to` already and
// there is nothing to apply.
//
// - error: ErrInvalidInstanceStateChanging when no operation moves an
// instance from `from` to `to`. Terminal statuses are never left,
// not even into themselves.
func TransitInstanceStatus(from, to InstanceStatus) (bool, error) {
	switch from {
	case Stopped, Errored:
		return false, NewErrInvalidInstanceStateChanging(from, to)
	case to:
		return false, nil
	case Starting:
		switch to {
		case Running, Stopping, Errored:
			return true, nil
		}
	case Running:
		switch to {
		case Stopping:
			return true, nil
		}
	case Stopping:
		switch to {
		case Stopped, Errored:
			return true, nil
		}
	}
	return false, NewErrInvalidInstanceStateChanging(from, to)
}

// Why an Instance ended up in the error status.
type FailureReason string

const (
	// The workload did not become healthy within the startup grace period.
	StartupTimeout FailureReason = "startup timeout"

	// The workload did not go away within the teardown grace period.
	TeardownTimeout FailureReason = "teardown timeout"
)

type InstanceFailure struct {
	Reason  FailureReason
	Message string
}

func (f *InstanceFailure) Equal(o *InstanceFailure) bool {
	if (f == nil) || (o == nil) {
		return (f == nil) && (o == nil)
	}
	return f.Reason == o.Reason && f.Message == o.Message
}

func (f *InstanceFailure) String() string {
	if f == nil {
		return "(none)"
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Message)
}

// Core part of Instance.
type InstanceBody struct {
	Id string

	// Owner who deployed this Instance. Immutable once set.
	OwnerId string

	// Name given by the deployer, or derived from the model when omitted.
	Name string

	Status InstanceStatus

	// URL where the Instance serves.
	//
	// This is non-empty only when Status is Running.
	Endpoint string

	// Why the Instance is in the error status, if it is.
	Failure *InstanceFailure

	// Resolved compute description this Instance is scheduled with.
	Shape ComputeShape

	CreatedAt time.Time

	// last update timestamp.
	UpdatedAt time.Time

	// model which the Instance is deployed from.
	ModelBody
}

func (ib *InstanceBody) Equal(o *InstanceBody) bool {
	if (ib == nil) || (o == nil) {
		return (ib == nil) && (o == nil)
	}

	return ib.Id == o.Id &&
		ib.OwnerId == o.OwnerId &&
		ib.Name == o.Name &&
		ib.Status == o.Status &&
		ib.Endpoint == o.Endpoint &&
		ib.Failure.Equal(o.Failure) &&
		ib.Shape.Equal(o.Shape) &&
		ib.CreatedAt.Equal(o.CreatedAt) &&
		ib.UpdatedAt.Equal(o.UpdatedAt) &&
		ib.ModelBody.Equal(&o.ModelBody)
}

type Instance struct {
	InstanceBody
}

func (i *Instance) Equal(other *Instance) bool {
	if (i == nil) || (other == nil) {
		return (i == nil) && (other == nil)
	}
	return i.InstanceBody.Equal(&other.InstanceBody)
}

type InstanceCursor struct {
	// Id of instance which is picked at last time
	Head string

	// interval to pick same instance without changing status.
	Debounce time.Duration

	// status of instance which is picked
	Status []InstanceStatus
}

func (c InstanceCursor) Equal(other InstanceCursor) bool {
	return c.Head == other.Head &&
		c.Debounce == other.Debounce &&
		cmp.SliceContentEq(c.Status, other.Status)
}

// parameter to query instances
//
// When all dimension matches an instance, this query matches the instance.
type InstanceFindQuery struct {
	// match if instance is owned by this owner.
	//
	// If it is empty, it means "match any".
	OwnerId string

	// match if instance's status is one of these statuses.
	//
	// If it is nil or empty, it means "match any".
	Status []InstanceStatus
}

func (q InstanceFindQuery) Equal(other InstanceFindQuery) bool {
	return q.OwnerId == other.OwnerId &&
		cmp.SliceContentEq(q.Status, other.Status)
}

var (
	ErrInvalidInstanceStateChanging = errors.New("cannot change instance state")

	// The cluster did not accept the workload (capacity, quota or malformed shape).
	ErrSchedulingFailed = errors.New("scheduling failed")

	// The owner already has as many active instances as allowed.
	ErrInstanceQuotaExceeded = errors.New("too many active instances")
)

func NewErrInvalidInstanceStateChanging(from, to InstanceStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidInstanceStateChanging, from, to)
}
