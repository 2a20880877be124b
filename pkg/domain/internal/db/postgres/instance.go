package postgres

import (
	"context"
	"fmt"
	"time"

	kpool "github.com/harborml/berth/pkg/conn/db/postgres/pool"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/utils/slices"
)

type InstanceStatus domain.InstanceStatus

// implement sql.Scanner
func (is *InstanceStatus) Scan(v any) error {

	var s string
	switch vv := v.(type) {
	case string:
		s = vv
	case []byte:
		s = string(vv)
	default:
		return fmt.Errorf("parse error for InstanceStatus: %#v", v)
	}

	parsed, err := domain.AsInstanceStatus(s)
	if err != nil {
		return err
	}
	*is = InstanceStatus(parsed)
	return nil
}

// instanceDescriptor is a half-baked InstanceBody.
//
// It is used for building Instance.
type instanceDescriptor struct {
	Id             string
	OwnerId        string
	Name           string
	ModelId        string
	Status         InstanceStatus
	LaunchType     string
	CPU            int
	Memory         int
	HostType       string
	GPUCount       int
	Endpoint       string
	FailureReason  string
	FailureMessage string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d instanceDescriptor) shape() domain.ComputeShape {
	shape := domain.ComputeShape{
		LaunchType: domain.LaunchType(d.LaunchType),
		CPU:        d.CPU,
		Memory:     d.Memory,
		HostType:   d.HostType,
		GPUCount:   d.GPUCount,
	}
	if d.HostType != "" {
		shape.Constraints = []domain.PlacementConstraint{
			{Attribute: domain.HostTypeAttribute, Equals: d.HostType},
		}
	}
	return shape
}

func (d instanceDescriptor) failure() *domain.InstanceFailure {
	if d.FailureReason == "" {
		return nil
	}
	return &domain.InstanceFailure{
		Reason:  domain.FailureReason(d.FailureReason),
		Message: d.FailureMessage,
	}
}

func getInstanceDescriptors(ctx context.Context, conn kpool.Queryer, instanceIds []string) (map[string]instanceDescriptor, error) {
	result := map[string]instanceDescriptor{}
	rows, err := conn.Query(
		ctx,
		`
		select
			"instance_id", "owner_id", "name", "model_id", "status",
			"launch_type", "cpu", "memory", "host_type", "gpu_count",
			"endpoint", "failure_reason", "failure_message",
			"created_at", "updated_at"
		from "instance"
		where "instance_id" = ANY($1)
		`,
		instanceIds,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d instanceDescriptor
		if err := rows.Scan(
			&d.Id, &d.OwnerId, &d.Name, &d.ModelId, &d.Status,
			&d.LaunchType, &d.CPU, &d.Memory, &d.HostType, &d.GPUCount,
			&d.Endpoint, &d.FailureReason, &d.FailureMessage,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result[d.Id] = d
	}

	return result, nil
}

// get Instance by instanceId
//
// # Args
//
// - context.Context
//
// - Queryer
//
// - []string : instanceIds to query
//
// # Return
//
// - map[string]domain.Instance : mapping from instanceId to Instance.
// Ids which are not found are just omitted.
//
// - error
func GetInstance(ctx context.Context, conn kpool.Queryer, instanceIds []string) (map[string]domain.Instance, error) {

	descriptors, err := getInstanceDescriptors(ctx, conn, instanceIds)
	if err != nil {
		return nil, err
	}
	var modelIds []string
	{
		mids := map[string]struct{}{}
		for _, d := range descriptors {
			mids[d.ModelId] = struct{}{}
		}
		modelIds = slices.KeysOf(mids)
	}
	modelBodies, err := GetModelBody(ctx, conn, modelIds)
	if err != nil {
		return nil, err
	}

	result := map[string]domain.Instance{}
	for _, d := range descriptors {
		result[d.Id] = domain.Instance{
			InstanceBody: domain.InstanceBody{
				Id:        d.Id,
				OwnerId:   d.OwnerId,
				Name:      d.Name,
				Status:    domain.InstanceStatus(d.Status),
				Endpoint:  d.Endpoint,
				Failure:   d.failure(),
				Shape:     d.shape(),
				CreatedAt: d.CreatedAt,
				UpdatedAt: d.UpdatedAt,
				ModelBody: modelBodies[d.ModelId],
			},
		}
	}
	return result, nil
}
