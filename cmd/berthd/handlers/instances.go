package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apierr "github.com/harborml/berth/pkg/api/types/errors"
	apiinstances "github.com/harborml/berth/pkg/api/types/instances"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/auth"
	kerr "github.com/harborml/berth/pkg/domain/errors"
	k8serrors "github.com/harborml/berth/pkg/domain/errors/k8serrors"
	kdbinstance "github.com/harborml/berth/pkg/domain/instance/db"
	k8sinstance "github.com/harborml/berth/pkg/domain/instance/k8s"
	kdbmodel "github.com/harborml/berth/pkg/domain/model/db"
	kstrings "github.com/harborml/berth/pkg/utils/strings"
)

func DeployInstanceHandler(
	iDbInstance kdbinstance.Interface,
	iDbModel kdbmodel.Interface,
	iK8sInstance k8sinstance.Interface,
	maxActivePerOwner int,
	rates domain.ServerlessRates,
	hostTypes []domain.HostType,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		req := c.Request()
		ctx := req.Context()

		requester, ok := Requester(c)
		if !ok {
			return apierr.Unauthorized(
				`set your access token in the "Authorization: Bearer" header`, nil,
			)
		}

		if ct := req.Header.Get("Content-Type"); !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			return apierr.BadRequest(
				"unexpected content type. it should be application/json", nil,
			)
		}

		spec := new(apiinstances.InstanceSpec)
		if err := json.NewDecoder(req.Body).Decode(spec); err != nil {
			return apierr.BadRequest("can not understand the requested json", err)
		}

		active, err := iDbInstance.CountActive(ctx, requester.OwnerId)
		if err != nil {
			return apierr.InternalServerError(err)
		}
		if maxActivePerOwner <= active {
			return apierr.TooManyRequests(
				fmt.Sprintf("stop some of your %d active instances and retry", active),
				fmt.Errorf("%w: %d/%d", domain.ErrInstanceQuotaExceeded, active, maxActivePerOwner),
			)
		}

		models, err := iDbModel.Get(ctx, []string{spec.ModelId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		model, ok := models[spec.ModelId]
		if !ok {
			return apierr.NotFound()
		}

		descriptor, err := spec.Compute.Descriptor()
		if err != nil {
			return apierr.BadRequest(
				`"compute.mode" should be "pooled-cpu" or "pooled-gpu"`, err,
			)
		}

		shape, err := descriptor.Resolve(model.ModelBody, hostTypes)
		if err != nil {
			return apierr.BadRequest(err.Error(), err)
		}

		name := spec.Name
		if name == "" {
			// names are display-only and need not be unique,
			// but a fresh suffix keeps repeated deploys tellable apart.
			suffix, err := kstrings.RandomHex(6)
			if err != nil {
				return apierr.InternalServerError(err)
			}
			name = spec.ModelId + "-" + suffix
		}

		instance := domain.Instance{
			InstanceBody: domain.InstanceBody{
				Id:        uuid.NewString(),
				OwnerId:   requester.OwnerId,
				Name:      name,
				Status:    domain.Starting,
				Shape:     shape,
				ModelBody: model.ModelBody,
			},
		}

		// schedule before registering. A scheduler rejection writes nothing,
		// while a scheduled-but-unrecorded workload is recovered as an orphan.
		if err := iK8sInstance.Schedule(ctx, instance); err != nil {
			if errors.Is(err, domain.ErrSchedulingFailed) {
				return apierr.ServiceUnavailable("please retry later.", err)
			}
			return apierr.InternalServerError(err)
		}

		if err := iDbInstance.Register(ctx, instance); err != nil {
			return apierr.InternalServerError(err)
		}

		registered, err := iDbInstance.Get(ctx, []string{instance.Id})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		if i, ok := registered[instance.Id]; !ok {
			return apierr.NotFound()
		} else {
			return c.JSON(http.StatusOK, apiinstances.ComposeDetail(i, rates, hostTypes))
		}
	}
}

func FindInstanceHandler(iDbInstance kdbinstance.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		requester, ok := Requester(c)
		if !ok {
			return apierr.Unauthorized(
				`set your access token in the "Authorization: Bearer" header`, nil,
			)
		}

		query, err := func(c echo.Context) (domain.InstanceFindQuery, error) {
			result := domain.InstanceFindQuery{
				OwnerId: requester.OwnerId,
			}
			if requester.Role.IsAdmin() {
				result.OwnerId = ""
			}

			if owner := c.QueryParam("owner"); owner != "" {
				if !requester.Role.IsAdmin() && owner != requester.OwnerId {
					return domain.InstanceFindQuery{}, apierr.Forbidden(
						"only admins can list instances of other owners", nil,
					)
				}
				result.OwnerId = owner
			}

			for _, p := range kstrings.SplitIfNotEmpty(c.QueryParam("status"), ",") {
				s, err := domain.AsInstanceStatus(p)
				if err != nil {
					return domain.InstanceFindQuery{}, apierr.BadRequest(
						`"status" should be one of "starting", "running", "stopping", "stopped" or "error"`,
						err,
					)
				}
				result.Status = append(result.Status, s)
			}

			return result, nil
		}(c)
		if err != nil {
			return err
		}

		ctx := c.Request().Context()

		instanceIds, err := iDbInstance.Find(ctx, query)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		instances, err := iDbInstance.Get(ctx, instanceIds)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apiinstances.Summary, 0, len(instances))
		for _, instanceId := range instanceIds {
			if i, ok := instances[instanceId]; ok {
				resp = append(resp, apiinstances.ComposeSummary(i.InstanceBody))
			}
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetInstanceHandler(
	iDbInstance kdbinstance.Interface,
	rates domain.ServerlessRates,
	hostTypes []domain.HostType,
	instanceIdParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		requester, ok := Requester(c)
		if !ok {
			return apierr.Unauthorized(
				`set your access token in the "Authorization: Bearer" header`, nil,
			)
		}

		instanceId := c.Param(instanceIdParam)
		ctx := c.Request().Context()

		instances, err := iDbInstance.Get(ctx, []string{instanceId})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		instance, ok := instances[instanceId]
		if !ok {
			return apierr.NotFound()
		}

		if err := auth.Authorize(requester, instance.OwnerId); err != nil {
			return apierr.Forbidden("this instance is not yours", err)
		}

		return c.JSON(http.StatusOK, apiinstances.ComposeDetail(instance, rates, hostTypes))
	}
}

func StopInstanceHandler(
	iDbInstance kdbinstance.Interface,
	iK8sInstance k8sinstance.Interface,
	rates domain.ServerlessRates,
	hostTypes []domain.HostType,
	instanceIdParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		requester, ok := Requester(c)
		if !ok {
			return apierr.Unauthorized(
				`set your access token in the "Authorization: Bearer" header`, nil,
			)
		}

		instanceId := c.Param(instanceIdParam)
		ctx := c.Request().Context()

		instances, err := iDbInstance.Get(ctx, []string{instanceId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		instance, ok := instances[instanceId]
		if !ok {
			return apierr.NotFound()
		}

		if err := auth.Authorize(requester, instance.OwnerId); err != nil {
			return apierr.Forbidden("this instance is not yours", err)
		}

		switch instance.Status {
		case domain.Stopping, domain.Stopped, domain.Errored:
			// already on its way down, or settled. Nothing more to ask.
		default:
			if err := iDbInstance.SetStatus(ctx, instanceId, kdbinstance.StatusChange{
				Status: domain.Stopping,
			}); err != nil {
				if errors.Is(err, kerr.ErrMissing) {
					return apierr.NotFound()
				}
				if !errors.Is(err, domain.ErrInvalidInstanceStateChanging) {
					return apierr.InternalServerError(err)
				}
				// lost the race against another stop or the lifecycle loops.
				// answer with the state as it is now.
			} else if err := iK8sInstance.Teardown(ctx, instanceId); err != nil {
				// the teardown loop re-issues it within the grace period.
				c.Logger().Warnf("failed to request teardown of %s: %s", instanceId, err)
			}
		}

		instances, err = iDbInstance.Get(ctx, []string{instanceId})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		if i, ok := instances[instanceId]; !ok {
			return apierr.NotFound()
		} else {
			return c.JSON(http.StatusOK, apiinstances.ComposeDetail(i, rates, hostTypes))
		}
	}
}

func GetInstanceLogHandler(
	iDbInstance kdbinstance.Interface,
	iK8sInstance k8sinstance.Interface,
	instanceIdParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		requester, ok := Requester(c)
		if !ok {
			return apierr.Unauthorized(
				`set your access token in the "Authorization: Bearer" header`, nil,
			)
		}

		instanceId := c.Param(instanceIdParam)
		ctx := c.Request().Context()

		instances, err := iDbInstance.Get(ctx, []string{instanceId})
		if err != nil {
			return apierr.InternalServerError(err)
		}
		instance, ok := instances[instanceId]
		if !ok {
			return apierr.NotFound()
		}

		if err := auth.Authorize(requester, instance.OwnerId); err != nil {
			return apierr.Forbidden("this instance is not yours", err)
		}

		follow := c.QueryParams().Has("follow")
		stream, err := iK8sInstance.Log(ctx, instanceId, follow)
		if err != nil {
			if k8serrors.AsMissingError(err) {
				if instance.Status == domain.Starting {
					// recorded, but the workload is not observable yet.
					return apierr.ServiceUnavailable("please retry later.", err)
				}
				return apierr.NotFound()
			}
			return apierr.InternalServerError(err)
		}
		defer stream.Close()

		lr := &lineReader{
			r: stream,
			callback: func() {
				c.Response().Flush()
			},
		}
		return c.Stream(http.StatusOK, "text/plain", lr)
	}
}

type lineReader struct {
	r        io.Reader
	callback func()
}

func (lr *lineReader) Read(p []byte) (n int, err error) {
	n, err = lr.r.Read(p)
	if n > 0 {
		if bytes.Contains(p[:n], []byte{'\n'}) {
			lr.callback()
		}
	}
	return
}
