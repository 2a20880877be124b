package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/harborml/berth/pkg/api/types/errors"
	apimodels "github.com/harborml/berth/pkg/api/types/models"
	kdbmodel "github.com/harborml/berth/pkg/domain/model/db"
)

// ListModelHandler serves the deployable model catalog.
//
// The catalog is the same for every requester; there is no per-owner scope.
func ListModelHandler(iDbModel kdbmodel.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")
		ctx := c.Request().Context()

		modelIds, err := iDbModel.List(ctx)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		models, err := iDbModel.Get(ctx, modelIds)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		resp := make([]apimodels.Summary, 0, len(models))
		for _, modelId := range modelIds {
			if m, ok := models[modelId]; ok {
				resp = append(resp, apimodels.ComposeSummary(m.ModelBody))
			}
		}

		return c.JSON(http.StatusOK, resp)
	}
}

func GetModelHandler(iDbModel kdbmodel.Interface, modelIdParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Add("Content-Type", "application/json")

		modelId := c.Param(modelIdParam)
		ctx := c.Request().Context()

		models, err := iDbModel.Get(ctx, []string{modelId})
		if err != nil {
			return apierr.InternalServerError(err)
		}

		model, ok := models[modelId]
		if !ok {
			return apierr.NotFound()
		}

		return c.JSON(http.StatusOK, apimodels.ComposeDetail(model))
	}
}
