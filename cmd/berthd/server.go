package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/harborml/berth/cmd/berthd/handlers"
	configs "github.com/harborml/berth/pkg/configs/backend"
	"github.com/harborml/berth/pkg/domain/berth"
	"github.com/harborml/berth/pkg/utils/echoutil"
	kstrings "github.com/harborml/berth/pkg/utils/strings"
)

var API_ROOT = "/api"

func api(subpath string) string {
	subpath = kstrings.TrimPrefixAll(subpath, "/")
	return kstrings.SupplySuffix(API_ROOT+"/"+subpath, "/")
}

func BuildServer(b berth.Berth, conf *configs.BackendConfig, loglevel string) *echo.Echo {

	e := echo.New()

	echoutil.SetLevel(e, loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}

	e.Pre(middleware.AddTrailingSlash())
	e.Use(echoutil.LogHandlerFunc)

	cluster := conf.Cluster()
	e.Use(handlers.Identify(cluster.Auth().SignKey()))

	{
		instanceId := "instanceId"
		e.POST(api("instances"), handlers.DeployInstanceHandler(
			b.Instance().Database(),
			b.Model().Database(),
			b.Instance().K8s(),
			cluster.Limits().MaxActivePerOwner(),
			conf.ServerlessCost(),
			cluster.HostTypes(),
		))
		e.GET(api("instances"), handlers.FindInstanceHandler(b.Instance().Database()))
		e.GET(api("instances/:instanceId/"), handlers.GetInstanceHandler(
			b.Instance().Database(),
			conf.ServerlessCost(),
			cluster.HostTypes(),
			instanceId,
		))
		e.PUT(api("instances/:instanceId/stop"), handlers.StopInstanceHandler(
			b.Instance().Database(),
			b.Instance().K8s(),
			conf.ServerlessCost(),
			cluster.HostTypes(),
			instanceId,
		))
		e.GET(api("instances/:instanceId/log"), handlers.GetInstanceLogHandler(
			b.Instance().Database(),
			b.Instance().K8s(),
			instanceId,
		))
	}

	{
		e.GET(api("models"), handlers.ListModelHandler(b.Model().Database()))
		e.GET(api("models/:modelId/"), handlers.GetModelHandler(
			b.Model().Database(), "modelId",
		))
	}

	return e
}
