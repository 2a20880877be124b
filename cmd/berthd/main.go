package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/harborml/berth/pkg/buildtime"
	configs "github.com/harborml/berth/pkg/configs/backend"
	"github.com/harborml/berth/pkg/domain/berth"
	"github.com/harborml/berth/pkg/utils/filewatch"
)

func main() {

	pconfig := flag.String(
		"config", os.Getenv("BERTH_BACKEND_CONFIG"), "path to config file",
	)
	pSchemaRepo := flag.String("schema-repo", os.Getenv("BERTH_SCHEMA"), "schema repository path")
	loglevel := flag.String("loglevel", "warn", "log level. debug|info|warn|error|off")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM,
	)
	defer cancel()

	{
		// watch config. Modification quits the server to have it restarted.
		wctx, wcancel, err := filewatch.UntilModifyContext(ctx, *pconfig)
		if err != nil {
			panic(err)
		}
		defer wcancel()
		ctx = wctx
	}

	conf, err := configs.LoadBackendConfig(*pconfig)
	if err != nil {
		panic(err)
	}

	b, err := berth.Default(ctx, conf.Cluster(), berth.WithSchemaRepository(*pSchemaRepo))
	if err != nil {
		panic(err)
	}
	{
		// stop serving when the database schema goes ahead of this build.
		ctx_, ccan := b.Schema().Database().Context(ctx)
		defer ccan()
		ctx = ctx_
	}

	server := BuildServer(b, conf, *loglevel)
	server.Logger.Infof("berthd %s", buildtime.VersionString())
	for _, r := range server.Routes() {
		server.Logger.Debugf("- mount handler: %s %s", strings.ToUpper(r.Method), r.Path)
	}

	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		if err := server.Start(fmt.Sprintf(":%d", conf.Port())); err != nil && err != http.ErrServerClosed {
			ch <- err
		}
	}()

	exit := 0
	select {
	case <-ctx.Done(): // wait
		if err := ctx.Err(); err != nil {
			server.Logger.Infof("context has been done: %s, cause: %s", err, context.Cause(ctx))
			exit = 1
		}
	case err := <-ch:
		if err != nil {
			server.Logger.Error("server stops with error:", err)
			exit = 1
		}
	}

	{
		server.Logger.Info("shutting down...")
		qctx, qcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer qcancel()

		if err := server.Shutdown(qctx); err != nil {
			server.Logger.Fatalf("Shutdown with error. %+v", err)
		}
		os.Exit(exit)
	}
}
