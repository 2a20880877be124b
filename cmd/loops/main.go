package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harborml/berth/cmd/loops/recurring"
	configs "github.com/harborml/berth/pkg/configs/backend"
	cfg_hook "github.com/harborml/berth/pkg/configs/hook"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/berth"
	"github.com/harborml/berth/pkg/utils/args"
	"github.com/harborml/berth/pkg/utils/filewatch"
	"github.com/harborml/berth/pkg/utils/try"
)

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM,
	)
	// call cancel() when this function exits
	defer cancel()

	// define command line flags
	//-- path to config file
	pconfig := flag.String(
		"config", os.Getenv("BERTH_BACKEND_CONFIG"), "path to config file",
	)
	pSchemaRepo := flag.String(
		"schema-repo", os.Getenv("BERTH_SCHEMA"), "schema repository path",
	)
	phooks := flag.String(
		"hooks", os.Getenv("BERTH_HOOK_CONFIG"), "path to hook config file",
	)
	//-- which loop type to run
	loopType := args.Parser(domain.AsLoopType)
	flag.Var(loopType, "type", "one of loop type")
	//-- loop policy
	policy := args.Parser(recurring.ParsePolicy)
	flag.Var(
		policy, "policy",
		`loop policy (syntax: forever[:COOLDOWN]|backlog).`+
			` "forever[:COOLDOWN]" = run forever until error. When backlog is over, `+
			`wait COOLDOWN (optional duration. default: 0) as interval.`+
			` "backlog" = run until error or backlog is over.`,
	)
	// parse command line flags
	flag.Parse()

	{
		// watch config & hooks. The hooks file is optional and may be unset.
		targets := []string{*pconfig}
		if *phooks != "" {
			targets = append(targets, *phooks)
		}
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, targets...)
		if err != nil {
			logger.Fatal(err)
		}
		defer cancel()
		ctx = wctx
	}

	conf := try.To(configs.LoadBackendConfig(*pconfig)).OrFatal(logger)

	b := try.To(berth.Default(
		ctx, conf.Cluster(), berth.WithSchemaRepository(*pSchemaRepo),
	)).OrFatal(logger)

	{
		ctx_, ccan := b.Schema().Database().Context(ctx)
		defer ccan()
		ctx = ctx_
	}

	hooks := cfg_hook.Config{}
	if hookPath := *phooks; hookPath != "" {
		hooks = try.To(cfg_hook.Load(hookPath)).OrFatal(logger)
	}

	logger.Printf(
		`start loop "%s" /w policy "%s"`,
		loopType.Value().String(), policy.Value().String(),
	)

	err := StartLoop(
		ctx, logger, conf, b,
		LoopManifest{
			Type:   loopType.Value(),
			Policy: recurring.UntilError(policy.Value()),
			Hooks:  hooks,
		},
	)

	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.Fatal(err, "(loop context is cancelled by:", context.Cause(ctx), ")")
	}
	logger.Fatal(err)
}
