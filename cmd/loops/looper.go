package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harborml/berth/cmd/loops/hook"
	"github.com/harborml/berth/cmd/loops/recurring"
	"github.com/harborml/berth/cmd/loops/tasks/expiry"
	"github.com/harborml/berth/cmd/loops/tasks/orphan"
	"github.com/harborml/berth/cmd/loops/tasks/startup"
	"github.com/harborml/berth/cmd/loops/tasks/teardown"
	api_instances "github.com/harborml/berth/pkg/api/types/instances"
	configs "github.com/harborml/berth/pkg/configs/backend"
	cfg_hook "github.com/harborml/berth/pkg/configs/hook"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/berth"
	"github.com/harborml/berth/pkg/loop"
)

type LoggerOptions func(*log.Logger) *log.Logger

func byLogger(l *log.Logger, opt ...LoggerOptions) *log.Logger {
	for _, o := range opt {
		l = o(l)
	}
	return l
}

func Copied() LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		return log.New(l.Writer(), l.Prefix(), l.Flags())
	}
}

func WithPrefix(pre string) LoggerOptions {
	return func(l *log.Logger) *log.Logger {
		l.SetPrefix(pre)
		return l
	}
}

// Wrapper for monitoring loop tasks
//
//	Log the start and end of each time a task is executed. Essentially, it executes a task.
func monitor[T any](logger *log.Logger, task loop.Task[T]) loop.Task[T] {
	// counter for execution of the task
	var counter uint64
	return func(ctx context.Context, t T) (ret T, next loop.Next) {
		// func() capture the 'counter' variable
		counter += 1
		timestamp := time.Now()

		logger.Printf("task start: #0x%X: ", counter)

		// log at the end of the task
		defer func() {
			logger.Printf(
				"task end: #0x%X (takes %s): %s\n with value = %#v",
				counter, time.Since(timestamp), next, ret,
			)
		}()

		// execute the task specified by the argument
		ret, next = task(ctx, t)
		return
	}
}

// Manifest for starting a loop, which determines how the loop should behave.
type LoopManifest struct {
	// Type of the loop to be started
	Type domain.LoopType

	// Policy for the looping
	Policy recurring.Policy

	// Hooks for the looping
	Hooks cfg_hook.Config
}

func mergeEmptyStruct(a, b struct{}) struct{} {
	return struct{}{}
}

// build the webhook payload composer, closing over the cost model.
func composeDetail(conf *configs.BackendConfig) func(domain.Instance) api_instances.Detail {
	rates := conf.ServerlessCost()
	hostTypes := conf.Cluster().HostTypes()
	return func(i domain.Instance) api_instances.Detail {
		return api_instances.ComposeDetail(i, rates, hostTypes)
	}
}

// Start the loop given by manifest.Type.
//
// Args:
//
// - ctx
//
// - logger : logger for monitoring loop.
//
// - conf : backend configuration
//
// - b : berth cluster handle
//
// - manifest
func StartLoop(
	ctx context.Context,
	logger *log.Logger,
	conf *configs.BackendConfig,
	b berth.Berth,
	manifest LoopManifest,
) error {
	switch manifest.Type {
	case domain.Startup:
		return StartStartupLoop(ctx, logger, conf, b, manifest)
	case domain.Teardown:
		return StartTeardownLoop(ctx, logger, conf, b, manifest)
	case domain.Orphan:
		return StartOrphanLoop(ctx, logger, b, manifest)
	case domain.Expiry:
		return StartExpiryLoop(ctx, logger, b, manifest)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownLoopType, manifest.Type)
	}
}

func StartStartupLoop(
	ctx context.Context,
	logger *log.Logger,
	conf *configs.BackendConfig,
	b berth.Berth,
	manifest LoopManifest,
) error {
	_, err := loop.Start(
		ctx, startup.Seed(),
		monitor(
			byLogger(logger, Copied(), WithPrefix("[startup loop]")),
			startup.Task(
				b.Instance().Database(),
				b.Instance().K8s(),
				conf.Cluster().Grace().Startup(),
				composeDetail(conf),
				hook.Build(manifest.Hooks.Lifecycle, mergeEmptyStruct),
			).Applied(manifest.Policy),
		),
		loop.WithTimeout(30*time.Second),
	)
	return err
}

func StartTeardownLoop(
	ctx context.Context,
	logger *log.Logger,
	conf *configs.BackendConfig,
	b berth.Berth,
	manifest LoopManifest,
) error {
	_, err := loop.Start(
		ctx, teardown.Seed(),
		monitor(
			byLogger(logger, Copied(), WithPrefix("[teardown loop]")),
			teardown.Task(
				b.Instance().Database(),
				b.Instance().K8s(),
				conf.Cluster().Grace().Teardown(),
				composeDetail(conf),
				hook.Build(manifest.Hooks.Lifecycle, mergeEmptyStruct),
				hook.Build(manifest.Hooks.Alert, mergeEmptyStruct),
			).Applied(manifest.Policy),
		),
	)
	return err
}

func StartOrphanLoop(
	ctx context.Context,
	logger *log.Logger,
	b berth.Berth,
	manifest LoopManifest,
) error {
	l := byLogger(logger, Copied(), WithPrefix("[orphan loop]"))
	_, err := loop.Start(
		ctx, orphan.Seed(),
		monitor(
			l,
			orphan.Task(
				l,
				b.Instance().Database(),
				b.Instance().K8s(),
				b.Config().Grace().Orphan(),
			).Applied(manifest.Policy),
		),
	)
	return err
}

func StartExpiryLoop(
	ctx context.Context,
	logger *log.Logger,
	b berth.Berth,
	manifest LoopManifest,
) error {
	l := byLogger(logger, Copied(), WithPrefix("[expiry loop]"))
	_, err := loop.Start(
		ctx, expiry.Seed(),
		monitor(
			l,
			expiry.Task(
				l, b.Instance().Database(),
			).Applied(manifest.Policy),
		),
	)
	return err
}
