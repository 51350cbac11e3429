package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/syncmv/pkg/config"
	"github.com/walteh/syncmv/pkg/log"
	"github.com/walteh/syncmv/pkg/monitor"
	"github.com/walteh/syncmv/pkg/oracle"
	"github.com/walteh/syncmv/pkg/prune"
	"github.com/walteh/syncmv/pkg/transfer"
)

// run wires the pipeline together and executes one migration run
func run(ctx context.Context, cfg *config.Config) error {
	logger := zerolog.Ctx(ctx)
	processStart := time.Now()

	logger.Debug().Str("config", cfg.String()).Msg("starting run")

	// Unresolvable roots are the one fatal startup condition
	srcRoot, err := resolveRoot(cfg.Source)
	if err != nil {
		return errors.Errorf("resolving source root: %w", err)
	}
	destRoot, err := resolveRoot(cfg.Destination)
	if err != nil {
		return errors.Errorf("resolving destination root: %w", err)
	}

	runLog, closeLog, err := openRunLog(cfg.LogFile, *logger)
	if err != nil {
		return errors.Errorf("opening run log: %w", err)
	}
	defer closeLog()

	probe, err := buildProbe(cfg)
	if err != nil {
		return errors.Errorf("building sync status probe: %w", err)
	}

	done := oracle.DefaultDoneMatcher()
	if len(cfg.DonePatterns) > 0 {
		done = oracle.Variants(cfg.DonePatterns)
	}
	inProgress := oracle.DefaultInProgressMatcher()
	if len(cfg.InProgressPatterns) > 0 {
		inProgress = oracle.Variants(cfg.InProgressPatterns)
	}

	events := make(chan transfer.Event, 64)

	mon, err := monitor.New(monitor.Options{
		Probe:          probe,
		Done:           done,
		InProgress:     inProgress,
		PollInterval:   cfg.PollInterval(),
		Timeout:        cfg.Timeout(),
		StableRequired: cfg.StablePolls,
		RunLog:         runLog,
		ProcessStart:   processStart,
		OnPoll: func(obs monitor.Observation) {
			events <- transfer.Event{Type: transfer.EventPollTick, Dest: obs.Dest, Poll: &obs}
		},
	})
	if err != nil {
		return errors.Errorf("creating stability monitor: %w", err)
	}

	cancel := transfer.NewSignal()
	watchInterrupt(ctx, cancel, runLog)

	orch, err := transfer.New(transfer.Options{
		SourceRoot:     srcRoot,
		DestRoot:       destRoot,
		Monitor:        mon,
		Pruner:         prune.New(runLog),
		Cancel:         cancel,
		RunLog:         runLog,
		Events:         func(ev transfer.Event) { events <- ev },
		MaxFiles:       cfg.MaxFiles,
		IgnorePatterns: cfg.IgnorePatterns,
		PruneEmptyDirs: !cfg.NoPrune,
		PruneWholeTree: cfg.PruneWholeTree,
	})
	if err != nil {
		return errors.Errorf("creating orchestrator: %w", err)
	}

	// The renderer consumes events next to the single-threaded pipeline
	g, gctx := errgroup.WithContext(ctx)
	renderer := newRenderer(processStart)
	g.Go(func() error {
		renderer.consume(events)
		return nil
	})

	var sum transfer.Summary
	g.Go(func() error {
		defer close(events)
		var runErr error
		sum, runErr = orch.Run(gctx)
		return runErr
	})

	if err := g.Wait(); err != nil {
		return errors.Errorf("running migration: %w", err)
	}

	renderer.summary(sum)
	return nil
}

// resolveRoot turns a configured root into an absolute path of an existing
// directory
func resolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Errorf("statting %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", errors.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// openRunLog opens the run log file, or a console-only logger when no path
// is configured
func openRunLog(path string, zlog zerolog.Logger) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(nil, zlog), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.Errorf("opening %s: %w", path, err)
	}
	return log.New(f, zlog), func() { f.Close() }, nil
}

// buildProbe constructs the configured oracle probe
func buildProbe(cfg *config.Config) (oracle.Probe, error) {
	if cfg.StatusCommand == "" || cfg.FieldNameCommand == "" {
		return nil, errors.Errorf("status_command and field_name_command are required")
	}
	runner, err := oracle.NewExecRunner(cfg.FieldNameCommand, cfg.StatusCommand)
	if err != nil {
		return nil, errors.Errorf("creating exec runner: %w", err)
	}
	return oracle.NewShellProbe(runner, oracle.ShellProbeOptions{})
}

// watchInterrupt sets the cancellation signal on the first interrupt. The
// signal is an explicit flag honored at file boundaries, not a handler with
// implicit global effect.
func watchInterrupt(ctx context.Context, cancel *transfer.Signal, runLog *log.Logger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		select {
		case <-ch:
			runLog.Warnf("interrupt received, finishing the in-flight file before stopping")
			cancel.Set()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
}
