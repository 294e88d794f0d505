// Package daemon runs continuous aggregation: periodic re-runs on a
// schedule, config reloads on file change, and an HTTP endpoint for health
// and metrics.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/docmerge/internal/aggregate"
	"git.home.luguber.info/inful/docmerge/internal/config"
	"git.home.luguber.info/inful/docmerge/internal/events"
	"git.home.luguber.info/inful/docmerge/internal/git"
	"git.home.luguber.info/inful/docmerge/internal/logfields"
	"git.home.luguber.info/inful/docmerge/internal/metrics"
	"git.home.luguber.info/inful/docmerge/internal/state"
	"git.home.luguber.info/inful/docmerge/internal/storage"
	"git.home.luguber.info/inful/docmerge/internal/workspace"
)

// Daemon coordinates scheduled aggregation runs.
type Daemon struct {
	configPath string
	recorder   *metrics.PrometheusRecorder
	store      *state.Store
	publisher  events.Publisher

	mu  sync.Mutex
	cfg *config.Config
}

// New creates a daemon for the given loaded configuration.
func New(configPath string, cfg *config.Config) (*Daemon, error) {
	store, err := state.NewStore(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run-history store: %w", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		natsPublisher, err := events.NewNATSPublisher(cfg.Events)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		publisher = natsPublisher
	}

	return &Daemon{
		configPath: configPath,
		recorder:   metrics.NewPrometheusRecorder(),
		store:      store,
		publisher:  publisher,
		cfg:        cfg,
	}, nil
}

// Run blocks until ctx is cancelled, executing one aggregation immediately
// and then on every schedule tick.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.publisher.Close()
	defer func() { _ = d.store.Close() }()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	interval := time.Duration(d.config().Daemon.Interval)
	if _, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { d.runOnce(ctx) }),
		gocron.WithName("aggregate"),
	); err != nil {
		return fmt.Errorf("failed to schedule aggregation job: %w", err)
	}

	watcher, err := newConfigWatcher(d.configPath, d.reloadConfig)
	if err != nil {
		slog.Warn("Config watching disabled", logfields.Error(err))
	} else {
		go watcher.run(ctx)
		defer watcher.close()
	}

	server := newHTTPServer(d.config().Daemon.Listen, d.recorder, d.store)
	go server.serve()
	defer server.shutdown()

	slog.Info("Daemon started",
		slog.String("interval", interval.String()),
		slog.String("listen", d.config().Daemon.Listen))

	scheduler.Start()
	d.runOnce(ctx)

	<-ctx.Done()
	slog.Info("Daemon stopping")
	return scheduler.Shutdown()
}

func (d *Daemon) config() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

func (d *Daemon) reloadConfig() {
	cfg, err := config.Load(d.configPath)
	if err != nil {
		slog.Warn("Config reload failed, keeping previous configuration", logfields.Error(err))
		return
	}
	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()
	slog.Info("Configuration reloaded", logfields.Path(d.configPath))
}

// runOnce executes one full aggregation cycle and records its outcome.
func (d *Daemon) runOnce(ctx context.Context) {
	cfg := d.config()

	var manager *workspace.Manager
	if cfg.Workspace.Persistent {
		manager = workspace.NewPersistentManager(cfg.Workspace.Directory)
	} else {
		manager = workspace.NewManager(cfg.Workspace.Directory)
	}
	if err := manager.Create(); err != nil {
		slog.Error("Workspace creation failed", logfields.Error(err))
		return
	}
	defer func() {
		if err := manager.Cleanup(); err != nil {
			slog.Warn("Workspace cleanup failed", logfields.Error(err))
		}
	}()

	pipeline := aggregate.New(cfg, git.NewClient(manager.GetPath())).
		WithRecorder(d.recorder).
		WithPublisher(d.publisher)

	report, err := pipeline.Run(ctx)
	if err != nil {
		slog.Error("Aggregation run failed", logfields.Error(err))
		d.recordRun(ctx, &aggregate.Report{RunID: uuid.NewString(), StartedAt: time.Now()}, false)
		return
	}

	writer := storage.NewWriter(cfg.Output.Directory)
	if err := writer.Write(report.Collection, report.IndexText); err != nil {
		slog.Error("Failed to write aggregated collection", logfields.Error(err))
		d.recordRun(ctx, report, false)
		return
	}

	d.recordRun(ctx, report, true)
}

func (d *Daemon) recordRun(ctx context.Context, report *aggregate.Report, success bool) {
	record := state.RunRecord{
		ID:        report.RunID,
		StartedAt: report.StartedAt,
		Duration:  report.Duration,
		Success:   success,
	}
	if report.Collection != nil {
		record.Repositories = len(report.Repositories)
		record.Documents = report.Collection.TotalDocuments()
		record.Conflicts = report.Conflicts
		record.LinksRewritten = report.LinkStats.Rewritten
		record.Fingerprint = report.Fingerprint
	}
	for _, w := range report.Warnings {
		record.Warnings = append(record.Warnings, w.Error())
	}
	if err := d.store.RecordRun(ctx, record); err != nil {
		slog.Warn("Failed to record run history", logfields.Error(err))
	}
}
