package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docmerge/internal/aggregate"
	"git.home.luguber.info/inful/docmerge/internal/config"
	"git.home.luguber.info/inful/docmerge/internal/daemon"
	"git.home.luguber.info/inful/docmerge/internal/docs"
	"git.home.luguber.info/inful/docmerge/internal/git"
	"git.home.luguber.info/inful/docmerge/internal/logfields"
	"git.home.luguber.info/inful/docmerge/internal/storage"
	"git.home.luguber.info/inful/docmerge/internal/workspace"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory (overrides configuration)"`
	} `cmd:"" help:"Aggregate documentation from configured repositories"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Discover struct {
		Repository string `short:"r" help:"Limit discovery to one repository"`
	} `cmd:"" help:"Extract and list documentation without merging or writing"`

	Daemon struct{} `cmd:"" help:"Run continuous aggregation with scheduling and metrics"`
}

func main() {
	kctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	var err error
	switch kctx.Command() {
	case "build":
		err = runBuild()
	case "init":
		err = runInit()
	case "discover":
		err = runDiscover()
	case "daemon":
		err = runDaemon()
	default:
		err = fmt.Errorf("unknown command: %s", kctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

func runBuild() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Build.Output != "" {
		cfg.Output.Directory = CLI.Build.Output
	}

	manager := newWorkspaceManager(cfg)
	if err := manager.Create(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Cleanup(); err != nil {
			slog.Warn("Workspace cleanup failed", logfields.Error(err))
		}
	}()

	ctx, stop := signalContext()
	defer stop()

	pipeline := aggregate.New(cfg, git.NewClient(manager.GetPath()))
	report, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	for _, warning := range report.Warnings {
		slog.Warn("Repository skipped", logfields.Repository(warning.Repo), logfields.Error(warning.Err))
	}

	writer := storage.NewWriter(cfg.Output.Directory)
	if err := writer.Write(report.Collection, report.IndexText); err != nil {
		return err
	}

	fmt.Printf("Aggregated %d documents from %d repositories into %s (%d conflicts, %d links rewritten)\n",
		report.Collection.TotalDocuments(), len(report.Repositories),
		cfg.Output.Directory, report.Conflicts, report.LinkStats.Rewritten)
	return nil
}

func runInit() error {
	if _, err := os.Stat(CLI.Config); err == nil && !CLI.Init.Force {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", CLI.Config)
	}
	if err := config.DefaultConfig().Save(CLI.Config); err != nil {
		return err
	}
	fmt.Printf("Created configuration file: %s\n", CLI.Config)
	return nil
}

func runDiscover() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	manager := newWorkspaceManager(cfg)
	if err := manager.Create(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Cleanup(); err != nil {
			slog.Warn("Workspace cleanup failed", logfields.Error(err))
		}
	}()

	ctx, stop := signalContext()
	defer stop()

	repositories := cfg.Repositories
	if CLI.Discover.Repository != "" {
		repositories = nil
		for _, repo := range cfg.Repositories {
			if repo.Name == CLI.Discover.Repository {
				repositories = append(repositories, repo)
			}
		}
		if len(repositories) == 0 {
			return fmt.Errorf("repository %q not found in configuration", CLI.Discover.Repository)
		}
	}

	client := git.NewClient(manager.GetPath())
	paths, err := client.Acquire(ctx, repositories)
	if err != nil {
		return err
	}

	extractor := docs.NewExtractor(cfg.Sections)
	for _, repo := range repositories {
		documents, err := extractor.Extract(repo.Name, paths[repo.Name])
		if err != nil {
			slog.Warn("Repository skipped", logfields.Repository(repo.Name), logfields.Error(err))
			continue
		}
		perSection := make(map[string]int)
		for _, doc := range documents {
			perSection[doc.Section]++
		}
		sections := make([]string, 0, len(perSection))
		for section := range perSection {
			sections = append(sections, section)
		}
		sort.Strings(sections)
		fmt.Printf("%s: %d documents\n", repo.Name, len(documents))
		for _, section := range sections {
			fmt.Printf("  %s: %d\n", section, perSection[section])
		}
	}
	return nil
}

func runDaemon() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}

	d, err := daemon.New(CLI.Config, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	return d.Run(ctx)
}

func newWorkspaceManager(cfg *config.Config) *workspace.Manager {
	if cfg.Workspace.Persistent {
		return workspace.NewPersistentManager(cfg.Workspace.Directory)
	}
	return workspace.NewManager(cfg.Workspace.Directory)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
