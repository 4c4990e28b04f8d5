package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rzbill/cse/internal/config"
	"github.com/rzbill/cse/pkg/log"
	"github.com/rzbill/cse/pkg/migration"
	"github.com/rzbill/cse/pkg/store"
	"github.com/rzbill/cse/pkg/types"
	"github.com/rzbill/cse/pkg/version"
)

var (
	configFile    = flag.String("config", "", "Configuration file path")
	dataDir       = flag.String("data-dir", "", "Data directory (overrides config)")
	logLevel      = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	debugLogLevel = flag.Bool("debug", false, "Enable debug mode (shorthand for --log-level=debug)")
	logFormat     = flag.String("log-format", "", "Log format (text, json)")
	schedule      = flag.String("schedule", "", "Migration cron schedule (overrides config)")
	dryRun        = flag.Bool("dry-run", false, "Convert and validate without writing")
	showHelp      = flag.Bool("help", false, "Show help")
	showVer       = flag.Bool("version", false, "Show version")
)

// applyFlags overrides configuration with the flags given on the command line.
func applyFlags(cfg *config.Config) {
	cmdFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		cmdFlags[f.Name] = true
	})

	if cmdFlags["data-dir"] {
		cfg.DataDir = *dataDir
	}
	if cmdFlags["log-level"] {
		cfg.Log.Level = *logLevel
	}
	if *debugLogLevel {
		cfg.Log.Level = "debug"
	}
	if cmdFlags["log-format"] {
		cfg.Log.Format = *logFormat
	}
	if cmdFlags["schedule"] {
		cfg.Migration.Schedule = *schedule
		cfg.Migration.Enabled = true
	}
	if cmdFlags["dry-run"] {
		cfg.Migration.DryRun = *dryRun
	}
}

func main() {
	flag.Parse()

	if *showHelp {
		flag.Usage()
		return
	}
	if *showVer {
		fmt.Println(version.Info())
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.ApplyConfig(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	log.SetDefaultLogger(logger)
	logger = logger.WithComponent("csed")

	logger.Info("Starting cse daemon", log.Str("version", version.Version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal", log.Str("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Daemon failed", log.Err(err))
		os.Exit(1)
	}
	logger.Info("cse daemon stopped")
}

// run opens the entity store and runs the migration scheduler until ctx is done.
func run(ctx context.Context, cfg *config.Config, logger log.Logger) error {
	storeDir := cfg.StorePath()
	logger.Info("Opening entity store", log.Str("backend", cfg.Store.Backend), log.Str("path", storeDir))
	backend, err := store.OpenBackend(cfg.Store.Backend, storeDir, logger)
	if err != nil {
		return fmt.Errorf("failed to open entity store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close entity store", log.Err(err))
		}
	}()

	client := store.NewClient(backend,
		store.WithPageSize(cfg.Store.PageSize),
		store.WithLogger(logger))

	if !cfg.Migration.Enabled {
		logger.Warn("Migration sweep disabled, nothing to do until stopped")
		<-ctx.Done()
		return nil
	}

	scheduler, err := newMigrationScheduler(cfg, client, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	<-ctx.Done()
	scheduler.Stop()

	if report := scheduler.LastReport(); report != nil {
		logger.Info("Last migration sweep",
			log.Int("migrated", len(report.Migrated)),
			log.Int("failed", len(report.Failed)),
			log.Duration("duration", report.Duration))
	}
	return nil
}

// newMigrationScheduler builds the sweep described by the migration settings.
func newMigrationScheduler(cfg *config.Config, entities store.EntityStore, logger log.Logger) (*migration.Scheduler, error) {
	source, err := types.ParseGeneration(cfg.Migration.Source)
	if err != nil {
		return nil, err
	}
	target, err := types.ParseGeneration(cfg.Migration.Target)
	if err != nil {
		return nil, err
	}
	sourceRef := types.EntityTypeRef{Vendor: cfg.Entity.Vendor, Nss: cfg.Entity.Nss, Version: string(source)}

	sweeper := migration.NewSweeper(entities, sourceRef, target,
		migration.WithDryRun(cfg.Migration.DryRun),
		migration.WithLogger(logger))

	logger.Info("Scheduling migration sweep",
		log.Str("schedule", cfg.Migration.Schedule),
		log.Str("from", sourceRef.ID()),
		log.Str("to", target.String()),
		log.Bool("dryRun", cfg.Migration.DryRun))
	return migration.NewScheduler(sweeper, cfg.Migration.Schedule, logger)
}
