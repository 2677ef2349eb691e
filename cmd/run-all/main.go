package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bobby-s-dev/ward-aqi/internal/batch"
	"github.com/bobby-s-dev/ward-aqi/internal/config"
	"github.com/bobby-s-dev/ward-aqi/internal/logger"
	"github.com/bobby-s-dev/ward-aqi/internal/scheduler"
	"github.com/bobby-s-dev/ward-aqi/internal/services"
	"go.uber.org/zap"
)

func main() {
	zone := flag.String("zone", "", "run a single zone and exit (used for subprocess units)")
	zones := flag.String("zones", "", "comma-separated zones in run order (overrides ZONES)")
	inProcess := flag.Bool("inprocess", false, "run zones in this process instead of as subprocesses")
	schedule := flag.String("schedule", "", "cron schedule for repeated batches (overrides BATCH_SCHEDULE)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}
	if *zones != "" {
		cfg.Batch.Zones = nil
		for _, z := range strings.Split(*zones, ",") {
			if z = strings.TrimSpace(z); z != "" {
				cfg.Batch.Zones = append(cfg.Batch.Zones, z)
			}
		}
	}
	if *schedule != "" {
		cfg.Batch.Schedule = *schedule
	}

	log := logger.Must(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()
	zap.ReplaceGlobals(log)
	cfg.LogWarnings(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *zone != "" {
		code := runSingleZone(ctx, cfg, *zone, log)
		log.Sync()
		os.Exit(code)
	}

	// Fail before starting any unit when the token is missing
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	units, err := buildUnits(cfg, *inProcess, log)
	if err != nil {
		log.Fatal("Failed to build batch", zap.Error(err))
	}
	runner := batch.NewRunner(units, log)

	if cfg.Batch.Schedule == "" {
		res := runner.Run(ctx)
		if res.Err != nil {
			log.Error("Batch stopped",
				zap.String("failed_unit", res.Failed),
				zap.Strings("ran", res.Ran),
				zap.Error(res.Err))
			log.Sync()
			os.Exit(1)
		}
		return
	}

	sched, err := scheduler.NewScheduler(cfg.Batch.Schedule, func(ctx context.Context) error {
		return runner.Run(ctx).Err
	}, true, log)
	if err != nil {
		log.Fatal("Failed to create scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	<-ctx.Done()
	log.Info("Shutting down scheduler...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler shutdown failed", zap.Error(err))
	}
	log.Info("Scheduler stopped")
}

func buildUnits(cfg *config.Config, inProcess bool, log *zap.Logger) ([]batch.Unit, error) {
	if inProcess {
		fetcher, err := services.NewZoneFetcherFromConfig(cfg, log)
		if err != nil {
			return nil, err
		}
		return inProcessUnits(fetcher, cfg.Batch.Zones), nil
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return subprocessUnits(exe, cfg.Batch.Zones), nil
}

func runSingleZone(ctx context.Context, cfg *config.Config, zone string, log *zap.Logger) int {
	fetcher, err := services.NewZoneFetcherFromConfig(cfg, log)
	if err != nil {
		log.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	if _, err := fetcher.RunZone(ctx, zone); err != nil {
		log.Error("Zone fetch aborted", zap.String("zone", zone), zap.Error(err))
		return 1
	}
	return 0
}
