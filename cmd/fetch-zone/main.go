package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bobby-s-dev/ward-aqi/internal/config"
	"github.com/bobby-s-dev/ward-aqi/internal/logger"
	"github.com/bobby-s-dev/ward-aqi/internal/services"
	"go.uber.org/zap"
)

func main() {
	zone := flag.String("zone", "Najafgarh Zone", "zone to fetch, matched case-insensitively against the roster")
	csvPath := flag.String("csv", "", "roster CSV path (overrides ROSTER_CSV_PATH)")
	outDir := flag.String("out", "", "output directory (overrides OUTPUT_DIR)")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}
	if *csvPath != "" {
		cfg.Roster.CSVPath = *csvPath
	}
	if *outDir != "" {
		cfg.Roster.OutputDir = *outDir
	}

	log := logger.Must(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()
	zap.ReplaceGlobals(log)
	cfg.LogWarnings(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runZone(ctx, cfg, *zone, log); err != nil {
		log.Error("Zone fetch aborted", zap.String("zone", *zone), zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func runZone(ctx context.Context, cfg *config.Config, zone string, log *zap.Logger) error {
	fetcher, err := services.NewZoneFetcherFromConfig(cfg, log)
	if err != nil {
		return err
	}

	_, err = fetcher.RunZone(ctx, zone)
	return err
}
