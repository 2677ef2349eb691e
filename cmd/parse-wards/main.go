package main

import (
	"flag"
	"os"

	"github.com/bobby-s-dev/ward-aqi/internal/config"
	"github.com/bobby-s-dev/ward-aqi/internal/logger"
	"github.com/bobby-s-dev/ward-aqi/internal/wards"
	"go.uber.org/zap"
)

func main() {
	in := flag.String("in", "", "plain-text ward listing (overrides WARDS_TEXT_PATH)")
	out := flag.String("out", "", "generated TypeScript file (overrides WARDS_TS_PATH)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}
	if *in != "" {
		cfg.Wards.TextPath = *in
	}
	if *out != "" {
		cfg.Wards.OutputPath = *out
	}

	log := logger.Must(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()
	cfg.LogWarnings(log)

	log.Info("Parsing ward listing", zap.String("path", cfg.Wards.TextPath))

	parser := wards.NewParser(wards.DefaultZones)
	res, err := parser.ParseFile(cfg.Wards.TextPath)
	if err != nil {
		log.Error("Failed to read ward listing", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}

	unknown := 0
	for _, e := range res.Entries {
		if e.Zone == wards.UnknownZone {
			unknown++
		}
	}
	log.Info("Parsed wards",
		zap.Int("lines", res.Lines),
		zap.Int("wards", len(res.Entries)),
		zap.Int("unknown_zone", unknown),
		zap.Int("skipped", res.Skipped))

	if err := wards.WriteTSFile(cfg.Wards.OutputPath, res.Entries); err != nil {
		log.Error("Failed to write output file", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}

	log.Info("Wrote ward module", zap.String("path", cfg.Wards.OutputPath))
}
