package services

import (
	"context"
	"fmt"
	"time"

	"github.com/bobby-s-dev/ward-aqi/internal/config"
	"github.com/bobby-s-dev/ward-aqi/internal/models"
	"github.com/bobby-s-dev/ward-aqi/pkg/client"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FeedClient interface {
	GetFeed(ctx context.Context, uid int) (*client.FeedResponse, error)
}

// ZoneFetcher fetches every ward of a zone one at a time and writes one file
// per ward. Per-ward failures are logged and skipped.
type ZoneFetcher struct {
	feeds      FeedClient
	writer     *WardFileWriter
	logger     *zap.Logger
	rosterPath string
	delay      time.Duration
	now        func() time.Time
}

// ZoneStats summarises one zone run.
type ZoneStats struct {
	Zone     string
	RunID    string
	Wards    int
	Saved    int
	Skipped  int
	Failed   int
	Duration time.Duration
}

func NewZoneFetcher(feeds FeedClient, writer *WardFileWriter, rosterPath string, delay time.Duration, logger *zap.Logger) *ZoneFetcher {
	return &ZoneFetcher{
		feeds:      feeds,
		writer:     writer,
		logger:     logger,
		rosterPath: rosterPath,
		delay:      delay,
		now:        time.Now,
	}
}

// NewZoneFetcherFromConfig wires the WAQI client and file writer from cfg.
// It fails when no API token is configured.
func NewZoneFetcherFromConfig(cfg *config.Config, logger *zap.Logger) (*ZoneFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	waqi := client.NewWAQIClient(
		cfg.WAQI.APIToken,
		cfg.WAQI.BaseURL,
		client.ClientConfig{Timeout: cfg.WAQI.Timeout},
		logger,
	)
	logger.Info("WAQI client initialized", zap.String("base_url", cfg.WAQI.BaseURL))

	return NewZoneFetcher(
		waqi,
		NewWardFileWriter(cfg.Roster.OutputDir),
		cfg.Roster.CSVPath,
		cfg.WAQI.Delay,
		logger,
	), nil
}

// SetClock replaces the wall clock used for generated_at_ist.
func (f *ZoneFetcher) SetClock(now func() time.Time) {
	f.now = now
}

// RunZone loads the roster for zone and fetches each of its wards. Roster
// errors are returned before any request is made.
func (f *ZoneFetcher) RunZone(ctx context.Context, zone string) (*ZoneStats, error) {
	stations, err := LoadRoster(f.rosterPath, zone)
	if err != nil {
		return nil, err
	}

	return f.FetchStations(ctx, zone, stations)
}

// FetchStations fetches stations in order. The only error it returns is a
// cancelled context; everything else is per ward.
func (f *ZoneFetcher) FetchStations(ctx context.Context, zone string, stations []models.StationRecord) (*ZoneStats, error) {
	stats := &ZoneStats{
		Zone:  zone,
		RunID: uuid.NewString(),
		Wards: len(stations),
	}
	log := f.logger.With(zap.String("zone", zone), zap.String("run_id", stats.RunID))

	startTime := time.Now()
	log.Info("Starting zone fetch", zap.Int("wards", len(stations)))

	for _, station := range stations {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(startTime)
			return stats, err
		}

		saved, err := f.fetchWard(ctx, log, zone, station)
		switch {
		case err != nil:
			stats.Failed++
			log.Error("Failed to fetch ward",
				zap.String("ward_number", station.WardNumber),
				zap.Int("station_uid", station.UID),
				zap.Error(err))
			continue
		case !saved:
			stats.Skipped++
			continue
		}

		stats.Saved++
		if err := f.wait(ctx); err != nil {
			stats.Duration = time.Since(startTime)
			return stats, err
		}
	}

	stats.Duration = time.Since(startTime)
	log.Info("Zone completed",
		zap.Int("wards", stats.Wards),
		zap.Int("saved", stats.Saved),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Duration("duration", stats.Duration))

	return stats, nil
}

// fetchWard reports whether a file was written. A non-ok API status is a
// skip, not an error.
func (f *ZoneFetcher) fetchWard(ctx context.Context, log *zap.Logger, zone string, station models.StationRecord) (bool, error) {
	resp, err := f.feeds.GetFeed(ctx, station.UID)
	if err != nil {
		return false, err
	}

	if resp.Status != client.StatusOK {
		log.Warn("API returned non-ok status",
			zap.String("ward_number", station.WardNumber),
			zap.String("status", resp.Status),
			zap.String("message", resp.Message))
		return false, nil
	}

	reading, err := FlattenReading(station, zone, resp.Data, f.now())
	if err != nil {
		return false, err
	}

	path, err := f.writer.Write(reading)
	if err != nil {
		return false, fmt.Errorf("saving ward: %w", err)
	}

	log.Info("Saved ward",
		zap.String("ward_number", station.WardNumber),
		zap.String("path", path))
	return true, nil
}

func (f *ZoneFetcher) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
