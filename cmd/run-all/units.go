package main

import (
	"context"

	"github.com/bobby-s-dev/ward-aqi/internal/batch"
	"github.com/bobby-s-dev/ward-aqi/internal/services"
)

// subprocessUnits runs each zone as "<exe> -zone <zone>" so a crash in one
// zone cannot take the batch process down with it.
func subprocessUnits(exe string, zones []string) []batch.Unit {
	units := make([]batch.Unit, 0, len(zones))
	for _, zone := range zones {
		units = append(units, batch.CommandUnit{
			UnitName: zone,
			Path:     exe,
			Args:     []string{"-zone", zone},
		})
	}
	return units
}

func inProcessUnits(fetcher *services.ZoneFetcher, zones []string) []batch.Unit {
	units := make([]batch.Unit, 0, len(zones))
	for _, zone := range zones {
		zone := zone
		units = append(units, batch.FuncUnit{
			UnitName: zone,
			Fn: func(ctx context.Context) error {
				_, err := fetcher.RunZone(ctx, zone)
				return err
			},
		})
	}
	return units
}
