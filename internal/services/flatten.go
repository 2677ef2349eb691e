package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
	"github.com/bobby-s-dev/ward-aqi/pkg/client"
)

var emptyTimeBlock = json.RawMessage(`{}`)

// FlattenReading maps one station feed to the flat per-ward document.
// generatedAt is stamped as the document's generation time, not the
// observation time.
func FlattenReading(station models.StationRecord, zone string, d *client.FeedData, generatedAt time.Time) (*models.WardReading, error) {
	if d == nil {
		return nil, fmt.Errorf("feed for station %d has no data", station.UID)
	}

	normalized, err := NormalizeTime(d.Time)
	if err != nil {
		return nil, fmt.Errorf("normalizing observation time: %w", err)
	}

	reading := &models.WardReading{
		Zone:           zone,
		WardNumber:     station.WardNumber,
		WardName:       station.WardName,
		StationUID:     station.UID,
		GeneratedAtIST: FormatISO(generatedAt.In(IST)),

		AQI:         d.AQI.Ptr(),
		Idx:         d.Idx,
		DominentPol: d.DominentPol,

		TimestampISTISO:   normalized.ISO,
		TimestampISTEpoch: normalized.Epoch,
		ReadingDateIST:    normalized.Date,
		ReadingTimeIST:    normalized.Time,

		TimeRaw: d.Time.Raw,
	}
	if len(reading.TimeRaw) == 0 {
		reading.TimeRaw = emptyTimeBlock
	}

	if c := d.City; c != nil {
		reading.CityName = c.Name
		reading.CityGeo = c.Geo
		reading.CityURL = c.URL
	}

	if i := d.IAQI; i != nil {
		reading.IAQIPM25 = i.PM25.Value()
		reading.IAQIPM10 = i.PM10.Value()
		reading.IAQINO2 = i.NO2.Value()
		reading.IAQIO3 = i.O3.Value()
		reading.IAQISO2 = i.SO2.Value()
		reading.IAQICO = i.CO.Value()
	}

	if f := d.Forecast; f != nil && f.Daily != nil {
		reading.ForecastDailyPM25 = f.Daily.PM25
		reading.ForecastDailyPM10 = f.Daily.PM10
		reading.ForecastDailyUVI = f.Daily.UVI
	}

	return reading, nil
}
