package models

import (
	"bytes"
	"encoding/json"
)

// StationRecord is one row of the ward monitoring roster.
type StationRecord struct {
	UID        int    `json:"uid"`
	WardName   string `json:"ward_name"`
	WardNumber string `json:"ward_number"`
	Zone       string `json:"zone"`
}

// ObservationTimeBlock is the "time" object of a WAQI feed. ISO and Epoch are
// the two candidate sources for the observation instant; Raw keeps the block
// exactly as received.
type ObservationTimeBlock struct {
	ISO   *string
	Epoch *int64
	Raw   json.RawMessage
}

func (b *ObservationTimeBlock) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var fields struct {
		ISO *string  `json:"iso"`
		V   *float64 `json:"v"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	b.ISO = fields.ISO
	if fields.V != nil {
		epoch := int64(*fields.V)
		b.Epoch = &epoch
	}
	b.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// NormalizedTime is an observation instant expressed in IST. All fields are
// nil together when the source block carried no usable time.
type NormalizedTime struct {
	ISO   *string
	Epoch *int64
	Date  *string
	Time  *string
}

// ForecastDay is one entry of a daily forecast series. Keys missing from the
// API entry stay missing in the output.
type ForecastDay struct {
	Avg *float64 `json:"avg,omitempty"`
	Day *string  `json:"day,omitempty"`
	Max *float64 `json:"max,omitempty"`
	Min *float64 `json:"min,omitempty"`
}

// WardReading is the flat per-ward document written to disk. Field order is
// the order of keys in the output file.
type WardReading struct {
	Zone           string `json:"zone"`
	WardNumber     string `json:"ward_number"`
	WardName       string `json:"ward_name"`
	StationUID     int    `json:"station_uid"`
	GeneratedAtIST string `json:"generated_at_ist"`

	AQI         *float64 `json:"aqi"`
	Idx         *int     `json:"idx"`
	DominentPol *string  `json:"dominentpol"`

	CityName *string   `json:"city_name"`
	CityGeo  []float64 `json:"city_geo"`
	CityURL  *string   `json:"city_url"`

	IAQIPM25 *float64 `json:"iaqi_pm25"`
	IAQIPM10 *float64 `json:"iaqi_pm10"`
	IAQINO2  *float64 `json:"iaqi_no2"`
	IAQIO3   *float64 `json:"iaqi_o3"`
	IAQISO2  *float64 `json:"iaqi_so2"`
	IAQICO   *float64 `json:"iaqi_co"`

	TimestampISTISO   *string `json:"timestamp_ist_iso"`
	TimestampISTEpoch *int64  `json:"timestamp_ist_epoch"`
	ReadingDateIST    *string `json:"reading_date_ist"`
	ReadingTimeIST    *string `json:"reading_time_ist"`

	TimeRaw json.RawMessage `json:"time_raw"`

	ForecastDailyPM25 []ForecastDay `json:"forecast_daily_pm25"`
	ForecastDailyPM10 []ForecastDay `json:"forecast_daily_pm10"`
	ForecastDailyUVI  []ForecastDay `json:"forecast_daily_uvi"`
}

// WardRosterEntry is one ward parsed from the plain-text roster.
type WardRosterEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Zone string `json:"zone"`
}
