package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
	"go.uber.org/zap"
)

// StatusOK is the feed status that marks a usable payload.
const StatusOK = "ok"

type WAQIClient struct {
	*BaseClient
	token   string
	baseURL string
}

// FeedResponse is the subset of the WAQI /feed/ response the pipeline reads.
// Every member is nullable; a missing object decodes to nil.
type FeedResponse struct {
	Status string    `json:"status"`
	Data   *FeedData `json:"data"`
	// Message holds "data" when the API sends a string instead of an
	// object, as it does for errors such as "Unknown station".
	Message string `json:"-"`
}

func (r *FeedResponse) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	r.Status = envelope.Status
	r.Data = nil
	r.Message = ""

	raw := bytes.TrimSpace(envelope.Data)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		var d FeedData
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("decoding data: %w", err)
		}
		r.Data = &d
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &r.Message); err != nil {
			return err
		}
	default:
		r.Message = string(raw)
	}
	return nil
}

type FeedData struct {
	AQI         FlexFloat                   `json:"aqi"`
	Idx         *int                        `json:"idx"`
	DominentPol *string                     `json:"dominentpol"`
	City        *FeedCity                   `json:"city"`
	IAQI        *FeedIAQI                   `json:"iaqi"`
	Time        models.ObservationTimeBlock `json:"time"`
	Forecast    *FeedForecast               `json:"forecast"`
}

type FeedCity struct {
	Name *string   `json:"name"`
	Geo  []float64 `json:"geo"`
	URL  *string   `json:"url"`
}

type FeedIAQI struct {
	PM25 *IAQIValue `json:"pm25"`
	PM10 *IAQIValue `json:"pm10"`
	NO2  *IAQIValue `json:"no2"`
	O3   *IAQIValue `json:"o3"`
	SO2  *IAQIValue `json:"so2"`
	CO   *IAQIValue `json:"co"`
}

type IAQIValue struct {
	V FlexFloat `json:"v"`
}

type FeedForecast struct {
	Daily *FeedDaily `json:"daily"`
}

type FeedDaily struct {
	PM25 []models.ForecastDay `json:"pm25"`
	PM10 []models.ForecastDay `json:"pm10"`
	UVI  []models.ForecastDay `json:"uvi"`
}

// FlexFloat decodes a number that WAQI may send as a JSON number, a numeric
// string, or "-" when the station has no value.
type FlexFloat struct {
	Value *float64
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		f.Value = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// "-" and other placeholders mean no reading
			f.Value = nil
			return nil
		}
		f.Value = &v
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// Ptr returns the decoded value or nil.
func (f FlexFloat) Ptr() *float64 {
	return f.Value
}

// Value returns the sub-index reading or nil when the pollutant is missing.
func (v *IAQIValue) Value() *float64 {
	if v == nil {
		return nil
	}
	return v.V.Ptr()
}

func NewWAQIClient(token, baseURL string, config ClientConfig, logger *zap.Logger) *WAQIClient {
	baseClient := NewBaseClient("waqi", config, logger)
	return &WAQIClient{
		BaseClient: baseClient,
		token:      token,
		baseURL:    baseURL,
	}
}

// FeedURL builds the station feed URL for uid.
func (c *WAQIClient) FeedURL(uid int) string {
	return fmt.Sprintf("%s/feed/@%d/?token=%s", c.baseURL, uid, url.QueryEscape(c.token))
}

// GetFeed fetches and decodes the feed of one station. The status field is
// returned as decoded; checking it is up to the caller.
func (c *WAQIClient) GetFeed(ctx context.Context, uid int) (*FeedResponse, error) {
	data, err := c.Get(ctx, c.FeedURL(uid))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed for station %d: %w", uid, err)
	}

	var response FeedResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse feed for station %d: %w", uid, err)
	}

	return &response, nil
}
