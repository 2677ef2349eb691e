package services

import (
	"fmt"
	"time"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
)

// IST is Indian Standard Time. It has no DST, so a fixed zone avoids a
// dependency on the tzdata database.
var IST = time.FixedZone("IST", 5*60*60+30*60)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

// localISOLayouts are tried when an ISO timestamp carries no offset. Such
// timestamps are read as IST.
var localISOLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	dateLayout,
}

// NormalizeTime converts a WAQI time block to IST. A non-empty ISO string
// wins over the epoch; the two are never cross-checked. A block with neither
// yields a zero NormalizedTime.
func NormalizeTime(block models.ObservationTimeBlock) (models.NormalizedTime, error) {
	t, ok, err := observationInstant(block)
	if err != nil || !ok {
		return models.NormalizedTime{}, err
	}
	return Normalized(t), nil
}

// Normalized renders t in IST as the four derived fields.
func Normalized(t time.Time) models.NormalizedTime {
	t = t.In(IST)

	iso := FormatISO(t)
	epoch := t.Unix()
	date := t.Format(dateLayout)
	clock := t.Format(clockLayout)
	if micros := t.Nanosecond() / 1000; micros != 0 {
		clock = fmt.Sprintf("%s.%06d", clock, micros)
	}

	return models.NormalizedTime{
		ISO:   &iso,
		Epoch: &epoch,
		Date:  &date,
		Time:  &clock,
	}
}

// FormatISO formats t with its offset, adding microseconds only when the
// sub-second part is non-zero.
func FormatISO(t time.Time) string {
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}

func observationInstant(block models.ObservationTimeBlock) (time.Time, bool, error) {
	if block.ISO != nil && *block.ISO != "" {
		t, err := parseISO(*block.ISO)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}

	// zero epoch is treated as absent
	if block.Epoch != nil && *block.Epoch != 0 {
		return time.Unix(*block.Epoch, 0).UTC(), true, nil
	}

	return time.Time{}, false, nil
}

func parseISO(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	for _, layout := range localISOLayouts {
		if t, err := time.ParseInLocation(layout, value, IST); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO timestamp %q", value)
}
