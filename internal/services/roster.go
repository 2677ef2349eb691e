package services

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
)

// ErrNoWardsForZone is returned when the roster has no rows for the zone.
var ErrNoWardsForZone = errors.New("no wards found for zone")

var rosterColumns = []string{"Zone", "UID", "WardName", "WardNum"}

// LoadRoster reads the roster CSV at path and returns the stations of zone.
func LoadRoster(path, zone string) ([]models.StationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	return ReadRoster(f, zone)
}

// ReadRoster parses roster rows and keeps those whose Zone matches zone,
// ignoring case. Zero matches is an error wrapping ErrNoWardsForZone.
func ReadRoster(r io.Reader, zone string) ([]models.StationRecord, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading roster: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("roster is empty")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range rosterColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("roster missing required column: %s", k)
		}
	}

	var out []models.StationRecord
	for rowIdx := 1; rowIdx < len(records); rowIdx++ {
		rec := records[rowIdx]
		get := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		rowZone := get("Zone")
		if !strings.EqualFold(rowZone, zone) {
			continue
		}

		uid, err := parseUID(get("UID"))
		if err != nil {
			return nil, fmt.Errorf("roster row %d: %w", rowIdx+1, err)
		}

		out = append(out, models.StationRecord{
			UID:        uid,
			WardName:   get("WardName"),
			WardNumber: get("WardNum"),
			Zone:       rowZone,
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoWardsForZone, zone)
	}

	return out, nil
}

// parseUID accepts integers and whole-valued floats such as "1234.0".
func parseUID(value string) (int, error) {
	if uid, err := strconv.Atoi(value); err == nil {
		return uid, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid UID %q", value)
	}
	return int(f), nil
}
