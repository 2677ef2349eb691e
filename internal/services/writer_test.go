package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
)

func TestWardFileWriterWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "wards", "najafgarh")
	w := NewWardFileWriter(dir)

	name := "Dwarka <B> & Co"
	reading := &models.WardReading{
		Zone:       "Najafgarh Zone",
		WardNumber: "131",
		WardName:   name,
		StationUID: 8190,
		TimeRaw:    json.RawMessage(`{}`),
	}

	path, err := w.Write(reading)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if path != filepath.Join(dir, "ward_131.json") {
		t.Errorf("Unexpected path %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n    \"zone\": \"Najafgarh Zone\",") {
		t.Errorf("Expected 4-space indentation, got:\n%s", data)
	}
	if !strings.Contains(string(data), name) {
		t.Errorf("Expected ward name without HTML escaping, got:\n%s", data)
	}

	var back models.WardReading
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if back.AQI != nil || back.CityGeo != nil {
		t.Errorf("Expected absent values to stay null, got %+v", back)
	}
}

func TestWardFileWriterReplacesShorterContent(t *testing.T) {
	w := NewWardFileWriter(t.TempDir())

	long := &models.WardReading{WardNumber: "7", WardName: strings.Repeat("x", 200)}
	if _, err := w.Write(long); err != nil {
		t.Fatal(err)
	}
	short := &models.WardReading{WardNumber: "7", WardName: "y"}
	path, err := w.Write(short)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "xxx") {
		t.Errorf("Expected previous content to be replaced, got:\n%s", data)
	}
}
