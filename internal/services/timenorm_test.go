package services

import (
	"testing"
	"time"

	"github.com/bobby-s-dev/ward-aqi/internal/models"
)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func TestNormalizeTimeISOOnly(t *testing.T) {
	tests := []struct {
		name      string
		iso       string
		wantISO   string
		wantDate  string
		wantClock string
	}{
		{"ist offset", "2024-01-15T14:00:00+05:30", "2024-01-15T14:00:00+05:30", "2024-01-15", "14:00:00"},
		{"utc crosses midnight", "2024-01-15T20:00:00Z", "2024-01-16T01:30:00+05:30", "2024-01-16", "01:30:00"},
		{"negative offset", "2024-01-15T06:00:00-04:00", "2024-01-15T15:30:00+05:30", "2024-01-15", "15:30:00"},
		{"fractional seconds", "2024-01-15T08:30:00.25Z", "2024-01-15T14:00:00.250000+05:30", "2024-01-15", "14:00:00.250000"},
		{"no offset reads as ist", "2024-01-15T14:00:00", "2024-01-15T14:00:00+05:30", "2024-01-15", "14:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTime(models.ObservationTimeBlock{ISO: strPtr(tt.iso)})
			if err != nil {
				t.Fatalf("NormalizeTime failed: %v", err)
			}

			if *got.ISO != tt.wantISO {
				t.Errorf("Expected ISO %s, got %s", tt.wantISO, *got.ISO)
			}
			if *got.Date != tt.wantDate {
				t.Errorf("Expected date %s, got %s", tt.wantDate, *got.Date)
			}
			if *got.Time != tt.wantClock {
				t.Errorf("Expected time %s, got %s", tt.wantClock, *got.Time)
			}

			parsed, err := time.Parse(time.RFC3339Nano, tt.iso)
			if err != nil {
				parsed, _ = time.ParseInLocation("2006-01-02T15:04:05", tt.iso, IST)
			}
			if *got.Epoch != parsed.Unix() {
				t.Errorf("Expected epoch %d, got %d", parsed.Unix(), *got.Epoch)
			}
		})
	}
}

func TestNormalizeTimeEpochOnly(t *testing.T) {
	for _, epoch := range []int64{1705327200, 1, 1893456000, 946684800} {
		got, err := NormalizeTime(models.ObservationTimeBlock{Epoch: int64Ptr(epoch)})
		if err != nil {
			t.Fatalf("NormalizeTime(%d) failed: %v", epoch, err)
		}

		back, err := time.Parse(time.RFC3339, *got.ISO)
		if err != nil {
			t.Fatalf("Normalized ISO %q does not parse: %v", *got.ISO, err)
		}
		if back.Unix() != epoch {
			t.Errorf("Expected round-trip epoch %d, got %d", epoch, back.Unix())
		}
		if *got.Epoch != epoch {
			t.Errorf("Expected epoch %d, got %d", epoch, *got.Epoch)
		}
		if _, offset := back.Zone(); offset != 19800 {
			t.Errorf("Expected +05:30 offset, got %d seconds", offset)
		}
	}
}

func TestNormalizeTimeISOWins(t *testing.T) {
	block := models.ObservationTimeBlock{
		ISO:   strPtr("2024-01-15T14:00:00+05:30"),
		Epoch: int64Ptr(1600000000),
	}

	got, err := NormalizeTime(block)
	if err != nil {
		t.Fatalf("NormalizeTime failed: %v", err)
	}
	if *got.Epoch != 1705307400 {
		t.Errorf("Expected ISO-derived epoch 1705307400, got %d", *got.Epoch)
	}
	if *got.ISO != "2024-01-15T14:00:00+05:30" {
		t.Errorf("Expected ISO-derived string, got %s", *got.ISO)
	}
}

func TestNormalizeTimeEmpty(t *testing.T) {
	blocks := []models.ObservationTimeBlock{
		{},
		{ISO: strPtr("")},
		{Epoch: int64Ptr(0)},
		{ISO: strPtr(""), Epoch: int64Ptr(0)},
	}

	for i, block := range blocks {
		got, err := NormalizeTime(block)
		if err != nil {
			t.Fatalf("block %d: unexpected error: %v", i, err)
		}
		if got.ISO != nil || got.Epoch != nil || got.Date != nil || got.Time != nil {
			t.Errorf("block %d: expected all fields nil, got %+v", i, got)
		}
	}
}

func TestNormalizeTimeInvalidISO(t *testing.T) {
	_, err := NormalizeTime(models.ObservationTimeBlock{
		ISO:   strPtr("yesterday afternoon"),
		Epoch: int64Ptr(1705327200),
	})
	if err == nil {
		t.Fatal("Expected error for invalid ISO timestamp")
	}
}
