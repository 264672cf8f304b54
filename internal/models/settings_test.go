package models

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mrcode/librelink-follower/internal/glucose"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.UpdateIntervalMinutes != 5 {
		t.Errorf("UpdateIntervalMinutes = %d, want 5", s.UpdateIntervalMinutes)
	}
	if !s.UseRegionServer {
		t.Error("UseRegionServer should default to true")
	}
	if s.PreferredUnit != glucose.MgPerDl {
		t.Errorf("PreferredUnit = %v, want MgPerDl", s.PreferredUnit)
	}
	if s.HighThreshold != 180 || s.LowThreshold != 70 {
		t.Errorf("mg/dL thresholds = %d/%d, want 180/70", s.HighThreshold, s.LowThreshold)
	}
	if s.HighThresholdMmol != 10.0 || s.LowThresholdMmol != 3.9 {
		t.Errorf("mmol thresholds = %v/%v, want 10.0/3.9", s.HighThresholdMmol, s.LowThresholdMmol)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"valid", func(*Settings) {}, ""},
		{"zero interval", func(s *Settings) { s.UpdateIntervalMinutes = 0 }, "updateIntervalMinutes"},
		{"inverted mg/dL thresholds", func(s *Settings) { s.HighThreshold = 60 }, "highThreshold"},
		{"inverted mmol thresholds", func(s *Settings) { s.HighThresholdMmol = 3.0 }, "highThresholdMmol"},
		{"unknown unit", func(s *Settings) { s.PreferredUnit = glucose.Unit(9) }, "preferredUnit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()

			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestSettings_Thresholds(t *testing.T) {
	s := DefaultSettings()

	high, low := s.Thresholds()
	if high != 180 || low != 70 {
		t.Errorf("mg/dL Thresholds() = %v/%v, want 180/70", high, low)
	}

	s.PreferredUnit = glucose.MmolPerL
	high, low = s.Thresholds()
	if high != 10.0 || low != 3.9 {
		t.Errorf("mmol Thresholds() = %v/%v, want 10.0/3.9", high, low)
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s := DefaultSettings()
	s.UpdateIntervalMinutes = 2
	s.PreferredUnit = glucose.MmolPerL
	s.ShowNotifications = false

	if err := s.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if loaded.UpdateIntervalMinutes != 2 {
		t.Errorf("UpdateIntervalMinutes = %d, want 2", loaded.UpdateIntervalMinutes)
	}
	if loaded.PreferredUnit != glucose.MmolPerL {
		t.Errorf("PreferredUnit = %v, want MmolPerL", loaded.PreferredUnit)
	}
	if loaded.ShowNotifications {
		t.Error("ShowNotifications should be false")
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	loaded, err := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if loaded.UpdateIntervalMinutes != 5 {
		t.Error("missing file should yield defaults")
	}
}

func TestSettings_Clone(t *testing.T) {
	s := DefaultSettings()
	clone := s.Clone()
	clone.HighThreshold = 200

	if s.HighThreshold != 180 {
		t.Error("mutating the clone changed the original")
	}
}
