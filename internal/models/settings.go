package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mrcode/librelink-follower/internal/glucose"
)

// Settings contains the user-configurable options. They are read at startup
// and re-read only when a settings-changed notification is delivered, never
// ambiently from other components.
type Settings struct {
	// Refresh
	UpdateIntervalMinutes int `json:"updateIntervalMinutes"`

	// Server selection before the first login; a regional redirect during
	// login overrides this for the lifetime of the session.
	UseRegionServer bool `json:"useRegionServer"`

	// Display
	PreferredUnit glucose.Unit `json:"preferredUnit"`

	// Thresholds per unit; the status engine never converts between them.
	HighThreshold     int     `json:"highThreshold"`     // mg/dL
	LowThreshold      int     `json:"lowThreshold"`      // mg/dL
	HighThresholdMmol float64 `json:"highThresholdMmol"` // mmol/L
	LowThresholdMmol  float64 `json:"lowThresholdMmol"`  // mmol/L

	// Alerts
	ShowNotifications  bool `json:"showNotifications"`
	RepeatAlertMinutes int  `json:"repeatAlertMinutes"` // 0 = alert once per episode
}

// ValidationError reports caller-supplied settings that cannot be applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		UpdateIntervalMinutes: 5,
		UseRegionServer:       true,
		PreferredUnit:         glucose.MgPerDl,
		HighThreshold:         180,
		LowThreshold:          70,
		HighThresholdMmol:     10.0,
		LowThresholdMmol:      3.9,
		ShowNotifications:     true,
		RepeatAlertMinutes:    15,
	}
}

// Validate checks that the settings can be applied.
func (s *Settings) Validate() error {
	if s.UpdateIntervalMinutes < 1 {
		return &ValidationError{Field: "updateIntervalMinutes", Reason: "must be at least 1"}
	}
	if s.HighThreshold <= s.LowThreshold {
		return &ValidationError{Field: "highThreshold", Reason: "must be greater than lowThreshold"}
	}
	if s.HighThresholdMmol <= s.LowThresholdMmol {
		return &ValidationError{Field: "highThresholdMmol", Reason: "must be greater than lowThresholdMmol"}
	}
	if s.PreferredUnit != glucose.MgPerDl && s.PreferredUnit != glucose.MmolPerL {
		return &ValidationError{Field: "preferredUnit", Reason: "unknown unit"}
	}
	return nil
}

// Thresholds returns the high/low pair for the preferred unit, already
// expressed in that unit.
func (s *Settings) Thresholds() (high, low float64) {
	if s.PreferredUnit == glucose.MmolPerL {
		return s.HighThresholdMmol, s.LowThresholdMmol
	}
	return float64(s.HighThreshold), float64(s.LowThreshold)
}

// Clone returns a copy of the settings.
func (s *Settings) Clone() *Settings {
	clone := *s
	return &clone
}

// GetConfigDir returns the configuration directory path, creating it if
// necessary.
func GetConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	appDir := filepath.Join(configDir, "librelink-follower")
	if err := os.MkdirAll(appDir, 0750); err != nil {
		return "", err
	}

	return appDir, nil
}

// GetConfigPath returns the full path to the settings file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// LoadSettings reads the settings file from path, falling back to defaults
// when it does not exist.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Config path is controlled by the app, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes the settings to path.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
