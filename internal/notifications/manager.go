// Package notifications raises system notifications when a reading leaves
// the target range.
package notifications

import (
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/mrcode/librelink-follower/internal/glucose"
)

// notifyFunc is swappable in tests.
type notifyFunc func(title, message, icon string) error

// Manager decides when a classified reading warrants a notification and
// rate-limits repeats per status.
type Manager struct {
	mu            sync.Mutex
	enabled       bool
	repeatAfter   time.Duration
	lastAlertTime map[glucose.Status]time.Time
	notify        notifyFunc
}

// NewManager creates a manager. repeatAlertMinutes of zero means one alert
// per episode, cleared when the reading returns to normal.
func NewManager(enabled bool, repeatAlertMinutes int) *Manager {
	return &Manager{
		enabled:       enabled,
		repeatAfter:   time.Duration(repeatAlertMinutes) * time.Minute,
		lastAlertTime: make(map[glucose.Status]time.Time),
		notify:        beeep.Notify,
	}
}

// UpdateSettings applies changed alert configuration.
func (m *Manager) UpdateSettings(enabled bool, repeatAlertMinutes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
	m.repeatAfter = time.Duration(repeatAlertMinutes) * time.Minute
}

// CheckAndNotify sends a notification when the reading is High or Low. A
// Normal reading clears the alert state so the next excursion alerts again.
func (m *Manager) CheckAndNotify(reading glucose.Reading, trendSymbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if reading.Status == glucose.Normal {
		m.lastAlertTime = make(map[glucose.Status]time.Time)
		return nil
	}
	if !m.enabled {
		return nil
	}

	if lastTime, ok := m.lastAlertTime[reading.Status]; ok {
		if m.repeatAfter <= 0 || time.Since(lastTime) < m.repeatAfter {
			return nil
		}
	}

	title, message := formatAlert(reading, trendSymbol)
	if err := m.notify(title, message, ""); err != nil {
		return err
	}

	m.lastAlertTime[reading.Status] = time.Now()
	return nil
}

func formatAlert(reading glucose.Reading, trendSymbol string) (string, string) {
	var valueStr string
	if reading.Unit == glucose.MmolPerL {
		valueStr = fmt.Sprintf("%.1f %s", reading.DisplayValue, reading.Unit)
	} else {
		valueStr = fmt.Sprintf("%.0f %s", reading.DisplayValue, reading.Unit)
	}

	if reading.Status == glucose.High {
		return "High Glucose", fmt.Sprintf("Glucose is high: %s %s", valueStr, trendSymbol)
	}
	return "Low Glucose", fmt.Sprintf("Glucose is low: %s %s", valueStr, trendSymbol)
}
