package models

import (
	"sort"
	"time"

	"github.com/mrcode/librelink-follower/internal/glucose"
)

// HistoryLimit caps the number of historical points kept per refresh. The
// server-side window may return more; only the latest points survive.
const HistoryLimit = 10

// timestampLayout is the provider's measurement timestamp format,
// e.g. "6/15/2024 3:04:05 PM".
const timestampLayout = "1/2/2006 3:04:05 PM"

// GlucoseMeasurement is a single reading as reported by the provider. Values
// are canonically mg/dL; mmol/L is derived at display time.
type GlucoseMeasurement struct {
	FactoryTimestamp string  `json:"FactoryTimestamp"`
	Timestamp        string  `json:"Timestamp"`
	Type             int     `json:"type"`
	ValueInMgPerDl   int     `json:"ValueInMgPerDl"`
	TrendArrow       *int    `json:"TrendArrow"`
	TrendMessage     string  `json:"TrendMessage,omitempty"`
	MeasurementColor int     `json:"MeasurementColor"`
	GlucoseUnits     int     `json:"GlucoseUnits"`
	Value            float64 `json:"Value"`
	IsHigh           bool    `json:"isHigh"`
	IsLow            bool    `json:"isLow"`
}

// Time parses the provider timestamp. The zero time is returned when the
// field is absent or malformed.
func (m *GlucoseMeasurement) Time() time.Time {
	t, err := time.Parse(timestampLayout, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TrendSymbol returns the arrow for this measurement in the historical-point
// context ("?" when absent or unrecognized).
func (m *GlucoseMeasurement) TrendSymbol() string {
	return glucose.HistoryTrendSymbol(m.TrendArrow)
}

// ValueMmolL returns the reading converted to mmol/L.
func (m *GlucoseMeasurement) ValueMmolL() float64 {
	return float64(m.ValueInMgPerDl) / glucose.MgPerDlPerMmol
}

// Connection is one patient the account follows.
type Connection struct {
	ID                 string              `json:"id"`
	PatientID          string              `json:"patientId"`
	FirstName          string              `json:"firstName"`
	LastName           string              `json:"lastName"`
	Country            string              `json:"country,omitempty"`
	TargetLow          int                 `json:"targetLow"`
	TargetHigh         int                 `json:"targetHigh"`
	GlucoseMeasurement *GlucoseMeasurement `json:"glucoseMeasurement"`
}

// TrimHistory returns the most recent points ordered newest first, capped at
// limit. Points with unparseable timestamps sort last. The input is not
// modified, so repeated trims of the same raw history are idempotent.
func TrimHistory(points []GlucoseMeasurement, limit int) []GlucoseMeasurement {
	trimmed := make([]GlucoseMeasurement, len(points))
	copy(trimmed, points)

	sort.SliceStable(trimmed, func(i, j int) bool {
		return trimmed[i].Time().After(trimmed[j].Time())
	})

	if limit > 0 && len(trimmed) > limit {
		trimmed = trimmed[:limit]
	}
	return trimmed
}

// GlucoseData holds the current reading and trimmed history for display.
type GlucoseData struct {
	CurrentValueMgPerDl float64
	TrendArrow          int
	LastUpdateTime      time.Time
	History             []GlucoseMeasurement
}

// TrendSymbol returns the arrow for the current reading in the live context
// ("→" when the arrow index is absent or unrecognized).
func (g *GlucoseData) TrendSymbol() string {
	return glucose.LiveTrendSymbol(g.TrendArrow)
}

// Clear resets the display state.
func (g *GlucoseData) Clear() {
	g.CurrentValueMgPerDl = 0
	g.TrendArrow = 3 // stable
	g.LastUpdateTime = time.Time{}
	g.History = nil
}
