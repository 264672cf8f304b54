package models

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func TestGlucoseMeasurement_Time(t *testing.T) {
	m := &GlucoseMeasurement{Timestamp: "6/15/2024 3:04:05 PM"}

	want := time.Date(2024, 6, 15, 15, 4, 5, 0, time.UTC)
	if !m.Time().Equal(want) {
		t.Errorf("Time() = %v, want %v", m.Time(), want)
	}
}

func TestGlucoseMeasurement_Time_Malformed(t *testing.T) {
	m := &GlucoseMeasurement{Timestamp: "not-a-timestamp"}
	if !m.Time().IsZero() {
		t.Errorf("Time() = %v, want zero for malformed timestamp", m.Time())
	}
}

func TestGlucoseMeasurement_ValueMmolL(t *testing.T) {
	m := &GlucoseMeasurement{ValueInMgPerDl: 180}
	if m.ValueMmolL() != 10.0 {
		t.Errorf("ValueMmolL() = %v, want 10.0", m.ValueMmolL())
	}
}

func TestGlucoseMeasurement_TrendSymbol(t *testing.T) {
	one := 1
	m := &GlucoseMeasurement{TrendArrow: &one}
	if m.TrendSymbol() != "↑↑" {
		t.Errorf("TrendSymbol() = %q, want ↑↑", m.TrendSymbol())
	}

	m = &GlucoseMeasurement{}
	if m.TrendSymbol() != "?" {
		t.Errorf("TrendSymbol() = %q, want ? for absent arrow", m.TrendSymbol())
	}
}

// rawHistory builds points spaced five minutes apart, oldest first.
func rawHistory(n int) []GlucoseMeasurement {
	base := time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC)
	points := make([]GlucoseMeasurement, n)
	for i := range points {
		ts := base.Add(time.Duration(i) * 5 * time.Minute)
		points[i] = GlucoseMeasurement{
			Timestamp:      fmt.Sprintf("%d/%d/%d %s", ts.Month(), ts.Day(), ts.Year(), ts.Format("3:04:05 PM")),
			ValueInMgPerDl: 100 + i,
		}
	}
	return points
}

func TestTrimHistory(t *testing.T) {
	points := rawHistory(15)

	trimmed := TrimHistory(points, HistoryLimit)

	if len(trimmed) != 10 {
		t.Fatalf("len = %d, want 10", len(trimmed))
	}
	// Newest first: values 114 down to 105.
	for i, m := range trimmed {
		if want := 114 - i; m.ValueInMgPerDl != want {
			t.Errorf("trimmed[%d] = %d, want %d", i, m.ValueInMgPerDl, want)
		}
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i].Time().After(trimmed[i-1].Time()) {
			t.Errorf("history not ordered most-recent-first at index %d", i)
		}
	}
}

func TestTrimHistory_Idempotent(t *testing.T) {
	points := rawHistory(15)

	first := TrimHistory(points, HistoryLimit)
	second := TrimHistory(points, HistoryLimit)

	if !reflect.DeepEqual(first, second) {
		t.Error("trimming the same raw history twice should yield identical results")
	}
	if len(points) != 15 {
		t.Errorf("input length changed to %d", len(points))
	}
}

func TestTrimHistory_FewerThanLimit(t *testing.T) {
	trimmed := TrimHistory(rawHistory(4), HistoryLimit)
	if len(trimmed) != 4 {
		t.Errorf("len = %d, want 4", len(trimmed))
	}
}

func TestGlucoseData_Clear(t *testing.T) {
	g := &GlucoseData{
		CurrentValueMgPerDl: 142,
		TrendArrow:          5,
		LastUpdateTime:      time.Now(),
		History:             rawHistory(3),
	}

	g.Clear()

	if g.CurrentValueMgPerDl != 0 || g.TrendArrow != 3 || g.History != nil {
		t.Errorf("Clear() left %v", g)
	}
	if !g.LastUpdateTime.IsZero() {
		t.Error("LastUpdateTime should be zero after Clear")
	}
	if g.TrendSymbol() != "→" {
		t.Errorf("TrendSymbol() = %q, want → after Clear", g.TrendSymbol())
	}
}
