// Package glucose converts raw readings into display values, trend symbols
// and a threshold-based status classification.
package glucose

// Unit is the display unit for glucose values. The provider always reports
// values in mg/dL; mmol/L is derived.
type Unit int

const (
	MgPerDl Unit = iota
	MmolPerL
)

// MgPerDlPerMmol is the conversion factor between the two units.
const MgPerDlPerMmol = 18.0

func (u Unit) String() string {
	if u == MmolPerL {
		return "mmol/L"
	}
	return "mg/dL"
}

// Status is the classification of a reading against a target threshold pair.
type Status int

const (
	Normal Status = iota
	High
	Low
)

func (s Status) String() string {
	switch s {
	case High:
		return "HIGH"
	case Low:
		return "LOW"
	default:
		return "Normal"
	}
}

// Reading is the display projection of a raw glucose value.
type Reading struct {
	DisplayValue float64
	Unit         Unit
	Status       Status
}

// Classify projects a raw mg/dL value into the given display unit and
// classifies it against high/low thresholds. The thresholds must already be
// expressed in the same unit as the display value; no implicit conversion is
// performed. High wins at the high boundary (value >= high), Low at the low
// boundary (value <= low).
func Classify(valueMgPerDl float64, unit Unit, high, low float64) Reading {
	value := valueMgPerDl
	if unit == MmolPerL {
		value = valueMgPerDl / MgPerDlPerMmol
	}

	status := Normal
	switch {
	case value >= high:
		status = High
	case value <= low:
		status = Low
	}

	return Reading{
		DisplayValue: value,
		Unit:         unit,
		Status:       status,
	}
}

// LiveTrendSymbol maps a trend arrow index from the current-reading context
// to its display symbol. This table intentionally differs from
// HistoryTrendSymbol in which index means double-up; the provider's two
// contexts disagree and both mappings are kept as observed.
func LiveTrendSymbol(trend int) string {
	switch trend {
	case 1:
		return "↑"
	case 2:
		return "↑↑"
	case 3:
		return "→"
	case 4:
		return "↓"
	case 5:
		return "↓↓"
	default:
		return "→"
	}
}

// HistoryTrendSymbol maps a trend arrow index from the historical-point
// context to its display symbol. Absent or unrecognized arrows render as "?".
func HistoryTrendSymbol(trend *int) string {
	if trend == nil {
		return "?"
	}
	switch *trend {
	case 1:
		return "↑↑"
	case 2:
		return "↑"
	case 3:
		return "→"
	case 4:
		return "↓"
	case 5:
		return "↓↓"
	default:
		return "?"
	}
}
