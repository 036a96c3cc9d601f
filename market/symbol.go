package market

import (
	"math"
	"strconv"
	"strings"
)

// SymbolSpec holds the per-symbol contract metadata the venue publishes.
// Immutable for the lifetime of a session; refresh by querying the venue.
type SymbolSpec struct {
	Name           string
	Point          float64 // smallest price increment, e.g. 0.00001
	Digits         int     // price precision
	VolumeMin      float64
	VolumeMax      float64
	VolumeStep     float64
	VolumeDigits   int // lot precision; -1 when the venue does not publish it
	ContractSize   float64
	ProfitCurrency string
	SpreadPoints   int // static spread fallback when no live tick is available
}

// VolumePrecision returns the number of decimal digits for lot sizes,
// deriving it from VolumeStep when the venue does not publish VolumeDigits.
func (s SymbolSpec) VolumePrecision() int {
	if s.VolumeDigits >= 0 {
		return s.VolumeDigits
	}
	step := strconv.FormatFloat(s.VolumeStep, 'f', -1, 64)
	if i := strings.IndexByte(step, '.'); i >= 0 {
		return len(step) - i - 1
	}
	return 2
}

// RoundPrice rounds a price to the symbol's quoted precision.
func (s SymbolSpec) RoundPrice(p float64) float64 {
	return roundTo(p, s.Digits)
}

// RoundVolume rounds a lot size to the symbol's volume precision.
func (s SymbolSpec) RoundVolume(v float64) float64 {
	return roundTo(v, s.VolumePrecision())
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}
