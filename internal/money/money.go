// Package money provides fixed-point arithmetic for advertising spend.
// The Google Ads API reports cost in micros (1e6 micros = 1 currency unit);
// keeping amounts as int64 micros avoids floating-point drift when summing
// across campaigns and accounts.
package money

import (
	"fmt"
	"math"
)

// MicrosScale is the number of micros per currency unit.
const MicrosScale int64 = 1_000_000

// MaxUnits is the largest whole-unit amount representable in Micros.
const MaxUnits int64 = math.MaxInt64 / MicrosScale

// Micros represents a monetary amount in micro currency units,
// as returned by the Google Ads API (metrics.cost_micros).
type Micros int64

// --- Constructors ---

// FromMicros creates Micros from a raw API value.
func FromMicros(v int64) Micros {
	return Micros(v)
}

// FromUnits creates Micros from a whole-unit amount (use at boundaries only).
func FromUnits(units float64) Micros {
	return Micros(units * float64(MicrosScale))
}

// Zero returns zero Micros.
func Zero() Micros {
	return Micros(0)
}

// --- Arithmetic ---

// Add returns a + b.
func (a Micros) Add(b Micros) Micros {
	return a + b
}

// Sub returns a - b.
func (a Micros) Sub(b Micros) Micros {
	return a - b
}

// Div divides by an integer divisor.
func (a Micros) Div(divisor int64) Micros {
	if divisor == 0 {
		return 0
	}
	return Micros(int64(a) / divisor)
}

// --- Comparison ---

// IsZero returns true if == 0.
func (a Micros) IsZero() bool {
	return a == 0
}

// GreaterThan returns a > b.
func (a Micros) GreaterThan(b Micros) bool {
	return a > b
}

// --- Conversion (boundary functions, for display only) ---

// Units converts to whole currency units as float64.
func (a Micros) Units() float64 {
	return float64(a) / float64(MicrosScale)
}

// Int64 returns the raw micro value.
func (a Micros) Int64() int64 {
	return int64(a)
}

// String returns a formatted amount like "123.46" or "-45.00".
func (a Micros) String() string {
	return fmt.Sprintf("%.2f", float64(a)/float64(MicrosScale))
}

// --- Derived metrics ---

// AverageCPC returns cost per click in micros, zero when there are no clicks.
func AverageCPC(cost Micros, clicks int64) Micros {
	if clicks == 0 {
		return 0
	}
	return cost.Div(clicks)
}

// CTR returns the click-through rate as a percentage (e.g. 4.2 for 4.2%).
func CTR(clicks, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return float64(clicks) / float64(impressions) * 100
}

// Sum totals a slice of micro amounts.
func Sum(amounts []Micros) Micros {
	var total Micros
	for _, a := range amounts {
		total += a
	}
	return total
}
