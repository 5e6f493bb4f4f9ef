// Package tracker accumulates physical mouse travel distance from raw
// pointer positions.
package tracker

import (
	"fmt"
	"math"
	"sync"

	"github.com/bpaydar/mousepath/internal/calibration"
)

// NoiseFloorPx is the minimum pixel-space movement that counts toward the
// total. Smaller moves are treated as jitter.
const NoiseFloorPx = 1.0

const (
	mmPerMeter    = 1000.0
	metersPerKM   = 1000.0
	metersPerMile = 1609.344
)

// Calibrator resolves the pixel density at an absolute screen coordinate.
type Calibrator interface {
	At(x, y float64) calibration.Metrics
}

// Totals is the running distance expressed in reporting units.
type Totals struct {
	Meters     float64
	Kilometers float64
	Miles      float64
}

// String formats the totals the way the UI displays them.
func (t Totals) String() string {
	return fmt.Sprintf("%.4f m | %.6f km | %.6f mi", t.Meters, t.Kilometers, t.Miles)
}

// TotalsFromMM converts a raw millimeter total into reporting units.
func TotalsFromMM(mm float64) Totals {
	meters := mm / mmPerMeter
	return Totals{
		Meters:     meters,
		Kilometers: meters / metersPerKM,
		Miles:      meters / metersPerMile,
	}
}

// Accumulator converts a stream of pointer positions into a running
// physical distance total. Safe for concurrent use: the sampler goroutine
// and the UI/save tickers all touch the same state.
type Accumulator struct {
	mu       sync.Mutex
	cal      Calibrator
	totalMM  float64
	lastX    float64
	lastY    float64
	hasLast  bool
	tracking bool
}

// New returns an accumulator with tracking enabled and no reference
// position.
func New(cal Calibrator) *Accumulator {
	return &Accumulator{cal: cal, tracking: true}
}

// OnPointerMove processes one raw movement sample. The first sample after
// start or reset only seeds the reference position. The reference advances
// on every sample with a nonzero delta, regardless of the tracking flag,
// so resuming after a pause never injects a spurious jump.
func (a *Accumulator) OnPointerMove(x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.hasLast {
		a.lastX, a.lastY = x, y
		a.hasLast = true
		return
	}

	dx := x - a.lastX
	dy := y - a.lastY
	if dx == 0 && dy == 0 {
		return
	}

	if a.tracking {
		if pdist := math.Sqrt(dx*dx + dy*dy); pdist >= NoiseFloorPx {
			// Density at the destination point: a sample that crosses a
			// monitor boundary is charged at the destination's density.
			m := a.cal.At(x, y)
			mmx := dx / m.PxPerMMX
			mmy := dy / m.PxPerMMY
			a.totalMM += math.Sqrt(mmx*mmx + mmy*mmy)
		}
	}

	a.lastX, a.lastY = x, y
}

// Reset zeroes the total and clears the reference position.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalMM = 0
	a.hasLast = false
}

// SetTracking enables or disables accumulation without clearing history.
func (a *Accumulator) SetTracking(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracking = on
}

// Tracking reports whether movement samples currently affect the total.
func (a *Accumulator) Tracking() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tracking
}

// Toggle flips the tracking flag and returns the new state.
func (a *Accumulator) Toggle() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracking = !a.tracking
	return a.tracking
}

// TotalMM returns the raw accumulated distance in millimeters.
func (a *Accumulator) TotalMM() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalMM
}

// Restore sets the accumulated total, used when reloading persisted state
// at startup. Negative values are clamped to zero.
func (a *Accumulator) Restore(totalMM float64, tracking bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if totalMM < 0 {
		totalMM = 0
	}
	a.totalMM = totalMM
	a.tracking = tracking
	a.hasLast = false
}

// Totals returns the running total converted into meters, kilometers, and
// miles.
func (a *Accumulator) Totals() Totals {
	a.mu.Lock()
	mm := a.totalMM
	a.mu.Unlock()
	return TotalsFromMM(mm)
}
