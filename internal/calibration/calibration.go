// Package calibration maintains per-monitor pixel density used to convert
// pixel deltas into physical millimeters.
package calibration

import (
	"math"
	"sync"
)

// FallbackPxPerMM is the density assumed for a monitor that does not report
// usable physical dimensions (96 DPI equivalent).
const FallbackPxPerMM = 96.0 / 25.4

// Display describes one monitor as reported by the host environment.
// PhysWidthMM/PhysHeightMM are zero when the monitor does not report
// physical dimensions.
type Display struct {
	ID           string
	X, Y         int
	Width        int
	Height       int
	PhysWidthMM  float64
	PhysHeightMM float64
}

// Metrics is the pixel density at a point on screen. Both axes are always
// positive; unknown axes are substituted with FallbackPxPerMM.
type Metrics struct {
	DeviceID string
	PxPerMMX float64
	PxPerMMY float64
}

type entry struct {
	x, y, w, h int
	deviceID   string
	// Raw densities; zero means the monitor did not report a usable
	// physical size for that axis.
	pxPerMMX float64
	pxPerMMY float64
}

// Registry holds the calibration for every active monitor. The set is
// replaced wholesale on Refresh; readers only ever see a complete
// configuration.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// NewRegistry returns an empty registry. Until the first Refresh, At
// answers with the fallback density.
func NewRegistry() *Registry {
	return &Registry{}
}

// Refresh rebuilds the calibration set from the given displays. The
// previous set is discarded atomically; entries for removed monitors do
// not survive.
func (r *Registry) Refresh(displays []Display) {
	entries := make([]entry, 0, len(displays))
	for _, d := range displays {
		e := entry{x: d.X, y: d.Y, w: d.Width, h: d.Height, deviceID: d.ID}
		if d.Width > 0 && d.PhysWidthMM > 0 {
			e.pxPerMMX = float64(d.Width) / d.PhysWidthMM
		}
		if d.Height > 0 && d.PhysHeightMM > 0 {
			e.pxPerMMY = float64(d.Height) / d.PhysHeightMM
		}
		entries = append(entries, e)
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

// Count returns the number of registered monitors.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// At returns the calibration for the monitor containing the point, or the
// nearest monitor when the point lies outside every monitor. Axes the
// monitor could not report fall back to FallbackPxPerMM, so the returned
// densities are always positive.
func (r *Registry) At(x, y float64) Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best := -1
	bestDist := math.MaxFloat64
	for i, e := range r.entries {
		d := e.distanceTo(x, y)
		if d < bestDist {
			bestDist = d
			best = i
			if d == 0 {
				break
			}
		}
	}

	m := Metrics{PxPerMMX: FallbackPxPerMM, PxPerMMY: FallbackPxPerMM}
	if best < 0 {
		return m
	}
	e := r.entries[best]
	m.DeviceID = e.deviceID
	if e.pxPerMMX > 0 {
		m.PxPerMMX = e.pxPerMMX
	}
	if e.pxPerMMY > 0 {
		m.PxPerMMY = e.pxPerMMY
	}
	return m
}

// distanceTo returns the squared distance from the point to the monitor's
// bounds, zero when the point is inside.
func (e entry) distanceTo(x, y float64) float64 {
	dx := axisDistance(x, float64(e.x), float64(e.x+e.w))
	dy := axisDistance(y, float64(e.y), float64(e.y+e.h))
	return dx*dx + dy*dy
}

func axisDistance(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}
