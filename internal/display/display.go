// Package display enumerates monitors and watches for topology changes.
package display

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/bpaydar/mousepath/internal/calibration"
)

const mmPerInch = 25.4

// Enumerate returns the current display set. When ppi is positive it is
// used to synthesize physical dimensions for every display; otherwise the
// physical size is left unknown and the calibration fallback applies.
//
// Cross-platform display APIs expose pixel bounds but not the EDID
// physical size, so a user-supplied PPI is the only calibration input
// beyond the fallback.
func Enumerate(ppi float64) []calibration.Display {
	n := robotgo.DisplaysNum()
	displays := make([]calibration.Display, 0, n)
	for i := 0; i < n; i++ {
		x, y, w, h := robotgo.GetDisplayBounds(i)
		d := calibration.Display{
			ID:     fmt.Sprintf("display-%d", i),
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
		}
		if ppi > 0 {
			d.PhysWidthMM = float64(w) / ppi * mmPerInch
			d.PhysHeightMM = float64(h) / ppi * mmPerInch
		}
		displays = append(displays, d)
	}
	return displays
}

// Watch invokes fn with the current display set immediately, then polls
// the configuration at the given interval and invokes fn again whenever
// it changes. A refresh driven from here must complete before the next
// calibration lookup is trusted, so fn is called synchronously from the
// polling goroutine. The returned function stops the watcher.
func Watch(interval time.Duration, ppi float64, fn func([]calibration.Display)) (stop func()) {
	done := make(chan struct{})

	displays := Enumerate(ppi)
	fn(displays)
	last := fingerprint(displays)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				displays := Enumerate(ppi)
				fp := fingerprint(displays)
				if fp != last {
					last = fp
					fn(displays)
				}
			}
		}
	}()

	return func() { close(done) }
}

func fingerprint(displays []calibration.Display) string {
	fp := ""
	for _, d := range displays {
		fp += fmt.Sprintf("%s:%d,%d,%d,%d;", d.ID, d.X, d.Y, d.Width, d.Height)
	}
	return fp
}
