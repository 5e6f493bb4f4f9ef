// Package pointer delivers global cursor movement samples.
package pointer

import (
	"errors"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
)

// Position is an absolute screen coordinate.
type Position struct {
	X float64
	Y float64
}

var (
	mu      sync.Mutex
	samples chan Position
	done    chan struct{}
	running bool
)

// Start begins polling the global cursor position at the given interval
// and returns a channel that receives a sample per observed movement.
// Duplicate positions are coalesced; the delivery path never blocks, a
// full channel drops samples.
func Start(interval time.Duration) (<-chan Position, error) {
	mu.Lock()
	defer mu.Unlock()

	if running {
		return nil, errors.New("pointer sampler already running")
	}
	if interval <= 0 {
		return nil, errors.New("sample interval must be positive")
	}

	samples = make(chan Position, 1000)
	done = make(chan struct{})
	running = true

	go poll(interval, done)

	return samples, nil
}

// Stop halts the sampler and closes the sample channel.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if !running {
		return
	}
	close(done)
	close(samples)
	samples = nil
	running = false
}

func poll(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastX, lastY := robotgo.Location()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			x, y := robotgo.Location()
			if x == lastX && y == lastY {
				continue
			}
			lastX, lastY = x, y
			deliver(Position{X: float64(x), Y: float64(y)})
		}
	}
}

func deliver(p Position) {
	mu.Lock()
	defer mu.Unlock()
	if samples == nil {
		return
	}
	select {
	case samples <- p:
	default:
		// Channel full, drop sample.
	}
}
