// Package app wires the calibration registry, the accumulator, and the
// persistence layers into one running engine shared by the tray and the
// terminal front ends.
package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bpaydar/mousepath/internal/calibration"
	"github.com/bpaydar/mousepath/internal/config"
	"github.com/bpaydar/mousepath/internal/display"
	"github.com/bpaydar/mousepath/internal/pointer"
	"github.com/bpaydar/mousepath/internal/statefile"
	"github.com/bpaydar/mousepath/internal/storage"
	"github.com/bpaydar/mousepath/internal/tracker"
)

// Engine owns the accumulator state and drives the periodic save and
// display refresh loops.
type Engine struct {
	cfg       config.Config
	registry  *calibration.Registry
	acc       *tracker.Accumulator
	store     *storage.Store
	statePath string

	// mu serializes snapshots: the save ticker, the tray handlers, and
	// shutdown all call Save. savedMM is the total at the last snapshot,
	// the baseline for per-day history rollups.
	mu      sync.Mutex
	savedMM float64

	stopDisplay func()
	done        chan struct{}
	wg          sync.WaitGroup
	started     bool
}

// New builds an engine from the configuration and restores the persisted
// state. History storage failures are not fatal: the engine runs without
// a history database.
func New(cfg config.Config) (*Engine, error) {
	statePath := cfg.StatePath
	if statePath == "" {
		p, err := statefile.DefaultPath()
		if err != nil {
			return nil, err
		}
		statePath = p
	}

	registry := calibration.NewRegistry()
	acc := tracker.New(registry)

	rec := statefile.Load(statePath)
	acc.Restore(rec.TotalMM, rec.Running)

	e := &Engine{
		cfg:       cfg,
		registry:  registry,
		acc:       acc,
		statePath: statePath,
		savedMM:   rec.TotalMM,
		done:      make(chan struct{}),
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Printf("Warning: history database unavailable: %v", err)
	} else {
		e.store = store
	}

	return e, nil
}

// Start attaches the pointer sampler, the display watcher, and the save
// loop. A sampler attach failure is fatal: without input the total would
// silently stop growing forever.
func (e *Engine) Start() error {
	if e.started {
		return fmt.Errorf("engine already started")
	}

	e.stopDisplay = display.Watch(e.cfg.DisplayInterval, e.cfg.PPI, e.registry.Refresh)
	log.Printf("Calibrated %d display(s)", e.registry.Count())

	samples, err := pointer.Start(e.cfg.SampleInterval)
	if err != nil {
		e.stopDisplay()
		return fmt.Errorf("attach pointer sampler: %w", err)
	}
	e.started = true

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for p := range samples {
			e.acc.OnPointerMove(p.X, p.Y)
		}
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.cfg.SaveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-e.done:
				return
			case <-ticker.C:
				if err := e.Save(); err != nil {
					log.Printf("Periodic save failed: %v", err)
				}
			}
		}
	}()

	return nil
}

// Close stops the loops, writes a final snapshot, and releases the
// history database.
func (e *Engine) Close() {
	if e.started {
		close(e.done)
		pointer.Stop()
		e.stopDisplay()
		e.wg.Wait()
		e.started = false
	}
	if err := e.Save(); err != nil {
		log.Printf("Final save failed: %v", err)
	}
	e.mu.Lock()
	if e.store != nil {
		e.store.Close()
		e.store = nil
	}
	e.mu.Unlock()
}

// Save snapshots the accumulator to the state file and rolls the distance
// accrued since the previous snapshot into today's history. Held under
// e.mu end to end so overlapping callers cannot interleave file writes or
// double-count a rollup delta.
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := e.acc.TotalMM()
	rec := statefile.Record{TotalMM: total, Running: e.acc.Tracking()}
	err := statefile.Save(e.statePath, rec)

	delta := total - e.savedMM
	e.savedMM = total

	// delta < 0 means a reset happened since the last snapshot; the
	// baseline above is already resynced.
	if delta > 0 && e.store != nil {
		date := time.Now().Format("2006-01-02")
		if herr := e.store.AddDailyDistance(date, delta); herr != nil {
			log.Printf("History rollup failed: %v", herr)
		}
	}
	if e.store != nil {
		if serr := e.store.SetSetting(storage.KeyLastSave, time.Now().Format(time.RFC3339)); serr != nil {
			log.Printf("Recording snapshot time failed: %v", serr)
		}
	}
	return err
}

// Reset zeroes the total and persists the cleared state immediately.
func (e *Engine) Reset() {
	e.acc.Reset()
	if err := e.Save(); err != nil {
		log.Printf("Save after reset failed: %v", err)
	}
}

// Toggle flips the tracking flag and returns the new state.
func (e *Engine) Toggle() bool {
	return e.acc.Toggle()
}

// Tracking reports whether accumulation is currently enabled.
func (e *Engine) Tracking() bool {
	return e.acc.Tracking()
}

// Totals returns the running total in reporting units.
func (e *Engine) Totals() tracker.Totals {
	return e.acc.Totals()
}

// StatePath returns the resolved state file location.
func (e *Engine) StatePath() string {
	return e.statePath
}
