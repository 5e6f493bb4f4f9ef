package app

import (
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bpaydar/mousepath/internal/config"
	"github.com/bpaydar/mousepath/internal/statefile"
	"github.com/bpaydar/mousepath/internal/storage"
)

// newTestEngine builds an engine on temp paths without starting the
// sampler loops.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.StatePath = filepath.Join(dir, "state.ini")
	cfg.DatabasePath = filepath.Join(dir, "history.db")

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if e.store != nil {
			e.store.Close()
			e.store = nil
		}
	})
	return e
}

func TestRestoreFromStateFile(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.ini")
	if err := statefile.Save(statePath, statefile.Record{TotalMM: 2500.5, Running: false}); err != nil {
		t.Fatalf("Seed save failed: %v", err)
	}

	cfg := config.Default()
	cfg.StatePath = statePath
	cfg.DatabasePath = filepath.Join(dir, "history.db")

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.store.Close()

	if got := e.Totals().Meters; math.Abs(got-2.5005) > 1e-9 {
		t.Errorf("Meters = %f, want 2.5005", got)
	}
	if e.Tracking() {
		t.Error("Expected tracking disabled after restore")
	}
}

func TestColdStartDefaults(t *testing.T) {
	e := newTestEngine(t)
	if e.Totals().Meters != 0 {
		t.Errorf("Expected zero total on cold start, got %f", e.Totals().Meters)
	}
	if !e.Tracking() {
		t.Error("Expected tracking enabled on cold start")
	}
}

func TestSaveSnapshotsAndRollsUpHistory(t *testing.T) {
	e := newTestEngine(t)
	e.acc.Restore(1000, true)

	if err := e.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec := statefile.Load(e.StatePath())
	if math.Abs(rec.TotalMM-1000) > 1e-8 {
		t.Errorf("Persisted TotalMM = %f, want 1000", rec.TotalMM)
	}

	today := time.Now().Format("2006-01-02")
	mm, err := e.store.GetDayDistance(today)
	if err != nil {
		t.Fatalf("GetDayDistance failed: %v", err)
	}
	if math.Abs(mm-1000) > 1e-8 {
		t.Errorf("History rollup = %f, want 1000", mm)
	}

	// A second save with no movement adds nothing.
	if err := e.Save(); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	mm, _ = e.store.GetDayDistance(today)
	if math.Abs(mm-1000) > 1e-8 {
		t.Errorf("Rollup after idle save = %f, want 1000", mm)
	}
}

func TestRollupOnlyCountsDeltas(t *testing.T) {
	e := newTestEngine(t)
	e.acc.Restore(1000, true)
	if err := e.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	e.acc.Restore(1300, true)
	if err := e.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	mm, err := e.store.GetDayDistance(today)
	if err != nil {
		t.Fatalf("GetDayDistance failed: %v", err)
	}
	if math.Abs(mm-1300) > 1e-8 {
		t.Errorf("Rollup = %f, want 1300 (1000 + 300 delta)", mm)
	}
}

func TestResetPersistsClearedState(t *testing.T) {
	e := newTestEngine(t)
	e.acc.Restore(5000, true)
	if err := e.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	e.Reset()

	rec := statefile.Load(e.StatePath())
	if rec.TotalMM != 0 {
		t.Errorf("Persisted TotalMM after reset = %f, want 0", rec.TotalMM)
	}
	if e.Totals().Meters != 0 {
		t.Errorf("Totals after reset = %f, want 0", e.Totals().Meters)
	}

	// Growth after the reset starts from a clean baseline.
	e.acc.Restore(200, true)
	if err := e.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	today := time.Now().Format("2006-01-02")
	mm, _ := e.store.GetDayDistance(today)
	if math.Abs(mm-5200) > 1e-8 {
		t.Errorf("Rollup = %f, want 5200 (5000 before reset + 200 after)", mm)
	}
}

func TestConcurrentSavesStayConsistent(t *testing.T) {
	e := newTestEngine(t)
	e.acc.Restore(5000, true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.Save(); err != nil {
				t.Errorf("Save failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// Overlapping saves must leave a whole, parseable file behind.
	rec := statefile.Load(e.StatePath())
	if math.Abs(rec.TotalMM-5000) > 1e-8 {
		t.Errorf("Persisted TotalMM = %f, want 5000", rec.TotalMM)
	}

	// The rollup delta is charged exactly once, not once per caller.
	today := time.Now().Format("2006-01-02")
	mm, err := e.store.GetDayDistance(today)
	if err != nil {
		t.Fatalf("GetDayDistance failed: %v", err)
	}
	if math.Abs(mm-5000) > 1e-8 {
		t.Errorf("Rollup = %f, want 5000", mm)
	}
}

func TestSaveRecordsSnapshotTime(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := e.store.GetSetting(storage.KeyLastSave)
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if raw == "" {
		t.Fatal("Expected a snapshot timestamp after save")
	}
	if _, err := time.Parse(time.RFC3339, raw); err != nil {
		t.Errorf("Snapshot timestamp %q is not RFC 3339: %v", raw, err)
	}
}

func TestToggleFlipsTracking(t *testing.T) {
	e := newTestEngine(t)
	if e.Toggle() {
		t.Error("First toggle should disable tracking")
	}
	if !e.Toggle() {
		t.Error("Second toggle should enable tracking")
	}
}

func TestTrackingStateSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.StatePath = filepath.Join(dir, "state.ini")
	cfg.DatabasePath = filepath.Join(dir, "history.db")

	e1, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	e1.Toggle()
	if err := e1.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	e1.store.Close()
	e1.store = nil

	e2, err := New(cfg)
	if err != nil {
		t.Fatalf("Second New failed: %v", err)
	}
	defer e2.store.Close()
	if e2.Tracking() {
		t.Error("Paused state did not survive restart")
	}
}
