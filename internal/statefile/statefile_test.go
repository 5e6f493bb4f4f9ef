package statefile

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "mousepath.ini")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	rec := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	if rec.TotalMM != 0 {
		t.Errorf("TotalMM = %f, want 0", rec.TotalMM)
	}
	if !rec.Running {
		t.Error("Running = false, want true")
	}
}

func TestRoundTrip(t *testing.T) {
	path := testPath(t)
	saved := Record{TotalMM: 1234.56780000, Running: false}
	if err := Save(path, saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec := Load(path)
	if math.Abs(rec.TotalMM-saved.TotalMM) > 1e-8 {
		t.Errorf("TotalMM = %.10f, want %.10f", rec.TotalMM, saved.TotalMM)
	}
	if rec.Running {
		t.Error("Running = true, want false")
	}
}

func TestRoundTripPrecision(t *testing.T) {
	// Eight fractional digits must survive a save/load cycle.
	path := testPath(t)
	total := 98765432.12345678
	if err := Save(path, Record{TotalMM: total, Running: true}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	rec := Load(path)
	if math.Abs(rec.TotalMM-total) > 1e-7 {
		t.Errorf("TotalMM drifted: %.10f vs %.10f", rec.TotalMM, total)
	}
}

func TestCorruptFieldIsolation(t *testing.T) {
	// A bad TotalMM does not spoil a good Running value, and vice versa.
	path := testPath(t)
	content := "[MousePath]\nTotalMM = banana\nRunning = 0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rec := Load(path)
	if rec.TotalMM != 0 {
		t.Errorf("Corrupt TotalMM not defaulted: %f", rec.TotalMM)
	}
	if rec.Running {
		t.Error("Valid Running field was not honored")
	}
}

func TestCorruptFileReturnsDefaults(t *testing.T) {
	path := testPath(t)
	if err := os.WriteFile(path, []byte("\x00\x01not an ini"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rec := Load(path)
	if rec.TotalMM != 0 || !rec.Running {
		t.Errorf("Corrupt file did not yield defaults: %+v", rec)
	}
}

func TestNegativeTotalRejected(t *testing.T) {
	path := testPath(t)
	content := "[MousePath]\nTotalMM = -500.0\nRunning = 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	rec := Load(path)
	if rec.TotalMM != 0 {
		t.Errorf("Negative total accepted: %f", rec.TotalMM)
	}
}

func TestRunningFlagParsing(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"one", "1", true},
		{"zero", "0", false},
		{"garbage defaults to running", "yes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testPath(t)
			content := "[MousePath]\nTotalMM = 1.0\nRunning = " + tt.value + "\n"
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if rec := Load(path); rec.Running != tt.want {
				t.Errorf("Running(%q) = %v, want %v", tt.value, rec.Running, tt.want)
			}
		})
	}
}

func TestSaveReplacesFileWhole(t *testing.T) {
	// The snapshot lands via rename, so the directory never holds a
	// half-written state file or a leftover temp file.
	path := testPath(t)
	if err := Save(path, Record{TotalMM: 42.5, Running: true}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Save(path, Record{TotalMM: 43.5, Running: true}); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != filepath.Base(path) {
			t.Errorf("Unexpected file left behind: %s", entry.Name())
		}
	}

	rec := Load(path)
	if math.Abs(rec.TotalMM-43.5) > 1e-8 {
		t.Errorf("TotalMM = %f, want 43.5", rec.TotalMM)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	path := testPath(t)
	if err := Save(path, Record{TotalMM: 10, Running: true}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Save(path, Record{TotalMM: 20, Running: false}); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	rec := Load(path)
	if rec.TotalMM != 20 || rec.Running {
		t.Errorf("Second save not reflected: %+v", rec)
	}
}
