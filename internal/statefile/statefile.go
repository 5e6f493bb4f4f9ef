// Package statefile persists the accumulated distance and tracking flag
// across restarts.
package statefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	sectionName = "MousePath"
	keyTotalMM  = "TotalMM"
	keyRunning  = "Running"
)

// Record is the persisted snapshot of the accumulator.
type Record struct {
	TotalMM float64
	Running bool
}

// DefaultRecord is what Load yields for a missing or unreadable file.
func DefaultRecord() Record {
	return Record{TotalMM: 0, Running: true}
}

// DefaultPath returns the state file path: next to the executable, named
// after it with an .ini extension.
func DefaultPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	base := strings.TrimSuffix(exe, filepath.Ext(exe))
	return base + ".ini", nil
}

// Load reads the record at path. It never fails: a missing file, an
// unreadable file, a missing key, or an unparsable value each resolve to
// the default for that field independently.
func Load(path string) Record {
	rec := DefaultRecord()

	cfg, err := ini.Load(path)
	if err != nil {
		return rec
	}
	sec := cfg.Section(sectionName)

	if raw := sec.Key(keyTotalMM).String(); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			rec.TotalMM = v
		}
	}
	if raw := sec.Key(keyRunning).String(); raw != "" {
		rec.Running = raw[0] != '0'
	}
	return rec
}

// Save writes the record to path, overwriting any previous snapshot. The
// total carries eight fractional digits so it round-trips without drift.
// The write goes through a temp file and a rename so a crash mid-write
// never leaves a torn file behind for Load to absorb into defaults.
func Save(path string, rec Record) error {
	cfg := ini.Empty()
	sec, err := cfg.NewSection(sectionName)
	if err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	sec.Key(keyTotalMM).SetValue(strconv.FormatFloat(rec.TotalMM, 'f', 8, 64))
	running := "0"
	if rec.Running {
		running = "1"
	}
	sec.Key(keyRunning).SetValue(running)

	tmp := path + ".tmp"
	if err := cfg.SaveTo(tmp); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
