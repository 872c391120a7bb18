package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"worktime-annotator/internal/types"
)

// FileStore keeps settings in a JSON file. A missing file is not an
// error: it loads as the defaults, matching a first run.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger types.Logger
}

// NewFileStore creates a store backed by the given path.
func NewFileStore(path string, logger types.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads settings from disk. Missing file yields defaults; anything
// else (unreadable file, bad JSON) is an error the caller degrades on.
func (f *FileStore) Load(ctx context.Context) (types.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.logger.Debugf("No settings file at %s, using defaults", f.path)
		return types.DefaultSettings(), nil
	}
	if err != nil {
		return types.DefaultSettings(), fmt.Errorf("failed to read settings: %w", err)
	}

	settings := types.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return types.DefaultSettings(), fmt.Errorf("failed to parse settings: %w", err)
	}
	return normalize(settings), nil
}

// Save writes settings atomically: temp file in the same directory, then
// rename.
func (f *FileStore) Save(ctx context.Context, settings types.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close settings file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

// normalize repairs out-of-range stored values to their defaults so a
// hand-edited file cannot push invalid settings into a pass.
func normalize(s types.Settings) types.Settings {
	defaults := types.DefaultSettings()
	if s.HourlyWage < 0 {
		s.HourlyWage = defaults.HourlyWage
	}
	if s.DisplayMode != types.ModeSideBySide && s.DisplayMode != types.ModeReplace {
		s.DisplayMode = defaults.DisplayMode
	}
	if s.Tiers.Validate() != nil {
		s.Tiers = defaults.Tiers
	}
	return s
}
