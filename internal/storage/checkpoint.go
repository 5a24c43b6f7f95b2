// Package storage persists derived phase results back into a project's
// progress directory.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// Checkpoint keys owned by phasescope. Other keys in the file belong to
// other writers and are carried over untouched.
const (
	keyCurrentPhase = "currentPhase"
	keyPhases       = "phases"
	keySummary      = "summary"
	keyFingerprint  = "fingerprint"
	keyUpdatedAt    = "updatedAt"
)

// CheckpointRecord is the derived state written to progress/checkpoint.json.
type CheckpointRecord struct {
	CurrentPhase models.Phase                `json:"currentPhase"`
	Phases       []models.PhaseStatus        `json:"phases"`
	Summary      models.ComprehensiveSummary `json:"summary"`
	Fingerprint  string                      `json:"fingerprint"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// CheckpointWriter merges derived results into a checkpoint file.
type CheckpointWriter interface {
	// Load returns the phasescope-owned part of the checkpoint, or nil when
	// the file does not exist.
	Load() (*CheckpointRecord, error)
	// Render returns the file content Write would produce, without writing.
	Render(rec CheckpointRecord) ([]byte, error)
	// Write merges rec into the file. It reports false and leaves the file
	// alone when the stored fingerprint already equals rec.Fingerprint.
	Write(rec CheckpointRecord) (bool, error)
}

type fileCheckpointWriter struct {
	path string
}

// NewCheckpointWriter creates a CheckpointWriter for the checkpoint file at
// path.
func NewCheckpointWriter(path string) CheckpointWriter {
	return &fileCheckpointWriter{path: path}
}

// readRaw returns the file's top-level object. A missing file is an empty
// object; a file that is not a JSON object is an error so that a hand-edited
// checkpoint is never clobbered.
func (w *fileCheckpointWriter) readRaw() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("reading checkpoint: parsing JSON: %w", err)
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	return raw, nil
}

func (w *fileCheckpointWriter) Load() (*CheckpointRecord, error) {
	if _, err := os.Stat(w.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	raw, err := w.readRaw()
	if err != nil {
		return nil, err
	}
	owned, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	var rec CheckpointRecord
	// Fields written by other tools under our keys may have other shapes;
	// whatever decodes is kept.
	_ = json.Unmarshal(owned, &rec)
	return &rec, nil
}

func (w *fileCheckpointWriter) Render(rec CheckpointRecord) ([]byte, error) {
	raw, err := w.readRaw()
	if err != nil {
		return nil, err
	}
	return merge(raw, rec)
}

func (w *fileCheckpointWriter) Write(rec CheckpointRecord) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o750); err != nil {
		return false, fmt.Errorf("saving checkpoint: creating directory: %w", err)
	}

	lock, err := lockCheckpoint(w.path)
	if err != nil {
		return false, fmt.Errorf("saving checkpoint: %w", err)
	}
	defer func() { _ = lock.release() }()

	raw, err := w.readRaw()
	if err != nil {
		return false, err
	}

	var stored string
	if fp, ok := raw[keyFingerprint]; ok {
		_ = json.Unmarshal(fp, &stored)
	}
	if rec.Fingerprint != "" && stored == rec.Fingerprint {
		return false, nil
	}

	data, err := merge(raw, rec)
	if err != nil {
		return false, err
	}

	tmp := w.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return false, fmt.Errorf("saving checkpoint: writing file: %w", err)
	}
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return false, fmt.Errorf("saving checkpoint: replacing file: %w", err)
	}
	return true, nil
}

// merge overlays rec's keys on raw and encodes the result with sorted keys.
func merge(raw map[string]json.RawMessage, rec CheckpointRecord) ([]byte, error) {
	owned := map[string]any{
		keyCurrentPhase: rec.CurrentPhase,
		keyPhases:       rec.Phases,
		keySummary:      rec.Summary,
		keyFingerprint:  rec.Fingerprint,
		keyUpdatedAt:    rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
	out := make(map[string]json.RawMessage, len(raw)+len(owned))
	maps.Copy(out, raw)
	for k, v := range owned {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding checkpoint %s: %w", k, err)
		}
		out[k] = data
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding checkpoint: %w", err)
	}
	return append(data, '\n'), nil
}
