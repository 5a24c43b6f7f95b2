package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/valter-silva-au/phasescope/pkg/models"
)

// Canonicalize returns the JSON encoding of a snapshot with the scan time
// and the checkpoint record cleared. Struct fields encode in declaration
// order and map keys sorted, so two scans of an unchanged tree produce
// identical bytes. The checkpoint is excluded because it stores the
// fingerprint itself.
func Canonicalize(snap models.ProjectSnapshot) ([]byte, error) {
	snap.ScannedAt = time.Time{}
	snap.Checkpoint = models.JSONDocumentInfo{}
	return json.Marshal(snap)
}

// Fingerprint computes the blake3 hash of a canonicalized snapshot.
func Fingerprint(snap models.ProjectSnapshot) (string, error) {
	canonical, err := Canonicalize(snap)
	if err != nil {
		return "", fmt.Errorf("canonicalize snapshot: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash snapshot: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}
