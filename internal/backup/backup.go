// Package backup takes and restores whole-datastore snapshots.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"medstock/m/internal/bootstrap"
	"medstock/m/internal/database"
)

// Snapshot is a point-in-time copy of every collection, keyed by collection
// name, each value the raw JSON array as stored on disk.
type Snapshot struct {
	ID          string                     `json:"id"`
	CreatedAt   string                     `json:"created_at"`
	Collections map[string]json.RawMessage `json:"collections"`
}

// Export snapshots every collection. Unreadable collections degrade to an
// empty array, mirroring the store's load contract.
func Export(db *database.DB) *Snapshot {
	snap := &Snapshot{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Collections: make(map[string]json.RawMessage, len(database.Collections)),
	}
	for _, name := range database.Collections {
		raw := db.LoadRaw(name)
		if len(raw) == 0 || !json.Valid(raw) {
			raw = []byte("[]")
		}
		snap.Collections[name] = raw
	}
	return snap
}

// Restore replaces collections wholesale from a snapshot, then re-runs the
// self-healing defaults check: the snapshot may predate the protected
// baseline records. Collections absent from the snapshot are left alone.
func Restore(db *database.DB, snap *Snapshot) error {
	if snap == nil || len(snap.Collections) == 0 {
		return fmt.Errorf("snapshot is empty")
	}
	for _, name := range database.Collections {
		data, ok := snap.Collections[name]
		if !ok {
			logrus.WithField("collection", name).Warn("snapshot has no data for collection, keeping current")
			continue
		}
		if err := db.SaveRaw(name, data); err != nil {
			return fmt.Errorf("restore aborted: %w", err)
		}
	}
	return bootstrap.EnsureDefaults(db)
}
