package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Collection names. Each collection is persisted as one JSON array file
// under the data directory.
const (
	Medicines    = "medicines"
	Suppliers    = "suppliers"
	Departments  = "departments"
	Stores       = "stores"
	Patients     = "patients"
	Users        = "users"
	Purchases    = "purchases"
	Consumptions = "consumptions"
	Transfers    = "transfers"
	History      = "history"
)

// Collections lists every persisted collection, in backup/restore order.
var Collections = []string{
	Medicines, Suppliers, Departments, Stores, Patients,
	Users, Purchases, Consumptions, Transfers, History,
}

// Record is implemented by every domain entity stored in a collection.
type Record interface {
	RecordID() string
	SetRecordID(id string)
}

// DB is a flat-file datastore: one JSON file per collection, rewritten
// whole on every save. It has no transactions and no diffing.
type DB struct {
	dir string
	mu  sync.Mutex
}

// Open prepares the data directory.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return &DB{dir: dir}, nil
}

// Dir returns the backing data directory.
func (db *DB) Dir() string { return db.dir }

func (db *DB) path(collection string) string {
	return filepath.Join(db.dir, collection+".json")
}

// LoadRaw returns the raw JSON contents of a collection file, or nil if the
// file is absent or unreadable.
func (db *DB) LoadRaw(collection string) []byte {
	data, err := os.ReadFile(db.path(collection))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logrus.WithError(err).WithField("collection", collection).
				Warn("collection unreadable, treating as empty")
		}
		return nil
	}
	return data
}

// SaveRaw replaces a collection file with raw JSON. The payload must be a
// JSON array; malformed payloads are rejected.
func (db *DB) SaveRaw(collection string, data []byte) error {
	var probe []json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("collection %s: payload is not a JSON array: %w", collection, err)
	}
	return db.write(collection, data)
}

// write replaces the collection file via temp file + rename so readers
// never observe a partial write.
func (db *DB) write(collection string, data []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	target := db.path(collection)
	tmp, err := os.CreateTemp(db.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("collection %s: %w", collection, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("collection %s: %w", collection, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("collection %s: %w", collection, err)
	}
	return nil
}

// Load reads every record of a collection. A missing or corrupt file is not
// an error: it degrades to an empty collection.
func Load[T any](db *DB, collection string) []*T {
	data := db.LoadRaw(collection)
	if len(data) == 0 {
		return nil
	}
	var records []*T
	if err := json.Unmarshal(data, &records); err != nil {
		logrus.WithError(err).WithField("collection", collection).
			Warn("collection corrupt, treating as empty")
		return nil
	}
	return records
}

// Save rewrites the whole collection.
func Save[T any](db *DB, collection string, records []*T) error {
	if records == nil {
		records = []*T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("collection %s: %w", collection, err)
	}
	return db.write(collection, data)
}
