// Package records implements the pharmacy record-keeping engine: entity
// lifecycle, ID renumbering with cascading foreign-key rewrites, and the
// inventory movements driven by purchases, consumptions and transfers.
package records

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"medstock/m/domain"
	"medstock/m/internal/backup"
	"medstock/m/internal/database"
	"medstock/m/internal/inventory"
)

// ErrNotFound marks operations that target an ID absent from its
// collection.
var ErrNotFound = errors.New("not found")

// ErrValidation marks business-rule violations caught before any mutation.
var ErrValidation = errors.New("validation failed")

// protectedIDs lists, per collection, the IDs that can never be deleted and
// survive renumbering unchanged. Renumbering and cascade code both consult
// this table.
var protectedIDs = map[string]map[string]bool{
	database.Departments: {domain.MainDepartmentID: true},
	database.Stores:      {domain.MainStoreID: true},
	database.Users:       {"01": true, "02": true},
}

func protectedFor(collection string) map[string]bool {
	return protectedIDs[collection]
}

// Service exposes every mutating and reading entry point of the engine.
// A single mutex serializes read-modify-write cycles; the flat-file store
// itself has no locking.
type Service struct {
	mu     sync.Mutex
	db     *database.DB
	ledger *inventory.Ledger
}

func New(db *database.DB) *Service {
	return &Service{db: db, ledger: inventory.New(db)}
}

// Ledger exposes the inventory ledger for read-only callers.
func (s *Service) Ledger() *inventory.Ledger { return s.ledger }

// DB exposes the underlying datastore for the backup layer.
func (s *Service) DB() *database.DB { return s.db }

// RestoreSnapshot replaces the datastore from a snapshot under the service
// mutex, so no mutating entry point can interleave with the rewrite.
func (s *Service) RestoreSnapshot(snap *backup.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return backup.Restore(s.db, snap)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// appendHistory records an audit entry. Failures are logged, never
// propagated: audit logging must not abort the operation it describes.
func (s *Service) appendHistory(actor domain.Actor, action, entityType, entityID, details string) {
	entries := database.Load[domain.History](s.db, database.History)
	entries = append(entries, &domain.History{
		ID:         database.NextID(entries),
		Timestamp:  now(),
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
	if err := database.Save(s.db, database.History, entries); err != nil {
		logrus.WithError(err).Warn("unable to append history entry")
	}
}

// ListHistory returns audit entries, optionally filtered by entity type
// and/or acting user.
func (s *Service) ListHistory(entityType, userID string) []*domain.History {
	entries := database.Load[domain.History](s.db, database.History)
	if entityType == "" && userID == "" {
		return entries
	}
	filtered := make([]*domain.History, 0, len(entries))
	for _, e := range entries {
		if entityType != "" && e.EntityType != entityType {
			continue
		}
		if userID != "" && e.UserID != userID {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
