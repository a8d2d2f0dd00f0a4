package inventory

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

// Op is a ledger adjustment direction.
type Op string

const (
	OpAdd      Op = "add"
	OpSubtract Op = "subtract"
)

// Ledger is the single source of truth for per-store stock levels. It reads
// and writes the Inventory map embedded in Store records.
//
// Subtraction clamps at zero instead of erroring. Callers that need strict
// sufficiency must validate before adjusting (see records.ValidateStock).
type Ledger struct {
	db *database.DB
}

func New(db *database.DB) *Ledger {
	return &Ledger{db: db}
}

// Adjust applies one quantity change against the store serving the given
// department. Use domain.MainDepartmentID for the main store.
func (l *Ledger) Adjust(departmentID, medicineID string, quantity int, op Op) error {
	return l.AdjustMany(departmentID, []domain.MedicineLine{{MedicineID: medicineID, Quantity: quantity}}, op)
}

// AdjustMany applies several quantity changes against one store in a single
// collection rewrite.
func (l *Ledger) AdjustMany(departmentID string, lines []domain.MedicineLine, op Op) error {
	if op != OpAdd && op != OpSubtract {
		return fmt.Errorf("unknown inventory operation %q", op)
	}
	stores := database.Load[domain.Store](l.db, database.Stores)
	store := findByDepartment(stores, departmentID)
	if store == nil {
		return fmt.Errorf("no store found for department %s", departmentID)
	}
	if store.Inventory == nil {
		store.Inventory = map[string]int{}
	}
	for _, line := range lines {
		if line.Quantity < 0 {
			return fmt.Errorf("negative quantity %d for medicine %s", line.Quantity, line.MedicineID)
		}
		current := store.Inventory[line.MedicineID]
		switch op {
		case OpAdd:
			store.Inventory[line.MedicineID] = current + line.Quantity
		case OpSubtract:
			next := current - line.Quantity
			if next < 0 {
				logrus.WithFields(logrus.Fields{
					"store":    store.ID,
					"medicine": line.MedicineID,
					"have":     current,
					"subtract": line.Quantity,
				}).Warn("inventory subtraction clamped at zero")
				next = 0
			}
			store.Inventory[line.MedicineID] = next
		}
	}
	return database.Save(l.db, database.Stores, stores)
}

// Quantity returns the on-hand quantity of a medicine in the store serving
// the given department, zero if the store or medicine is absent.
func (l *Ledger) Quantity(departmentID, medicineID string) int {
	stores := database.Load[domain.Store](l.db, database.Stores)
	store := findByDepartment(stores, departmentID)
	if store == nil {
		return 0
	}
	return store.Inventory[medicineID]
}

// TotalQuantity sums a medicine's quantity across every store.
func (l *Ledger) TotalQuantity(medicineID string) int {
	total := 0
	for _, store := range database.Load[domain.Store](l.db, database.Stores) {
		total += store.Inventory[medicineID]
	}
	return total
}

func findByDepartment(stores []*domain.Store, departmentID string) *domain.Store {
	for _, s := range stores {
		if s.DepartmentID == departmentID {
			return s
		}
	}
	return nil
}
