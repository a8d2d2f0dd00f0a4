package domain

// MainStoreID is the protected main store, 1:1 with the main department.
// Inventory of deleted stores is transferred here.
const MainStoreID = "01"

type Store struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DepartmentID string `json:"department_id"`
	// Inventory maps medicine ID to on-hand quantity. Quantities never go
	// negative; subtraction clamps at zero.
	Inventory map[string]int `json:"inventory"`
	CreatedAt string         `json:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty"`
}

func (s *Store) RecordID() string      { return s.ID }
func (s *Store) SetRecordID(id string) { s.ID = id }
