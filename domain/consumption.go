package domain

// Consumption records medicines dispensed to a patient. The department ID
// determines which store's inventory was debited.
type Consumption struct {
	ID           string         `json:"id"`
	PatientID    string         `json:"patient_id"`
	DepartmentID string         `json:"department_id"`
	Medicines    []MedicineLine `json:"medicines"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

func (c *Consumption) RecordID() string      { return c.ID }
func (c *Consumption) SetRecordID(id string) { c.ID = id }
