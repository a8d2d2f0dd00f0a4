package domain

// MainDepartmentID is the protected Main Pharmacy department. It always
// exists and is never renumbered or deleted.
const MainDepartmentID = "01"

type Department struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func (d *Department) RecordID() string      { return d.ID }
func (d *Department) SetRecordID(id string) { d.ID = id }
