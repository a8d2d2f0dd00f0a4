package domain

type Patient struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DateOfBirth  string `json:"date_of_birth,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Phone        string `json:"phone,omitempty"`
	DepartmentID string `json:"department_id"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

func (p *Patient) RecordID() string      { return p.ID }
func (p *Patient) SetRecordID(id string) { p.ID = id }
