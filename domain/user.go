package domain

const (
	RoleAdmin          = "admin"
	RoleDepartmentUser = "department_user"
)

// DefaultUserIDs are the protected built-in accounts created at bootstrap.
var DefaultUserIDs = []string{"01", "02"}

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

func (u *User) RecordID() string      { return u.ID }
func (u *User) SetRecordID(id string) { u.ID = id }
