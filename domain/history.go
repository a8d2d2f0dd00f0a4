package domain

// History is the append-only audit log. Rows are never deleted; user
// renumbering rewrites UserID (and EntityID for user entries) in place.
type History struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	UserID     string `json:"user_id"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Details    string `json:"details,omitempty"`
}

func (h *History) RecordID() string      { return h.ID }
func (h *History) SetRecordID(id string) { h.ID = id }

// Actor identifies who performed a mutating call, passed explicitly by the
// caller instead of read from ambient session state.
type Actor struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
