package domain

const (
	TransferStatusPending   = "pending"
	TransferStatusCompleted = "completed"
)

// Transfer is a movement of stock between two stores. Source and
// destination are never the same store.
type Transfer struct {
	ID                 string         `json:"id"`
	SourceStoreID      string         `json:"source_store_id"`
	DestinationStoreID string         `json:"destination_store_id"`
	Medicines          []MedicineLine `json:"medicines"`
	Status             string         `json:"status"`
	Notes              string         `json:"notes,omitempty"`
	CreatedAt          string         `json:"created_at,omitempty"`
	UpdatedAt          string         `json:"updated_at,omitempty"`
}

func (t *Transfer) RecordID() string      { return t.ID }
func (t *Transfer) SetRecordID(id string) { t.ID = id }
