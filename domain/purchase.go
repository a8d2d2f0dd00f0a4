package domain

const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusComplete  = "complete"
	PurchaseStatusDelivered = "delivered"
)

// MedicineLine is one (medicine, quantity) entry on a purchase, consumption
// or transfer.
type MedicineLine struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
}

// Purchase is an order placed with a supplier. Only delivered purchases
// affect the main store's inventory.
type Purchase struct {
	ID         string         `json:"id"`
	SupplierID string         `json:"supplier_id"`
	Status     string         `json:"status"`
	Medicines  []MedicineLine `json:"medicines"`
	CreatedAt  string         `json:"created_at,omitempty"`
	UpdatedAt  string         `json:"updated_at,omitempty"`
}

func (p *Purchase) RecordID() string      { return p.ID }
func (p *Purchase) SetRecordID(id string) { p.ID = id }
