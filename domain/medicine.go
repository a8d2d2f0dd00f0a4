package domain

type Medicine struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SupplierID    string `json:"supplier_id"`
	FormDosage    string `json:"form_dosage"`
	LowStockLimit int    `json:"low_stock_limit"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
	BatchNumber   string `json:"batch_number,omitempty"`
	BarcodeNumber string `json:"barcode_number,omitempty"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

func (m *Medicine) RecordID() string      { return m.ID }
func (m *Medicine) SetRecordID(id string) { m.ID = id }
