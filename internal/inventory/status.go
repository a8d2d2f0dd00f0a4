package inventory

// Status classifies a stock level against a medicine's low-stock limit.
type Status string

const (
	StatusOutOfStock Status = "out_of_stock"
	StatusLow        Status = "low"
	StatusMedium     Status = "medium"
	StatusGood       Status = "good"
)

// Classify derives the stock status. Status is never stored; it is computed
// from the current quantity on every read.
func Classify(quantity, lowStockLimit int) Status {
	switch {
	case quantity == 0:
		return StatusOutOfStock
	case quantity <= lowStockLimit:
		return StatusLow
	case float64(quantity) <= 1.5*float64(lowStockLimit):
		return StatusMedium
	default:
		return StatusGood
	}
}
