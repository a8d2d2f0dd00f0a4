package records

import (
	"medstock/m/domain"
	"medstock/m/internal/database"
	"medstock/m/internal/inventory"
)

// StockEntry is the derived stock view for one medicine.
type StockEntry struct {
	Medicine *domain.Medicine `json:"medicine"`
	Total    int              `json:"total"`
	Status   inventory.Status `json:"status"`
	PerStore map[string]int   `json:"per_store,omitempty"`
}

// StockReport returns current stock and status per medicine, per store and
// in total. Status is classified against each medicine's low-stock limit.
func (s *Service) StockReport() []StockEntry {
	medicines := database.Load[domain.Medicine](s.db, database.Medicines)
	stores := database.Load[domain.Store](s.db, database.Stores)

	entries := make([]StockEntry, 0, len(medicines))
	for _, m := range medicines {
		entry := StockEntry{Medicine: m, PerStore: map[string]int{}}
		for _, store := range stores {
			if qty, ok := store.Inventory[m.ID]; ok && qty > 0 {
				entry.PerStore[store.ID] = qty
				entry.Total += qty
			}
		}
		entry.Status = inventory.Classify(entry.Total, m.LowStockLimit)
		entries = append(entries, entry)
	}
	return entries
}

// LowStock lists medicines that are out of stock or at/below their
// low-stock limit.
func (s *Service) LowStock() []StockEntry {
	var low []StockEntry
	for _, entry := range s.StockReport() {
		if entry.Status == inventory.StatusLow || entry.Status == inventory.StatusOutOfStock {
			low = append(low, entry)
		}
	}
	return low
}
