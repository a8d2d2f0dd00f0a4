package records

import (
	"medstock/m/domain"
	"medstock/m/internal/database"
	"medstock/m/internal/inventory"
)

type PurchaseInput struct {
	SupplierID string                `json:"supplier_id"`
	Medicines  []domain.MedicineLine `json:"medicines"`
}

func validateLines(lines []domain.MedicineLine) error {
	if len(lines) == 0 {
		return validationf("at least one medicine line is required")
	}
	for _, line := range lines {
		if line.MedicineID == "" {
			return validationf("every line needs a medicine")
		}
		if line.Quantity <= 0 {
			return validationf("quantity for medicine %s must be positive", line.MedicineID)
		}
	}
	return nil
}

// CreatePurchase records a new pending order. Stock is only affected once
// the purchase is marked delivered.
func (s *Service) CreatePurchase(actor domain.Actor, in PurchaseInput) (*domain.Purchase, error) {
	if in.SupplierID == "" {
		return nil, validationf("purchase needs a supplier")
	}
	if err := validateLines(in.Medicines); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	purchases := database.Load[domain.Purchase](s.db, database.Purchases)
	purchase := &domain.Purchase{
		ID:         database.NextID(purchases),
		SupplierID: in.SupplierID,
		Status:     domain.PurchaseStatusPending,
		Medicines:  in.Medicines,
		CreatedAt:  now(),
	}
	purchases = append(purchases, purchase)
	if err := database.Save(s.db, database.Purchases, purchases); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "create", "purchase", purchase.ID, "")
	return purchase, nil
}

// UpdatePurchaseStatus moves a purchase through its lifecycle. Entering
// delivered adds the ordered quantities to the main store; leaving
// delivered subtracts them again.
func (s *Service) UpdatePurchaseStatus(actor domain.Actor, id, status string) (*domain.Purchase, error) {
	switch status {
	case domain.PurchaseStatusPending, domain.PurchaseStatusComplete, domain.PurchaseStatusDelivered:
	default:
		return nil, validationf("unknown purchase status %q", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	purchases := database.Load[domain.Purchase](s.db, database.Purchases)
	purchase := findPurchase(purchases, id)
	if purchase == nil {
		return nil, notFoundf("purchase %s does not exist", id)
	}
	if purchase.Status == status {
		return purchase, nil
	}

	wasDelivered := purchase.Status == domain.PurchaseStatusDelivered
	nowDelivered := status == domain.PurchaseStatusDelivered
	if nowDelivered && !wasDelivered {
		if err := s.ledger.AdjustMany(domain.MainDepartmentID, purchase.Medicines, inventory.OpAdd); err != nil {
			return nil, err
		}
	}
	if wasDelivered && !nowDelivered {
		if err := s.ledger.AdjustMany(domain.MainDepartmentID, purchase.Medicines, inventory.OpSubtract); err != nil {
			return nil, err
		}
	}

	purchase.Status = status
	purchase.UpdatedAt = now()
	if err := database.Save(s.db, database.Purchases, purchases); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "update", "purchase", purchase.ID, "status "+status)
	return purchase, nil
}

// DeletePurchase removes a purchase. A delivered purchase has its
// quantities subtracted from the main store first.
func (s *Service) DeletePurchase(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchases := database.Load[domain.Purchase](s.db, database.Purchases)
	purchase := findPurchase(purchases, id)
	if purchase == nil {
		return notFoundf("purchase %s does not exist", id)
	}
	if purchase.Status == domain.PurchaseStatusDelivered {
		if err := s.ledger.AdjustMany(domain.MainDepartmentID, purchase.Medicines, inventory.OpSubtract); err != nil {
			return err
		}
	}

	kept := purchases[:0]
	for _, p := range purchases {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if err := database.Save(s.db, database.Purchases, kept); err != nil {
		return err
	}
	database.Renumber(kept, protectedFor(database.Purchases))
	if err := database.Save(s.db, database.Purchases, kept); err != nil {
		return err
	}

	s.appendHistory(actor, "delete", "purchase", id, "")
	return nil
}

func (s *Service) ListPurchases() []*domain.Purchase {
	return database.Load[domain.Purchase](s.db, database.Purchases)
}

func (s *Service) GetPurchase(id string) (*domain.Purchase, error) {
	purchase := findPurchase(database.Load[domain.Purchase](s.db, database.Purchases), id)
	if purchase == nil {
		return nil, notFoundf("purchase %s does not exist", id)
	}
	return purchase, nil
}

func findPurchase(purchases []*domain.Purchase, id string) *domain.Purchase {
	for _, p := range purchases {
		if p.ID == id {
			return p
		}
	}
	return nil
}
