package records

import (
	"medstock/m/domain"
	"medstock/m/internal/database"
	"medstock/m/internal/inventory"
)

type TransferInput struct {
	SourceStoreID      string                `json:"source_store_id"`
	DestinationStoreID string                `json:"destination_store_id"`
	Medicines          []domain.MedicineLine `json:"medicines"`
	Notes              string                `json:"notes"`
}

// CreateTransfer moves stock from one store to another and records the
// movement. The source must hold every requested quantity before anything
// is adjusted.
func (s *Service) CreateTransfer(actor domain.Actor, in TransferInput) (*domain.Transfer, error) {
	if in.SourceStoreID == in.DestinationStoreID {
		return nil, validationf("source and destination store must differ")
	}
	if err := validateLines(in.Medicines); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stores := database.Load[domain.Store](s.db, database.Stores)
	source := findStore(stores, in.SourceStoreID)
	if source == nil {
		return nil, notFoundf("source store %s does not exist", in.SourceStoreID)
	}
	destination := findStore(stores, in.DestinationStoreID)
	if destination == nil {
		return nil, notFoundf("destination store %s does not exist", in.DestinationStoreID)
	}

	if err := s.ValidateStock(source.DepartmentID, in.Medicines); err != nil {
		return nil, err
	}
	if err := s.ledger.AdjustMany(source.DepartmentID, in.Medicines, inventory.OpSubtract); err != nil {
		return nil, err
	}
	if err := s.ledger.AdjustMany(destination.DepartmentID, in.Medicines, inventory.OpAdd); err != nil {
		return nil, err
	}

	transfers := database.Load[domain.Transfer](s.db, database.Transfers)
	transfer := &domain.Transfer{
		ID:                 database.NextID(transfers),
		SourceStoreID:      in.SourceStoreID,
		DestinationStoreID: in.DestinationStoreID,
		Medicines:          in.Medicines,
		Status:             domain.TransferStatusCompleted,
		Notes:              in.Notes,
		CreatedAt:          now(),
	}
	transfers = append(transfers, transfer)
	if err := database.Save(s.db, database.Transfers, transfers); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "create", "transfer", transfer.ID,
		in.SourceStoreID+" to "+in.DestinationStoreID)
	return transfer, nil
}

// DeleteTransfer removes the movement record only; stock already moved
// stays where it is.
func (s *Service) DeleteTransfer(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transfers := database.Load[domain.Transfer](s.db, database.Transfers)
	if findTransfer(transfers, id) == nil {
		return notFoundf("transfer %s does not exist", id)
	}
	kept := transfers[:0]
	for _, t := range transfers {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if err := database.Save(s.db, database.Transfers, kept); err != nil {
		return err
	}
	database.Renumber(kept, protectedFor(database.Transfers))
	if err := database.Save(s.db, database.Transfers, kept); err != nil {
		return err
	}

	s.appendHistory(actor, "delete", "transfer", id, "")
	return nil
}

func (s *Service) ListTransfers() []*domain.Transfer {
	return database.Load[domain.Transfer](s.db, database.Transfers)
}

func (s *Service) GetTransfer(id string) (*domain.Transfer, error) {
	transfer := findTransfer(database.Load[domain.Transfer](s.db, database.Transfers), id)
	if transfer == nil {
		return nil, notFoundf("transfer %s does not exist", id)
	}
	return transfer, nil
}

func findTransfer(transfers []*domain.Transfer, id string) *domain.Transfer {
	for _, t := range transfers {
		if t.ID == id {
			return t
		}
	}
	return nil
}
