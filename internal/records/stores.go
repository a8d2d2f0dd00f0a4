package records

import (
	"sort"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

func (s *Service) ListStores() []*domain.Store {
	return database.Load[domain.Store](s.db, database.Stores)
}

func (s *Service) GetStore(id string) (*domain.Store, error) {
	store := findStore(database.Load[domain.Store](s.db, database.Stores), id)
	if store == nil {
		return nil, notFoundf("store %s does not exist", id)
	}
	return store, nil
}

// DeleteStore removes a store after transferring its remaining inventory to
// the main store. An audit Transfer record is written for the move. The
// main store itself can never be deleted.
func (s *Service) DeleteStore(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteStoreLocked(actor, id)
}

func (s *Service) deleteStoreLocked(actor domain.Actor, id string) error {
	if id == domain.MainStoreID {
		return validationf("the main store cannot be deleted")
	}
	stores := database.Load[domain.Store](s.db, database.Stores)
	store := findStore(stores, id)
	if store == nil {
		return notFoundf("store %s does not exist", id)
	}

	lines := inventoryLines(store.Inventory)
	if len(lines) > 0 {
		transfers := database.Load[domain.Transfer](s.db, database.Transfers)
		transfers = append(transfers, &domain.Transfer{
			ID:                 database.NextID(transfers),
			SourceStoreID:      store.ID,
			DestinationStoreID: domain.MainStoreID,
			Medicines:          lines,
			Status:             domain.TransferStatusCompleted,
			Notes:              "inventory moved to main store before deletion",
			CreatedAt:          now(),
		})
		if err := database.Save(s.db, database.Transfers, transfers); err != nil {
			return err
		}

		main := findStore(stores, domain.MainStoreID)
		if main == nil {
			// Self-healing: the main store must always exist.
			main = &domain.Store{
				ID:           domain.MainStoreID,
				Name:         "Main Store",
				DepartmentID: domain.MainDepartmentID,
				Inventory:    map[string]int{},
				CreatedAt:    now(),
			}
			stores = append(stores, main)
		}
		if main.Inventory == nil {
			main.Inventory = map[string]int{}
		}
		for _, line := range lines {
			main.Inventory[line.MedicineID] += line.Quantity
		}
	}

	kept := make([]*domain.Store, 0, len(stores))
	for _, st := range stores {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	if err := database.Save(s.db, database.Stores, kept); err != nil {
		return err
	}

	mapping := database.Renumber(kept, protectedFor(database.Stores))
	if err := database.Save(s.db, database.Stores, kept); err != nil {
		return err
	}
	s.cascadeStoreIDs(mapping)

	s.appendHistory(actor, "delete", "store", id, store.Name)
	return nil
}

// inventoryLines flattens an inventory map into ordered medicine lines,
// skipping zero quantities.
func inventoryLines(inv map[string]int) []domain.MedicineLine {
	lines := make([]domain.MedicineLine, 0, len(inv))
	for medicineID, qty := range inv {
		if qty > 0 {
			lines = append(lines, domain.MedicineLine{MedicineID: medicineID, Quantity: qty})
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].MedicineID < lines[j].MedicineID })
	return lines
}

func findStore(stores []*domain.Store, id string) *domain.Store {
	for _, st := range stores {
		if st.ID == id {
			return st
		}
	}
	return nil
}
