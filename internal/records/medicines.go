package records

import (
	"strings"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

// MedicineInput carries the editable fields of a medicine.
type MedicineInput struct {
	Name          string `json:"name"`
	SupplierID    string `json:"supplier_id"`
	FormDosage    string `json:"form_dosage"`
	LowStockLimit int    `json:"low_stock_limit"`
	ExpiryDate    string `json:"expiry_date"`
	BatchNumber   string `json:"batch_number"`
	BarcodeNumber string `json:"barcode_number"`
	Notes         string `json:"notes"`
}

func (in MedicineInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationf("medicine name is required")
	}
	if in.LowStockLimit < 0 {
		return validationf("low stock limit cannot be negative")
	}
	// A supplier reference is not verified at write time. Orphaned
	// references surface through CheckIntegrity as warnings.
	return nil
}

func (s *Service) CreateMedicine(actor domain.Actor, in MedicineInput) (*domain.Medicine, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines := database.Load[domain.Medicine](s.db, database.Medicines)
	medicine := &domain.Medicine{
		ID:            database.NextID(medicines),
		Name:          strings.TrimSpace(in.Name),
		SupplierID:    in.SupplierID,
		FormDosage:    in.FormDosage,
		LowStockLimit: in.LowStockLimit,
		ExpiryDate:    in.ExpiryDate,
		BatchNumber:   in.BatchNumber,
		BarcodeNumber: in.BarcodeNumber,
		Notes:         in.Notes,
		CreatedAt:     now(),
	}
	medicines = append(medicines, medicine)
	if err := database.Save(s.db, database.Medicines, medicines); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "create", "medicine", medicine.ID, medicine.Name)
	return medicine, nil
}

func (s *Service) UpdateMedicine(actor domain.Actor, id string, in MedicineInput) (*domain.Medicine, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	medicines := database.Load[domain.Medicine](s.db, database.Medicines)
	medicine := findMedicine(medicines, id)
	if medicine == nil {
		return nil, notFoundf("medicine %s does not exist", id)
	}
	medicine.Name = strings.TrimSpace(in.Name)
	medicine.SupplierID = in.SupplierID
	medicine.FormDosage = in.FormDosage
	medicine.LowStockLimit = in.LowStockLimit
	medicine.ExpiryDate = in.ExpiryDate
	medicine.BatchNumber = in.BatchNumber
	medicine.BarcodeNumber = in.BarcodeNumber
	medicine.Notes = in.Notes
	medicine.UpdatedAt = now()
	if err := database.Save(s.db, database.Medicines, medicines); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "update", "medicine", medicine.ID, medicine.Name)
	return medicine, nil
}

// DeleteMedicine removes one medicine, purges its references, renumbers the
// collection and cascades the new IDs everywhere medicine IDs appear.
func (s *Service) DeleteMedicine(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteMedicinesLocked(actor, []string{id})
}

// DeleteMedicines removes a batch of medicines with a single renumbering
// pass at the end.
func (s *Service) DeleteMedicines(actor domain.Actor, ids []string) error {
	if len(ids) == 0 {
		return validationf("no medicines selected")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteMedicinesLocked(actor, ids)
}

func (s *Service) deleteMedicinesLocked(actor domain.Actor, ids []string) error {
	medicines := database.Load[domain.Medicine](s.db, database.Medicines)
	for _, id := range ids {
		if findMedicine(medicines, id) == nil {
			return notFoundf("medicine %s does not exist", id)
		}
	}

	deleted := make(map[string]bool, len(ids))
	for _, id := range ids {
		deleted[id] = true
	}
	kept := medicines[:0]
	for _, m := range medicines {
		if !deleted[m.ID] {
			kept = append(kept, m)
		}
	}
	if err := database.Save(s.db, database.Medicines, kept); err != nil {
		return err
	}

	// References to a deleted medicine are purged before renumbering so a
	// reassigned ID can never alias the dead one.
	s.purgeMedicineRefs(deleted)

	mapping := database.Renumber(kept, protectedFor(database.Medicines))
	if err := database.Save(s.db, database.Medicines, kept); err != nil {
		return err
	}
	s.cascadeMedicineIDs(mapping)

	for _, id := range ids {
		s.appendHistory(actor, "delete", "medicine", id, "")
	}
	return nil
}

// purgeMedicineRefs drops inventory keys and order lines pointing at
// deleted medicines. Best-effort, same policy as the cascade updaters.
func (s *Service) purgeMedicineRefs(deleted map[string]bool) {
	stores := database.Load[domain.Store](s.db, database.Stores)
	for _, store := range stores {
		for medicineID := range store.Inventory {
			if deleted[medicineID] {
				delete(store.Inventory, medicineID)
			}
		}
	}
	cascadeSaveErr(database.Stores, database.Save(s.db, database.Stores, stores))

	purchases := database.Load[domain.Purchase](s.db, database.Purchases)
	for _, p := range purchases {
		p.Medicines = dropLines(p.Medicines, deleted)
	}
	cascadeSaveErr(database.Purchases, database.Save(s.db, database.Purchases, purchases))

	consumptions := database.Load[domain.Consumption](s.db, database.Consumptions)
	for _, c := range consumptions {
		c.Medicines = dropLines(c.Medicines, deleted)
	}
	cascadeSaveErr(database.Consumptions, database.Save(s.db, database.Consumptions, consumptions))

	transfers := database.Load[domain.Transfer](s.db, database.Transfers)
	for _, t := range transfers {
		t.Medicines = dropLines(t.Medicines, deleted)
	}
	cascadeSaveErr(database.Transfers, database.Save(s.db, database.Transfers, transfers))
}

func dropLines(lines []domain.MedicineLine, deleted map[string]bool) []domain.MedicineLine {
	kept := lines[:0]
	for _, line := range lines {
		if !deleted[line.MedicineID] {
			kept = append(kept, line)
		}
	}
	return kept
}

func (s *Service) ListMedicines() []*domain.Medicine {
	return database.Load[domain.Medicine](s.db, database.Medicines)
}

func (s *Service) GetMedicine(id string) (*domain.Medicine, error) {
	medicine := findMedicine(database.Load[domain.Medicine](s.db, database.Medicines), id)
	if medicine == nil {
		return nil, notFoundf("medicine %s does not exist", id)
	}
	return medicine, nil
}

func findMedicine(medicines []*domain.Medicine, id string) *domain.Medicine {
	for _, m := range medicines {
		if m.ID == id {
			return m
		}
	}
	return nil
}
