package records

import (
	"medstock/m/domain"
	"medstock/m/internal/database"
	"medstock/m/internal/inventory"
)

type ConsumptionInput struct {
	PatientID    string                `json:"patient_id"`
	DepartmentID string                `json:"department_id"`
	Medicines    []domain.MedicineLine `json:"medicines"`
}

// ValidateStock is the strict sufficiency gate run before any ledger
// mutation. The ledger's own clamp-at-zero policy is only a last-resort net
// behind this check.
func (s *Service) ValidateStock(departmentID string, lines []domain.MedicineLine) error {
	wanted := make(map[string]int, len(lines))
	for _, line := range lines {
		wanted[line.MedicineID] += line.Quantity
	}
	for medicineID, want := range wanted {
		have := s.ledger.Quantity(departmentID, medicineID)
		if have < want {
			return validationf("insufficient stock of medicine %s in department %s: have %d, need %d",
				medicineID, departmentID, have, want)
		}
	}
	return nil
}

// RecordConsumption dispenses medicines to a patient, debiting the store of
// the given department.
func (s *Service) RecordConsumption(actor domain.Actor, in ConsumptionInput) (*domain.Consumption, error) {
	if in.PatientID == "" {
		return nil, validationf("consumption needs a patient")
	}
	if in.DepartmentID == "" {
		return nil, validationf("consumption needs a department")
	}
	if err := validateLines(in.Medicines); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ValidateStock(in.DepartmentID, in.Medicines); err != nil {
		return nil, err
	}
	if err := s.ledger.AdjustMany(in.DepartmentID, in.Medicines, inventory.OpSubtract); err != nil {
		return nil, err
	}

	consumptions := database.Load[domain.Consumption](s.db, database.Consumptions)
	consumption := &domain.Consumption{
		ID:           database.NextID(consumptions),
		PatientID:    in.PatientID,
		DepartmentID: in.DepartmentID,
		Medicines:    in.Medicines,
		CreatedAt:    now(),
	}
	consumptions = append(consumptions, consumption)
	if err := database.Save(s.db, database.Consumptions, consumptions); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "create", "consumption", consumption.ID, "patient "+in.PatientID)
	return consumption, nil
}

// DeleteConsumption removes a consumption record. The dispensed quantities
// are not returned to stock; the record is an account of something that
// already happened.
func (s *Service) DeleteConsumption(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	consumptions := database.Load[domain.Consumption](s.db, database.Consumptions)
	if findConsumption(consumptions, id) == nil {
		return notFoundf("consumption %s does not exist", id)
	}
	kept := consumptions[:0]
	for _, c := range consumptions {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if err := database.Save(s.db, database.Consumptions, kept); err != nil {
		return err
	}
	database.Renumber(kept, protectedFor(database.Consumptions))
	if err := database.Save(s.db, database.Consumptions, kept); err != nil {
		return err
	}

	s.appendHistory(actor, "delete", "consumption", id, "")
	return nil
}

func (s *Service) ListConsumptions() []*domain.Consumption {
	return database.Load[domain.Consumption](s.db, database.Consumptions)
}

func (s *Service) GetConsumption(id string) (*domain.Consumption, error) {
	consumption := findConsumption(database.Load[domain.Consumption](s.db, database.Consumptions), id)
	if consumption == nil {
		return nil, notFoundf("consumption %s does not exist", id)
	}
	return consumption, nil
}

func findConsumption(consumptions []*domain.Consumption, id string) *domain.Consumption {
	for _, c := range consumptions {
		if c.ID == id {
			return c
		}
	}
	return nil
}
