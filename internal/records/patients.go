package records

import (
	"strings"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

type PatientInput struct {
	Name         string `json:"name"`
	DateOfBirth  string `json:"date_of_birth"`
	Gender       string `json:"gender"`
	Phone        string `json:"phone"`
	DepartmentID string `json:"department_id"`
}

func (s *Service) CreatePatient(actor domain.Actor, in PatientInput) (*domain.Patient, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("patient name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	patients := database.Load[domain.Patient](s.db, database.Patients)
	patient := &domain.Patient{
		ID:           database.NextID(patients),
		Name:         strings.TrimSpace(in.Name),
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		Phone:        in.Phone,
		DepartmentID: in.DepartmentID,
		CreatedAt:    now(),
	}
	patients = append(patients, patient)
	if err := database.Save(s.db, database.Patients, patients); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "create", "patient", patient.ID, patient.Name)
	return patient, nil
}

func (s *Service) UpdatePatient(actor domain.Actor, id string, in PatientInput) (*domain.Patient, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("patient name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	patients := database.Load[domain.Patient](s.db, database.Patients)
	patient := findPatient(patients, id)
	if patient == nil {
		return nil, notFoundf("patient %s does not exist", id)
	}
	patient.Name = strings.TrimSpace(in.Name)
	patient.DateOfBirth = in.DateOfBirth
	patient.Gender = in.Gender
	patient.Phone = in.Phone
	patient.DepartmentID = in.DepartmentID
	patient.UpdatedAt = now()
	if err := database.Save(s.db, database.Patients, patients); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "update", "patient", patient.ID, patient.Name)
	return patient, nil
}

// DeletePatient removes a patient together with their consumption records.
// Medicines already dispensed on those records are not returned to stock:
// the consumption happened regardless of the record being kept.
func (s *Service) DeletePatient(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patients := database.Load[domain.Patient](s.db, database.Patients)
	patient := findPatient(patients, id)
	if patient == nil {
		return notFoundf("patient %s does not exist", id)
	}

	consumptions := database.Load[domain.Consumption](s.db, database.Consumptions)
	remaining := consumptions[:0]
	removed := 0
	for _, c := range consumptions {
		if c.PatientID == id {
			removed++
			continue
		}
		remaining = append(remaining, c)
	}
	if removed > 0 {
		if err := database.Save(s.db, database.Consumptions, remaining); err != nil {
			return err
		}
		database.Renumber(remaining, protectedFor(database.Consumptions))
		if err := database.Save(s.db, database.Consumptions, remaining); err != nil {
			return err
		}
	}

	kept := patients[:0]
	for _, p := range patients {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if err := database.Save(s.db, database.Patients, kept); err != nil {
		return err
	}

	mapping := database.Renumber(kept, protectedFor(database.Patients))
	if err := database.Save(s.db, database.Patients, kept); err != nil {
		return err
	}
	s.cascadePatientIDs(mapping)

	s.appendHistory(actor, "delete", "patient", id, patient.Name)
	return nil
}

func (s *Service) ListPatients() []*domain.Patient {
	return database.Load[domain.Patient](s.db, database.Patients)
}

func (s *Service) GetPatient(id string) (*domain.Patient, error) {
	patient := findPatient(database.Load[domain.Patient](s.db, database.Patients), id)
	if patient == nil {
		return nil, notFoundf("patient %s does not exist", id)
	}
	return patient, nil
}

func findPatient(patients []*domain.Patient, id string) *domain.Patient {
	for _, p := range patients {
		if p.ID == id {
			return p
		}
	}
	return nil
}
