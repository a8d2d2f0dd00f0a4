package records

import (
	"fmt"
	"strings"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

type DepartmentInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// CreateDepartment creates a department together with its store. Every
// department has exactly one store.
func (s *Service) CreateDepartment(actor domain.Actor, in DepartmentInput) (*domain.Department, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("department name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	departments := database.Load[domain.Department](s.db, database.Departments)
	department := &domain.Department{
		ID:        database.NextID(departments),
		Name:      strings.TrimSpace(in.Name),
		Phone:     in.Phone,
		Location:  in.Location,
		CreatedAt: now(),
	}
	departments = append(departments, department)
	if err := database.Save(s.db, database.Departments, departments); err != nil {
		return nil, err
	}

	stores := database.Load[domain.Store](s.db, database.Stores)
	stores = append(stores, &domain.Store{
		ID:           database.NextID(stores),
		Name:         department.Name + " Store",
		DepartmentID: department.ID,
		Inventory:    map[string]int{},
		CreatedAt:    now(),
	})
	if err := database.Save(s.db, database.Stores, stores); err != nil {
		return nil, fmt.Errorf("department %s created but its store was not: %w", department.ID, err)
	}

	s.appendHistory(actor, "create", "department", department.ID, department.Name)
	return department, nil
}

func (s *Service) UpdateDepartment(actor domain.Actor, id string, in DepartmentInput) (*domain.Department, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("department name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	departments := database.Load[domain.Department](s.db, database.Departments)
	department := findDepartment(departments, id)
	if department == nil {
		return nil, notFoundf("department %s does not exist", id)
	}
	department.Name = strings.TrimSpace(in.Name)
	department.Phone = in.Phone
	department.Location = in.Location
	department.UpdatedAt = now()
	if err := database.Save(s.db, database.Departments, departments); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "update", "department", department.ID, department.Name)
	return department, nil
}

// DeleteDepartment removes a department and everything that depends on it:
// first its user accounts, then its store (inventory transferred to the
// main store), then the department record itself. Steps run in order and a
// failing step aborts the rest; completed steps are not rolled back.
func (s *Service) DeleteDepartment(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == domain.MainDepartmentID {
		return validationf("the main pharmacy department cannot be deleted")
	}
	departments := database.Load[domain.Department](s.db, database.Departments)
	department := findDepartment(departments, id)
	if department == nil {
		return notFoundf("department %s does not exist", id)
	}

	users := database.Load[domain.User](s.db, database.Users)
	protectedUsers := protectedFor(database.Users)
	adminsLeft := 0
	var doomed []string
	for _, u := range users {
		if u.DepartmentID == id {
			if protectedUsers[u.ID] {
				return validationf("department %s has protected user accounts", id)
			}
			doomed = append(doomed, u.ID)
			continue
		}
		if u.Role == domain.RoleAdmin {
			adminsLeft++
		}
	}
	if len(doomed) > 0 && adminsLeft == 0 {
		return validationf("deleting department %s would remove the last admin", id)
	}

	if len(doomed) > 0 {
		if err := s.deleteUsersLocked(actor, doomed); err != nil {
			return fmt.Errorf("department %s not deleted, user cleanup failed: %w", id, err)
		}
	}

	if store := storeByDepartment(database.Load[domain.Store](s.db, database.Stores), id); store != nil {
		if err := s.deleteStoreLocked(actor, store.ID); err != nil {
			return fmt.Errorf("department %s not deleted, store cleanup failed: %w", id, err)
		}
	}

	kept := make([]*domain.Department, 0, len(departments))
	for _, d := range departments {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	if err := database.Save(s.db, database.Departments, kept); err != nil {
		return err
	}

	// Patients and consumptions of the deleted department are kept but
	// detached, so the freed ID can never alias their old department after
	// renumbering.
	patients := database.Load[domain.Patient](s.db, database.Patients)
	for _, p := range patients {
		if p.DepartmentID == id {
			p.DepartmentID = ""
		}
	}
	cascadeSaveErr(database.Patients, database.Save(s.db, database.Patients, patients))

	consumptions := database.Load[domain.Consumption](s.db, database.Consumptions)
	for _, c := range consumptions {
		if c.DepartmentID == id {
			c.DepartmentID = ""
		}
	}
	cascadeSaveErr(database.Consumptions, database.Save(s.db, database.Consumptions, consumptions))

	mapping := database.Renumber(kept, protectedFor(database.Departments))
	if err := database.Save(s.db, database.Departments, kept); err != nil {
		return err
	}
	s.cascadeDepartmentIDs(mapping)

	s.appendHistory(actor, "delete", "department", id, department.Name)
	return nil
}

func (s *Service) ListDepartments() []*domain.Department {
	return database.Load[domain.Department](s.db, database.Departments)
}

func (s *Service) GetDepartment(id string) (*domain.Department, error) {
	department := findDepartment(database.Load[domain.Department](s.db, database.Departments), id)
	if department == nil {
		return nil, notFoundf("department %s does not exist", id)
	}
	return department, nil
}

func findDepartment(departments []*domain.Department, id string) *domain.Department {
	for _, d := range departments {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func storeByDepartment(stores []*domain.Store, departmentID string) *domain.Store {
	for _, st := range stores {
		if st.DepartmentID == departmentID {
			return st
		}
	}
	return nil
}
