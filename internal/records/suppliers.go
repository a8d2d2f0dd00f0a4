package records

import (
	"strings"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

type SupplierInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (s *Service) CreateSupplier(actor domain.Actor, in SupplierInput) (*domain.Supplier, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("supplier name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	suppliers := database.Load[domain.Supplier](s.db, database.Suppliers)
	supplier := &domain.Supplier{
		ID:        database.NextID(suppliers),
		Name:      strings.TrimSpace(in.Name),
		Phone:     in.Phone,
		Email:     in.Email,
		Address:   in.Address,
		CreatedAt: now(),
	}
	suppliers = append(suppliers, supplier)
	if err := database.Save(s.db, database.Suppliers, suppliers); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "create", "supplier", supplier.ID, supplier.Name)
	return supplier, nil
}

func (s *Service) UpdateSupplier(actor domain.Actor, id string, in SupplierInput) (*domain.Supplier, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationf("supplier name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	suppliers := database.Load[domain.Supplier](s.db, database.Suppliers)
	supplier := findSupplier(suppliers, id)
	if supplier == nil {
		return nil, notFoundf("supplier %s does not exist", id)
	}
	supplier.Name = strings.TrimSpace(in.Name)
	supplier.Phone = in.Phone
	supplier.Email = in.Email
	supplier.Address = in.Address
	supplier.UpdatedAt = now()
	if err := database.Save(s.db, database.Suppliers, suppliers); err != nil {
		return nil, err
	}
	s.appendHistory(actor, "update", "supplier", supplier.ID, supplier.Name)
	return supplier, nil
}

// DeleteSupplier removes a supplier, clears orphaned medicine and purchase
// references, renumbers the collection and cascades the mapping.
func (s *Service) DeleteSupplier(actor domain.Actor, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	suppliers := database.Load[domain.Supplier](s.db, database.Suppliers)
	if findSupplier(suppliers, id) == nil {
		return notFoundf("supplier %s does not exist", id)
	}
	kept := suppliers[:0]
	for _, sup := range suppliers {
		if sup.ID != id {
			kept = append(kept, sup)
		}
	}
	if err := database.Save(s.db, database.Suppliers, kept); err != nil {
		return err
	}

	medicines := database.Load[domain.Medicine](s.db, database.Medicines)
	for _, m := range medicines {
		if m.SupplierID == id {
			m.SupplierID = ""
		}
	}
	cascadeSaveErr(database.Medicines, database.Save(s.db, database.Medicines, medicines))

	purchases := database.Load[domain.Purchase](s.db, database.Purchases)
	for _, p := range purchases {
		if p.SupplierID == id {
			p.SupplierID = ""
		}
	}
	cascadeSaveErr(database.Purchases, database.Save(s.db, database.Purchases, purchases))

	mapping := database.Renumber(kept, protectedFor(database.Suppliers))
	if err := database.Save(s.db, database.Suppliers, kept); err != nil {
		return err
	}
	s.cascadeSupplierIDs(mapping)

	s.appendHistory(actor, "delete", "supplier", id, "")
	return nil
}

func (s *Service) ListSuppliers() []*domain.Supplier {
	return database.Load[domain.Supplier](s.db, database.Suppliers)
}

func (s *Service) GetSupplier(id string) (*domain.Supplier, error) {
	supplier := findSupplier(database.Load[domain.Supplier](s.db, database.Suppliers), id)
	if supplier == nil {
		return nil, notFoundf("supplier %s does not exist", id)
	}
	return supplier, nil
}

func findSupplier(suppliers []*domain.Supplier, id string) *domain.Supplier {
	for _, sup := range suppliers {
		if sup.ID == id {
			return sup
		}
	}
	return nil
}
