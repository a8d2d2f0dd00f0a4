package records

import (
	"github.com/sirupsen/logrus"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

// Cascade updaters propagate an old->new ID mapping produced by a
// renumbering pass into every collection holding references to the
// renumbered entity type. Each dependent collection is rewritten
// best-effort: a failed save is logged and the remaining collections are
// still attempted. There is no all-or-nothing transaction here.

func cascadeSaveErr(collection string, err error) {
	if err != nil {
		logrus.WithError(err).WithField("collection", collection).
			Error("cascade update not persisted")
	}
}

func remapLines(lines []domain.MedicineLine, mapping map[string]string) {
	for i := range lines {
		lines[i].MedicineID = database.Remap(mapping, lines[i].MedicineID)
	}
}

// cascadeMedicineIDs rewrites store inventory keys and purchase,
// consumption and transfer line items.
func (s *Service) cascadeMedicineIDs(mapping map[string]string) {
	stores := database.Load[domain.Store](s.db, database.Stores)
	for _, store := range stores {
		if len(store.Inventory) == 0 {
			continue
		}
		remapped := make(map[string]int, len(store.Inventory))
		for medicineID, qty := range store.Inventory {
			remapped[database.Remap(mapping, medicineID)] += qty
		}
		store.Inventory = remapped
	}
	cascadeSaveErr(database.Stores, database.Save(s.db, database.Stores, stores))

	purchases := database.Load[domain.Purchase](s.db, database.Purchases)
	for _, p := range purchases {
		remapLines(p.Medicines, mapping)
	}
	cascadeSaveErr(database.Purchases, database.Save(s.db, database.Purchases, purchases))

	consumptions := database.Load[domain.Consumption](s.db, database.Consumptions)
	for _, c := range consumptions {
		remapLines(c.Medicines, mapping)
	}
	cascadeSaveErr(database.Consumptions, database.Save(s.db, database.Consumptions, consumptions))

	transfers := database.Load[domain.Transfer](s.db, database.Transfers)
	for _, t := range transfers {
		remapLines(t.Medicines, mapping)
	}
	cascadeSaveErr(database.Transfers, database.Save(s.db, database.Transfers, transfers))
}

// cascadeSupplierIDs rewrites medicine and purchase supplier references.
func (s *Service) cascadeSupplierIDs(mapping map[string]string) {
	medicines := database.Load[domain.Medicine](s.db, database.Medicines)
	for _, m := range medicines {
		m.SupplierID = database.Remap(mapping, m.SupplierID)
	}
	cascadeSaveErr(database.Medicines, database.Save(s.db, database.Medicines, medicines))

	purchases := database.Load[domain.Purchase](s.db, database.Purchases)
	for _, p := range purchases {
		p.SupplierID = database.Remap(mapping, p.SupplierID)
	}
	cascadeSaveErr(database.Purchases, database.Save(s.db, database.Purchases, purchases))
}

// cascadeDepartmentIDs rewrites department references held by users,
// stores, patients and consumptions.
func (s *Service) cascadeDepartmentIDs(mapping map[string]string) {
	users := database.Load[domain.User](s.db, database.Users)
	for _, u := range users {
		u.DepartmentID = database.Remap(mapping, u.DepartmentID)
	}
	cascadeSaveErr(database.Users, database.Save(s.db, database.Users, users))

	stores := database.Load[domain.Store](s.db, database.Stores)
	for _, st := range stores {
		st.DepartmentID = database.Remap(mapping, st.DepartmentID)
	}
	cascadeSaveErr(database.Stores, database.Save(s.db, database.Stores, stores))

	patients := database.Load[domain.Patient](s.db, database.Patients)
	for _, p := range patients {
		p.DepartmentID = database.Remap(mapping, p.DepartmentID)
	}
	cascadeSaveErr(database.Patients, database.Save(s.db, database.Patients, patients))

	consumptions := database.Load[domain.Consumption](s.db, database.Consumptions)
	for _, c := range consumptions {
		c.DepartmentID = database.Remap(mapping, c.DepartmentID)
	}
	cascadeSaveErr(database.Consumptions, database.Save(s.db, database.Consumptions, consumptions))
}

// cascadePatientIDs rewrites consumption patient references.
func (s *Service) cascadePatientIDs(mapping map[string]string) {
	consumptions := database.Load[domain.Consumption](s.db, database.Consumptions)
	for _, c := range consumptions {
		c.PatientID = database.Remap(mapping, c.PatientID)
	}
	cascadeSaveErr(database.Consumptions, database.Save(s.db, database.Consumptions, consumptions))
}

// cascadeStoreIDs rewrites transfer source and destination references.
func (s *Service) cascadeStoreIDs(mapping map[string]string) {
	transfers := database.Load[domain.Transfer](s.db, database.Transfers)
	for _, t := range transfers {
		t.SourceStoreID = database.Remap(mapping, t.SourceStoreID)
		t.DestinationStoreID = database.Remap(mapping, t.DestinationStoreID)
	}
	cascadeSaveErr(database.Transfers, database.Save(s.db, database.Transfers, transfers))
}

// cascadeUserIDs rewrites history actor references, and history entity
// references for entries about users.
func (s *Service) cascadeUserIDs(mapping map[string]string) {
	entries := database.Load[domain.History](s.db, database.History)
	for _, e := range entries {
		e.UserID = database.Remap(mapping, e.UserID)
		if e.EntityType == "user" {
			e.EntityID = database.Remap(mapping, e.EntityID)
		}
	}
	cascadeSaveErr(database.History, database.Save(s.db, database.History, entries))
}
