package records

import (
	"fmt"
	"strings"
	"time"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

// Warning is a non-blocking inconsistency found by CheckIntegrity. Warnings
// are reported, never enforced: no write is blocked because of one.
type Warning struct {
	Collection string `json:"collection"`
	RecordID   string `json:"record_id"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

func warn(collection, recordID, field, format string, args ...any) Warning {
	return Warning{
		Collection: collection,
		RecordID:   recordID,
		Field:      field,
		Message:    fmt.Sprintf(format, args...),
	}
}

// CheckIntegrity scans every collection for referential problems: orphaned
// foreign keys, malformed dates, non-positive quantities, duplicate
// usernames and self-referential transfers.
func (s *Service) CheckIntegrity() []Warning {
	var warnings []Warning

	medicines := database.Load[domain.Medicine](s.db, database.Medicines)
	suppliers := database.Load[domain.Supplier](s.db, database.Suppliers)
	departments := database.Load[domain.Department](s.db, database.Departments)
	stores := database.Load[domain.Store](s.db, database.Stores)
	patients := database.Load[domain.Patient](s.db, database.Patients)
	users := database.Load[domain.User](s.db, database.Users)

	supplierIDs := idSet(suppliers, func(x *domain.Supplier) string { return x.ID })
	departmentIDs := idSet(departments, func(x *domain.Department) string { return x.ID })
	storeIDs := idSet(stores, func(x *domain.Store) string { return x.ID })
	patientIDs := idSet(patients, func(x *domain.Patient) string { return x.ID })
	medicineIDs := idSet(medicines, func(x *domain.Medicine) string { return x.ID })

	for _, m := range medicines {
		if m.SupplierID != "" && !supplierIDs[m.SupplierID] {
			warnings = append(warnings, warn(database.Medicines, m.ID, "supplier_id",
				"references missing supplier %s", m.SupplierID))
		}
		if m.ExpiryDate != "" {
			if _, err := time.Parse("2006-01-02", m.ExpiryDate); err != nil {
				warnings = append(warnings, warn(database.Medicines, m.ID, "expiry_date",
					"malformed date %q", m.ExpiryDate))
			}
		}
	}

	for _, st := range stores {
		if st.DepartmentID != "" && !departmentIDs[st.DepartmentID] {
			warnings = append(warnings, warn(database.Stores, st.ID, "department_id",
				"references missing department %s", st.DepartmentID))
		}
		for medicineID, qty := range st.Inventory {
			if !medicineIDs[medicineID] {
				warnings = append(warnings, warn(database.Stores, st.ID, "inventory",
					"holds stock of missing medicine %s", medicineID))
			}
			if qty < 0 {
				warnings = append(warnings, warn(database.Stores, st.ID, "inventory",
					"negative quantity %d of medicine %s", qty, medicineID))
			}
		}
	}

	for _, p := range patients {
		if p.DepartmentID != "" && !departmentIDs[p.DepartmentID] {
			warnings = append(warnings, warn(database.Patients, p.ID, "department_id",
				"references missing department %s", p.DepartmentID))
		}
	}

	seen := map[string]string{}
	for _, u := range users {
		if u.DepartmentID != "" && !departmentIDs[u.DepartmentID] {
			warnings = append(warnings, warn(database.Users, u.ID, "department_id",
				"references missing department %s", u.DepartmentID))
		}
		key := strings.ToLower(u.Username)
		if other, dup := seen[key]; dup {
			warnings = append(warnings, warn(database.Users, u.ID, "username",
				"duplicate username %q, also used by user %s", u.Username, other))
		} else {
			seen[key] = u.ID
		}
	}

	for _, p := range database.Load[domain.Purchase](s.db, database.Purchases) {
		if p.SupplierID != "" && !supplierIDs[p.SupplierID] {
			warnings = append(warnings, warn(database.Purchases, p.ID, "supplier_id",
				"references missing supplier %s", p.SupplierID))
		}
		warnings = append(warnings, lineWarnings(database.Purchases, p.ID, p.Medicines, medicineIDs)...)
	}

	for _, c := range database.Load[domain.Consumption](s.db, database.Consumptions) {
		if c.PatientID != "" && !patientIDs[c.PatientID] {
			warnings = append(warnings, warn(database.Consumptions, c.ID, "patient_id",
				"references missing patient %s", c.PatientID))
		}
		if c.DepartmentID != "" && !departmentIDs[c.DepartmentID] {
			warnings = append(warnings, warn(database.Consumptions, c.ID, "department_id",
				"references missing department %s", c.DepartmentID))
		}
		warnings = append(warnings, lineWarnings(database.Consumptions, c.ID, c.Medicines, medicineIDs)...)
	}

	for _, t := range database.Load[domain.Transfer](s.db, database.Transfers) {
		if t.SourceStoreID == t.DestinationStoreID {
			warnings = append(warnings, warn(database.Transfers, t.ID, "destination_store_id",
				"source and destination are the same store %s", t.SourceStoreID))
		}
		if !storeIDs[t.SourceStoreID] {
			warnings = append(warnings, warn(database.Transfers, t.ID, "source_store_id",
				"references missing store %s", t.SourceStoreID))
		}
		if !storeIDs[t.DestinationStoreID] {
			warnings = append(warnings, warn(database.Transfers, t.ID, "destination_store_id",
				"references missing store %s", t.DestinationStoreID))
		}
		warnings = append(warnings, lineWarnings(database.Transfers, t.ID, t.Medicines, medicineIDs)...)
	}

	return warnings
}

func lineWarnings(collection, recordID string, lines []domain.MedicineLine, medicineIDs map[string]bool) []Warning {
	var warnings []Warning
	for _, line := range lines {
		if !medicineIDs[line.MedicineID] {
			warnings = append(warnings, warn(collection, recordID, "medicines",
				"references missing medicine %s", line.MedicineID))
		}
		if line.Quantity <= 0 {
			warnings = append(warnings, warn(collection, recordID, "medicines",
				"non-positive quantity %d for medicine %s", line.Quantity, line.MedicineID))
		}
	}
	return warnings
}

func idSet[T any](records []*T, id func(*T) string) map[string]bool {
	set := make(map[string]bool, len(records))
	for _, r := range records {
		set[id(r)] = true
	}
	return set
}
