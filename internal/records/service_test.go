package records_test

import (
	"sync"
	"testing"

	"medstock/m/domain"
	"medstock/m/internal/backup"
	"medstock/m/internal/bootstrap"
	"medstock/m/internal/database"
	"medstock/m/internal/records"
)

var admin = domain.Actor{UserID: "01", Username: "admin", Role: domain.RoleAdmin}

// newService opens a fresh datastore with the protected baseline in place:
// department 01, store 01, users 01 and 02.
func newService(t *testing.T) (*records.Service, *database.DB) {
	t.Helper()
	db, err := database.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := bootstrap.EnsureDefaults(db); err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}
	return records.New(db), db
}

func saveMedicines(t *testing.T, db *database.DB, medicines ...*domain.Medicine) {
	t.Helper()
	if err := database.Save(db, database.Medicines, medicines); err != nil {
		t.Fatal(err)
	}
}

func loadStores(t *testing.T, db *database.DB) map[string]*domain.Store {
	t.Helper()
	stores := map[string]*domain.Store{}
	for _, st := range database.Load[domain.Store](db, database.Stores) {
		stores[st.ID] = st
	}
	return stores
}

func TestMutationsAppendHistory(t *testing.T) {
	svc, _ := newService(t)

	if _, err := svc.CreateSupplier(admin, records.SupplierInput{Name: "Acme Pharma"}); err != nil {
		t.Fatal(err)
	}
	entries := svc.ListHistory("supplier", "")
	if len(entries) != 1 {
		t.Fatalf("expected one supplier history entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Action != "create" || e.UserID != admin.UserID || e.EntityID != "01" {
		t.Fatalf("unexpected history entry %+v", e)
	}
	if e.ID != "01" {
		t.Fatalf("history entry id = %s, want 01", e.ID)
	}
}

func TestRestoreSnapshotReplacesCollections(t *testing.T) {
	svc, db := newService(t)
	if _, err := svc.CreateSupplier(admin, records.SupplierInput{Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	snap := backup.Export(db)
	if _, err := svc.CreateSupplier(admin, records.SupplierInput{Name: "Globex"}); err != nil {
		t.Fatal(err)
	}

	if err := svc.RestoreSnapshot(snap); err != nil {
		t.Fatal(err)
	}
	suppliers := svc.ListSuppliers()
	if len(suppliers) != 1 || suppliers[0].Name != "Acme" {
		t.Fatalf("suppliers after restore = %+v", suppliers)
	}
}

// Restore runs under the same mutex as every other mutation, so concurrent
// writers never interleave with the collection rewrite.
func TestRestoreSnapshotSerializesWithMutations(t *testing.T) {
	svc, db := newService(t)
	snap := backup.Export(db)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			svc.CreatePatient(admin, records.PatientInput{Name: "Jane Doe", DepartmentID: "01"})
		}
	}()
	for i := 0; i < 10; i++ {
		if err := svc.RestoreSnapshot(snap); err != nil {
			t.Error(err)
		}
	}
	wg.Wait()

	// Whatever the interleaving, the baseline survives intact.
	users := database.Load[domain.User](db, database.Users)
	if len(users) != 2 {
		t.Fatalf("users after concurrent restore = %d", len(users))
	}
}

func TestListHistoryFilters(t *testing.T) {
	svc, _ := newService(t)
	if _, err := svc.CreateSupplier(admin, records.SupplierInput{Name: "Acme"}); err != nil {
		t.Fatal(err)
	}
	other := domain.Actor{UserID: "02", Username: "pharmacist", Role: domain.RoleDepartmentUser}
	if _, err := svc.CreatePatient(other, records.PatientInput{Name: "Jane Doe", DepartmentID: "01"}); err != nil {
		t.Fatal(err)
	}

	if got := len(svc.ListHistory("patient", "")); got != 1 {
		t.Fatalf("patient filter returned %d entries", got)
	}
	if got := len(svc.ListHistory("", "02")); got != 1 {
		t.Fatalf("user filter returned %d entries", got)
	}
	if got := len(svc.ListHistory("", "")); got != 2 {
		t.Fatalf("unfiltered returned %d entries", got)
	}
}
