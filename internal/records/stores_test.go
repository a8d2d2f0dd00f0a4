package records_test

import (
	"errors"
	"reflect"
	"testing"

	"medstock/m/domain"
	"medstock/m/internal/database"
	"medstock/m/internal/records"
)

// Deleting a store must move its inventory to the main store, record the
// move as a transfer, and renumber the surviving stores around the
// protected main store.
func TestDeleteStoreTransfersInventoryToMainStore(t *testing.T) {
	svc, db := newService(t)
	stores := database.Load[domain.Store](db, database.Stores)
	stores = append(stores,
		&domain.Store{ID: "03", Name: "Ward B Store", DepartmentID: "05", Inventory: map[string]int{"02": 20}},
		&domain.Store{ID: "04", Name: "Ward C Store", DepartmentID: "06", Inventory: map[string]int{}},
	)
	if err := database.Save(db, database.Stores, stores); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteStore(admin, "03"); err != nil {
		t.Fatal(err)
	}

	transfers := svc.ListTransfers()
	if len(transfers) != 1 {
		t.Fatalf("expected one audit transfer, got %d", len(transfers))
	}
	tr := transfers[0]
	if tr.SourceStoreID != "03" || tr.DestinationStoreID != domain.MainStoreID {
		t.Fatalf("transfer endpoints = %s -> %s", tr.SourceStoreID, tr.DestinationStoreID)
	}
	wantLines := []domain.MedicineLine{{MedicineID: "02", Quantity: 20}}
	if !reflect.DeepEqual(tr.Medicines, wantLines) {
		t.Fatalf("transfer lines = %v, want %v", tr.Medicines, wantLines)
	}
	if tr.Status != domain.TransferStatusCompleted {
		t.Fatalf("transfer status = %s", tr.Status)
	}

	byID := loadStores(t, db)
	if byID[domain.MainStoreID].Inventory["02"] != 20 {
		t.Fatalf("main store did not receive stock: %v", byID[domain.MainStoreID].Inventory)
	}
	if _, gone := byID["03"]; gone {
		t.Fatal("store 03 still present")
	}
	// Ward C store compacts into the slot after the protected main store.
	if _, ok := byID["02"]; !ok {
		t.Fatalf("surviving store not renumbered: %v", storeIDs(byID))
	}
	if len(byID) != 2 {
		t.Fatalf("expected 2 stores, got %v", storeIDs(byID))
	}
}

func TestDeleteStoreWithEmptyInventoryWritesNoTransfer(t *testing.T) {
	svc, db := newService(t)
	stores := database.Load[domain.Store](db, database.Stores)
	stores = append(stores, &domain.Store{ID: "02", Name: "Ward A Store", DepartmentID: "02", Inventory: map[string]int{"07": 0}})
	if err := database.Save(db, database.Stores, stores); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteStore(admin, "02"); err != nil {
		t.Fatal(err)
	}
	if transfers := svc.ListTransfers(); len(transfers) != 0 {
		t.Fatalf("expected no transfer for empty inventory, got %d", len(transfers))
	}
}

// The main store can never be deleted, and a rejected delete leaves every
// collection untouched.
func TestDeleteMainStoreRejected(t *testing.T) {
	svc, db := newService(t)
	before := database.Load[domain.Store](db, database.Stores)

	err := svc.DeleteStore(admin, domain.MainStoreID)
	if !errors.Is(err, records.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	after := database.Load[domain.Store](db, database.Stores)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("store collection changed by rejected delete")
	}
	if transfers := svc.ListTransfers(); len(transfers) != 0 {
		t.Fatalf("rejected delete wrote transfers: %d", len(transfers))
	}
}

func TestDeleteStoreNotFound(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.DeleteStore(admin, "77"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func storeIDs(stores map[string]*domain.Store) []string {
	ids := make([]string, 0, len(stores))
	for id := range stores {
		ids = append(ids, id)
	}
	return ids
}
