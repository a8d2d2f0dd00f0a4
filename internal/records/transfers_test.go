package records_test

import (
	"errors"
	"testing"

	"medstock/m/domain"
	"medstock/m/internal/database"
	"medstock/m/internal/records"
)

// transferFixture stocks the main store and adds a second store for a ward
// department.
func transferFixture(t *testing.T, db *database.DB) {
	t.Helper()
	stores := database.Load[domain.Store](db, database.Stores)
	stores[0].Inventory = map[string]int{"01": 10}
	stores = append(stores, &domain.Store{
		ID: "02", Name: "Ward A Store", DepartmentID: "02", Inventory: map[string]int{},
	})
	if err := database.Save(db, database.Stores, stores); err != nil {
		t.Fatal(err)
	}
}

func TestCreateTransferMovesStock(t *testing.T) {
	svc, db := newService(t)
	transferFixture(t, db)

	transfer, err := svc.CreateTransfer(admin, records.TransferInput{
		SourceStoreID:      domain.MainStoreID,
		DestinationStoreID: "02",
		Medicines:          []domain.MedicineLine{{MedicineID: "01", Quantity: 4}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if transfer.Status != domain.TransferStatusCompleted {
		t.Fatalf("transfer status = %s", transfer.Status)
	}
	if got := svc.Ledger().Quantity(domain.MainDepartmentID, "01"); got != 6 {
		t.Fatalf("source stock = %d, want 6", got)
	}
	if got := svc.Ledger().Quantity("02", "01"); got != 4 {
		t.Fatalf("destination stock = %d, want 4", got)
	}
}

func TestCreateTransferSameStoreRejected(t *testing.T) {
	svc, db := newService(t)
	transferFixture(t, db)

	_, err := svc.CreateTransfer(admin, records.TransferInput{
		SourceStoreID:      domain.MainStoreID,
		DestinationStoreID: domain.MainStoreID,
		Medicines:          []domain.MedicineLine{{MedicineID: "01", Quantity: 1}},
	})
	if !errors.Is(err, records.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTransferInsufficientStock(t *testing.T) {
	svc, db := newService(t)
	transferFixture(t, db)

	_, err := svc.CreateTransfer(admin, records.TransferInput{
		SourceStoreID:      domain.MainStoreID,
		DestinationStoreID: "02",
		Medicines:          []domain.MedicineLine{{MedicineID: "01", Quantity: 11}},
	})
	if !errors.Is(err, records.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := svc.Ledger().Quantity(domain.MainDepartmentID, "01"); got != 10 {
		t.Fatalf("rejected transfer changed source stock to %d", got)
	}
	if got := len(svc.ListTransfers()); got != 0 {
		t.Fatalf("rejected transfer persisted: %d records", got)
	}
}

func TestCreateTransferUnknownStore(t *testing.T) {
	svc, db := newService(t)
	transferFixture(t, db)

	_, err := svc.CreateTransfer(admin, records.TransferInput{
		SourceStoreID:      domain.MainStoreID,
		DestinationStoreID: "09",
		Medicines:          []domain.MedicineLine{{MedicineID: "01", Quantity: 1}},
	})
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteTransferKeepsStock(t *testing.T) {
	svc, db := newService(t)
	transferFixture(t, db)

	if _, err := svc.CreateTransfer(admin, records.TransferInput{
		SourceStoreID:      domain.MainStoreID,
		DestinationStoreID: "02",
		Medicines:          []domain.MedicineLine{{MedicineID: "01", Quantity: 4}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTransfer(admin, "01"); err != nil {
		t.Fatal(err)
	}
	if got := len(svc.ListTransfers()); got != 0 {
		t.Fatalf("transfer not deleted: %d left", got)
	}
	if got := svc.Ledger().Quantity("02", "01"); got != 4 {
		t.Fatalf("deleting transfer record moved stock: %d", got)
	}
}
