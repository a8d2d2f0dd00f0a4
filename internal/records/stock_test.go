package records_test

import (
	"testing"

	"medstock/m/domain"
	"medstock/m/internal/database"
	"medstock/m/internal/inventory"
)

func stockFixture(t *testing.T, db *database.DB) {
	t.Helper()
	saveMedicines(t, db,
		&domain.Medicine{ID: "01", Name: "Aspirin", LowStockLimit: 10},
		&domain.Medicine{ID: "02", Name: "Ibuprofen", LowStockLimit: 10},
		&domain.Medicine{ID: "03", Name: "Paracetamol", LowStockLimit: 10},
	)
	stores := database.Load[domain.Store](db, database.Stores)
	stores[0].Inventory = map[string]int{"01": 6, "02": 30}
	stores = append(stores, &domain.Store{
		ID: "02", Name: "Ward A Store", DepartmentID: "02",
		Inventory: map[string]int{"01": 2},
	})
	if err := database.Save(db, database.Stores, stores); err != nil {
		t.Fatal(err)
	}
}

func TestStockReportAggregatesAcrossStores(t *testing.T) {
	svc, db := newService(t)
	stockFixture(t, db)

	entries := svc.StockReport()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	byID := map[string]int{}
	status := map[string]inventory.Status{}
	for _, e := range entries {
		byID[e.Medicine.ID] = e.Total
		status[e.Medicine.ID] = e.Status
	}
	if byID["01"] != 8 {
		t.Fatalf("aspirin total = %d, want 8", byID["01"])
	}
	if status["01"] != inventory.StatusLow {
		t.Fatalf("aspirin status = %s", status["01"])
	}
	if status["02"] != inventory.StatusGood {
		t.Fatalf("ibuprofen status = %s", status["02"])
	}
	if status["03"] != inventory.StatusOutOfStock {
		t.Fatalf("paracetamol status = %s", status["03"])
	}
}

func TestLowStockFiltersReport(t *testing.T) {
	svc, db := newService(t)
	stockFixture(t, db)

	low := svc.LowStock()
	if len(low) != 2 {
		t.Fatalf("expected 2 low entries, got %d", len(low))
	}
	for _, e := range low {
		if e.Medicine.ID == "02" {
			t.Fatal("well-stocked medicine reported as low")
		}
	}
}
