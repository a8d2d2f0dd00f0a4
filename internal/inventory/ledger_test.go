package inventory

import (
	"testing"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

func setupLedger(t *testing.T, stores []*domain.Store) (*Ledger, *database.DB) {
	t.Helper()
	db, err := database.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := database.Save(db, database.Stores, stores); err != nil {
		t.Fatalf("Save stores: %v", err)
	}
	return New(db), db
}

func TestAdjustAddAndSubtract(t *testing.T) {
	ledger, _ := setupLedger(t, []*domain.Store{
		{ID: "01", DepartmentID: "01", Inventory: map[string]int{"05": 10}},
	})

	if err := ledger.Adjust("01", "05", 4, OpAdd); err != nil {
		t.Fatal(err)
	}
	if got := ledger.Quantity("01", "05"); got != 14 {
		t.Fatalf("after add got %d, want 14", got)
	}
	if err := ledger.Adjust("01", "05", 9, OpSubtract); err != nil {
		t.Fatal(err)
	}
	if got := ledger.Quantity("01", "05"); got != 5 {
		t.Fatalf("after subtract got %d, want 5", got)
	}
}

func TestSubtractClampsAtZero(t *testing.T) {
	ledger, _ := setupLedger(t, []*domain.Store{
		{ID: "01", DepartmentID: "01", Inventory: map[string]int{"05": 3}},
	})
	if err := ledger.Adjust("01", "05", 10, OpSubtract); err != nil {
		t.Fatal(err)
	}
	if got := ledger.Quantity("01", "05"); got != 0 {
		t.Fatalf("quantity went to %d, want clamp at 0", got)
	}
}

func TestAdjustUnknownDepartmentFails(t *testing.T) {
	ledger, _ := setupLedger(t, nil)
	if err := ledger.Adjust("09", "05", 1, OpAdd); err == nil {
		t.Fatal("expected error for missing store")
	}
}

func TestAdjustRejectsNegativeQuantity(t *testing.T) {
	ledger, _ := setupLedger(t, []*domain.Store{
		{ID: "01", DepartmentID: "01", Inventory: map[string]int{}},
	})
	if err := ledger.Adjust("01", "05", -1, OpAdd); err == nil {
		t.Fatal("expected error for negative quantity")
	}
}

func TestTotalQuantitySumsAcrossStores(t *testing.T) {
	ledger, _ := setupLedger(t, []*domain.Store{
		{ID: "01", DepartmentID: "01", Inventory: map[string]int{"05": 10}},
		{ID: "02", DepartmentID: "02", Inventory: map[string]int{"05": 7, "06": 1}},
	})
	if got := ledger.TotalQuantity("05"); got != 17 {
		t.Fatalf("TotalQuantity = %d, want 17", got)
	}
	if got := ledger.Quantity("02", "05"); got != 7 {
		t.Fatalf("Quantity(02) = %d, want 7", got)
	}
	if got := ledger.Quantity("03", "05"); got != 0 {
		t.Fatalf("Quantity for missing store = %d, want 0", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		limit    int
		want     Status
	}{
		{"zero stock", 0, 10, StatusOutOfStock},
		{"at limit", 10, 10, StatusLow},
		{"below limit", 4, 10, StatusLow},
		{"just above limit", 11, 10, StatusMedium},
		{"at one and a half times limit", 15, 10, StatusMedium},
		{"above medium band", 16, 10, StatusGood},
		{"zero limit nonzero stock", 5, 0, StatusGood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.quantity, tt.limit); got != tt.want {
				t.Errorf("Classify(%d, %d) = %s, want %s", tt.quantity, tt.limit, got, tt.want)
			}
		})
	}
}
