// Package bootstrap seeds and self-heals the baseline records the rest of
// the system assumes to exist.
package bootstrap

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"medstock/m/domain"
	"medstock/m/internal/database"
)

const (
	defaultAdminUsername      = "admin"
	defaultAdminPassword      = "admin123"
	defaultPharmacistUsername = "pharmacist"
	defaultPharmacistPassword = "pharmacy123"
)

// EnsureDefaults recreates the protected baseline if any of it is missing:
// department "01" (Main Pharmacy), store "01" (Main Store) and the default
// accounts "01" and "02". It runs at startup and again after any restore or
// data wipe, since a snapshot may predate some of these records.
func EnsureDefaults(db *database.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	departments := database.Load[domain.Department](db, database.Departments)
	if !hasID(departments, domain.MainDepartmentID) {
		logrus.Info("recreating main pharmacy department")
		departments = append(departments, &domain.Department{
			ID:        domain.MainDepartmentID,
			Name:      "Main Pharmacy",
			CreatedAt: now,
		})
		if err := database.Save(db, database.Departments, departments); err != nil {
			return fmt.Errorf("restore main department: %w", err)
		}
	}

	stores := database.Load[domain.Store](db, database.Stores)
	if !hasID(stores, domain.MainStoreID) {
		logrus.Info("recreating main store")
		stores = append(stores, &domain.Store{
			ID:           domain.MainStoreID,
			Name:         "Main Store",
			DepartmentID: domain.MainDepartmentID,
			Inventory:    map[string]int{},
			CreatedAt:    now,
		})
		if err := database.Save(db, database.Stores, stores); err != nil {
			return fmt.Errorf("restore main store: %w", err)
		}
	}

	users := database.Load[domain.User](db, database.Users)
	changed := false
	if !hasID(users, "01") {
		hashed, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		users = append(users, &domain.User{
			ID:        "01",
			Username:  defaultAdminUsername,
			Password:  string(hashed),
			Role:      domain.RoleAdmin,
			CreatedAt: now,
		})
		changed = true
	}
	if !hasID(users, "02") {
		hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPharmacistPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		users = append(users, &domain.User{
			ID:           "02",
			Username:     defaultPharmacistUsername,
			Password:     string(hashed),
			Role:         domain.RoleDepartmentUser,
			DepartmentID: domain.MainDepartmentID,
			CreatedAt:    now,
		})
		changed = true
	}
	if changed {
		logrus.Info("recreating default accounts")
		if err := database.Save(db, database.Users, users); err != nil {
			return fmt.Errorf("restore default accounts: %w", err)
		}
	}
	return nil
}

func hasID[R database.Record](records []R, id string) bool {
	for _, r := range records {
		if r.RecordID() == id {
			return true
		}
	}
	return false
}
