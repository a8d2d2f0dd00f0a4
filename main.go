package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"medstock/m/domain"
	"medstock/m/internal/api"
	"medstock/m/internal/bootstrap"
	"medstock/m/internal/config"
	"medstock/m/internal/database"
	"medstock/m/internal/records"
	"medstock/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db, err := database.Open(cfg.DataDir)
	if err != nil {
		logrus.Fatalf("failed to open datastore: %v", err)
	}
	if err := bootstrap.EnsureDefaults(db); err != nil {
		logrus.Fatalf("failed to seed defaults: %v", err)
	}

	svc := records.New(db)
	if cfg.MedicineCSV != "" {
		system := domain.Actor{UserID: "01", Username: "admin", Role: domain.RoleAdmin}
		seed.LoadMedicines(svc, system, cfg.MedicineCSV)
	}

	handler := api.New(svc, cfg.Secret)

	logrus.Infof("pharmacy records server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
