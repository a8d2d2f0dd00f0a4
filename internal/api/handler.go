package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"medstock/m/domain"
	"medstock/m/internal/backup"
	"medstock/m/internal/records"
)

type ctxKey string

const ctxActor ctxKey = "actor"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc      *records.Service
	secret   string
	validate *validator.Validate
}

// New constructs a Handler.
func New(svc *records.Service, secret string) *Handler {
	return &Handler{svc: svc, secret: secret, validate: validator.New()}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Post("/auth/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Post("/auth/reset-password", h.resetPassword)

		pr.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.listMedicines)
			r.Post("/", h.createMedicine)
			r.Post("/bulk-delete", h.bulkDeleteMedicines)
			r.Get("/{id}", h.getMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Delete("/{id}", h.deleteMedicine)
		})

		pr.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.listSuppliers)
			r.Post("/", h.createSupplier)
			r.Put("/{id}", h.updateSupplier)
			r.Delete("/{id}", h.deleteSupplier)
		})

		pr.Route("/departments", func(r chi.Router) {
			r.Get("/", h.listDepartments)
			r.Post("/", h.createDepartment)
			r.Put("/{id}", h.updateDepartment)
			r.Delete("/{id}", h.deleteDepartment)
		})

		pr.Route("/stores", func(r chi.Router) {
			r.Get("/", h.listStores)
			r.Get("/{id}", h.getStore)
			r.Delete("/{id}", h.deleteStore)
		})

		pr.Route("/patients", func(r chi.Router) {
			r.Get("/", h.listPatients)
			r.Post("/", h.createPatient)
			r.Put("/{id}", h.updatePatient)
			r.Delete("/{id}", h.deletePatient)
		})

		pr.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Put("/{id}", h.updateUser)
			r.Delete("/{id}", h.deleteUser)
		})

		pr.Route("/purchases", func(r chi.Router) {
			r.Get("/", h.listPurchases)
			r.Post("/", h.createPurchase)
			r.Post("/{id}/status", h.updatePurchaseStatus)
			r.Delete("/{id}", h.deletePurchase)
		})

		pr.Route("/consumptions", func(r chi.Router) {
			r.Get("/", h.listConsumptions)
			r.Post("/", h.recordConsumption)
			r.Delete("/{id}", h.deleteConsumption)
		})

		pr.Route("/transfers", func(r chi.Router) {
			r.Get("/", h.listTransfers)
			r.Post("/", h.createTransfer)
			r.Delete("/{id}", h.deleteTransfer)
		})

		pr.Get("/history", h.listHistory)
		pr.Get("/reports/stock", h.stockReport)
		pr.Get("/reports/low-stock", h.lowStock)
		pr.Get("/integrity", h.integrity)

		pr.Get("/backup/export", h.exportBackup)
		pr.Post("/backup/restore", h.restoreBackup)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication helpers

type authClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(user *domain.User) (string, error) {
	claims := authClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		actor := domain.Actor{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxActor, actor)))
	})
}

func (h *Handler) actor(r *http.Request) domain.Actor {
	actor, _ := r.Context().Value(ctxActor).(domain.Actor)
	return actor
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if h.actor(r).Role != domain.RoleAdmin {
		respondError(w, http.StatusForbidden, "insufficient permissions")
		return false
	}
	return true
}

// Auth handlers

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Authenticate(req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.generateToken(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	actor := h.actor(r)
	user, err := h.svc.GetUser(actor.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	_, err = h.svc.UpdateUser(actor, user.ID, records.UserInput{
		Username:     user.Username,
		Password:     req.NewPassword,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

// Medicine handlers

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListMedicines())
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	medicine, err := h.svc.GetMedicine(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicine)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var in records.MedicineInput
	if !h.decode(w, r, &in) {
		return
	}
	medicine, err := h.svc.CreateMedicine(h.actor(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, medicine)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	var in records.MedicineInput
	if !h.decode(w, r, &in) {
		return
	}
	medicine, err := h.svc.UpdateMedicine(h.actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicine)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeleteMedicine(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

func (h *Handler) bulkDeleteMedicines(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req bulkDeleteRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.DeleteMedicines(h.actor(r), req.IDs); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Supplier handlers

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListSuppliers())
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var in records.SupplierInput
	if !h.decode(w, r, &in) {
		return
	}
	supplier, err := h.svc.CreateSupplier(h.actor(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var in records.SupplierInput
	if !h.decode(w, r, &in) {
		return
	}
	supplier, err := h.svc.UpdateSupplier(h.actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, supplier)
}

func (h *Handler) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeleteSupplier(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Department handlers

func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListDepartments())
}

func (h *Handler) createDepartment(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var in records.DepartmentInput
	if !h.decode(w, r, &in) {
		return
	}
	department, err := h.svc.CreateDepartment(h.actor(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, department)
}

func (h *Handler) updateDepartment(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var in records.DepartmentInput
	if !h.decode(w, r, &in) {
		return
	}
	department, err := h.svc.UpdateDepartment(h.actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, department)
}

func (h *Handler) deleteDepartment(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeleteDepartment(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Store handlers

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListStores())
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.svc.GetStore(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, store)
}

func (h *Handler) deleteStore(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeleteStore(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Patient handlers

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListPatients())
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var in records.PatientInput
	if !h.decode(w, r, &in) {
		return
	}
	patient, err := h.svc.CreatePatient(h.actor(r), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, patient)
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	var in records.PatientInput
	if !h.decode(w, r, &in) {
		return
	}
	patient, err := h.svc.UpdatePatient(h.actor(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, patient)
}

func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeletePatient(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// User handlers

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	respondJSON(w, http.StatusOK, h.svc.ListUsers())
}

type userRequest struct {
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password"`
	Role         string `json:"role" validate:"required,oneof=admin department_user"`
	DepartmentID string `json:"department_id"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req userRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.CreateUser(h.actor(r), records.UserInput(req))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var req userRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateUser(h.actor(r), chi.URLParam(r, "id"), records.UserInput(req))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeleteUser(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Purchase handlers

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListPurchases())
}

type purchaseRequest struct {
	SupplierID string                `json:"supplier_id" validate:"required"`
	Medicines  []domain.MedicineLine `json:"medicines" validate:"required,min=1,dive"`
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !h.decode(w, r, &req) {
		return
	}
	purchase, err := h.svc.CreatePurchase(h.actor(r), records.PurchaseInput(req))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, purchase)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending complete delivered"`
}

func (h *Handler) updatePurchaseStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !h.decode(w, r, &req) {
		return
	}
	purchase, err := h.svc.UpdatePurchaseStatus(h.actor(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, purchase)
}

func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeletePurchase(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Consumption handlers

func (h *Handler) listConsumptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListConsumptions())
}

type consumptionRequest struct {
	PatientID    string                `json:"patient_id" validate:"required"`
	DepartmentID string                `json:"department_id" validate:"required"`
	Medicines    []domain.MedicineLine `json:"medicines" validate:"required,min=1,dive"`
}

func (h *Handler) recordConsumption(w http.ResponseWriter, r *http.Request) {
	var req consumptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	consumption, err := h.svc.RecordConsumption(h.actor(r), records.ConsumptionInput(req))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, consumption)
}

func (h *Handler) deleteConsumption(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeleteConsumption(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Transfer handlers

func (h *Handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.ListTransfers())
}

type transferRequest struct {
	SourceStoreID      string                `json:"source_store_id" validate:"required"`
	DestinationStoreID string                `json:"destination_store_id" validate:"required"`
	Medicines          []domain.MedicineLine `json:"medicines" validate:"required,min=1,dive"`
	Notes              string                `json:"notes"`
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	transfer, err := h.svc.CreateTransfer(h.actor(r), records.TransferInput(req))
	if err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, transfer)
}

func (h *Handler) deleteTransfer(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	if err := h.svc.DeleteTransfer(h.actor(r), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Reports and audit

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.ListHistory(r.URL.Query().Get("entity_type"), r.URL.Query().Get("user_id"))
	respondJSON(w, http.StatusOK, entries)
}

func (h *Handler) stockReport(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.StockReport())
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.LowStock())
}

func (h *Handler) integrity(w http.ResponseWriter, r *http.Request) {
	warnings := h.svc.CheckIntegrity()
	respondJSON(w, http.StatusOK, map[string]any{"warnings": warnings, "count": len(warnings)})
}

// Backup handlers

func (h *Handler) exportBackup(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	respondJSON(w, http.StatusOK, backup.Export(h.svc.DB()))
}

func (h *Handler) restoreBackup(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	var snap backup.Snapshot
	if err := decodeJSON(r, &snap); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.RestoreSnapshot(&snap); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// Helpers

// decode parses and, when the target carries validate tags, validates a
// JSON request body, writing the error response itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := decodeJSON(r, dest); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			// Target has no validatable fields; nothing to check.
			return true
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// fail maps service errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, records.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, records.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
