package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medstock/m/domain"
	"medstock/m/internal/api"
	"medstock/m/internal/bootstrap"
	"medstock/m/internal/database"
	"medstock/m/internal/records"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := bootstrap.EnsureDefaults(db); err != nil {
		t.Fatal(err)
	}
	return api.New(records.New(db), "test-secret").Router()
}

func request(t *testing.T, srv http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv http.Handler, username, password string) string {
	t.Helper()
	rec := request(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newServer(t)
	rec := request(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newServer(t)
	if rec := request(t, srv, http.MethodGet, "/medicines/", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", rec.Code)
	}
	if rec := request(t, srv, http.MethodGet, "/medicines/", "not.a.token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", rec.Code)
	}
}

func TestMedicineCRUDOverHTTP(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv, "admin", "admin123")

	rec := request(t, srv, http.MethodPost, "/medicines/", token, map[string]any{
		"name": "Paracetamol", "low_stock_limit": 10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", rec.Code, rec.Body)
	}
	var created domain.Medicine
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID != "01" {
		t.Fatalf("created id = %s", created.ID)
	}

	rec = request(t, srv, http.MethodGet, "/medicines/01", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = request(t, srv, http.MethodDelete, "/medicines/01", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d: %s", rec.Code, rec.Body)
	}
	rec = request(t, srv, http.MethodGet, "/medicines/01", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: status = %d", rec.Code)
	}
}

func TestDeleteRequiresAdminRole(t *testing.T) {
	srv := newServer(t)
	admin := login(t, srv, "admin", "admin123")
	pharmacist := login(t, srv, "pharmacist", "pharmacy123")

	rec := request(t, srv, http.MethodPost, "/medicines/", pharmacist, map[string]any{
		"name": "Ibuprofen", "low_stock_limit": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create as pharmacist: status = %d: %s", rec.Code, rec.Body)
	}

	if rec := request(t, srv, http.MethodDelete, "/medicines/01", pharmacist, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("delete as pharmacist: status = %d, want 403", rec.Code)
	}
	if rec := request(t, srv, http.MethodDelete, "/medicines/01", admin, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete as admin: status = %d", rec.Code)
	}
}

func TestValidationErrorsReturn400(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv, "admin", "admin123")

	rec := request(t, srv, http.MethodPost, "/purchases/", token, map[string]any{
		"supplier_id": "", "medicines": []any{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}
}

func TestBackupRoundTripOverHTTP(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv, "admin", "admin123")

	if rec := request(t, srv, http.MethodPost, "/suppliers/", token, map[string]any{
		"name": "Acme Pharma",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create supplier: status = %d: %s", rec.Code, rec.Body)
	}

	rec := request(t, srv, http.MethodGet, "/backup/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: status = %d", rec.Code)
	}
	var snap map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}

	rec = request(t, srv, http.MethodPost, "/backup/restore", token, snap)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore: status = %d: %s", rec.Code, rec.Body)
	}
	rec = request(t, srv, http.MethodGet, "/suppliers/", token, nil)
	var suppliers []domain.Supplier
	if err := json.Unmarshal(rec.Body.Bytes(), &suppliers); err != nil {
		t.Fatal(err)
	}
	if len(suppliers) != 1 || suppliers[0].Name != "Acme Pharma" {
		t.Fatalf("suppliers after restore = %+v", suppliers)
	}
}
