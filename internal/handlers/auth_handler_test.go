package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"phone":    "9400000001",
		"password": "secret123",
		"role":     "labor",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: status = %d, body = %v", status, body)
	}
	data := dataField(t, body)
	if token, _ := data["token"].(string); token == "" {
		t.Error("register returned no token")
	}
	if got := data["role"]; got != "labor" {
		t.Errorf("role = %v, want labor", got)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"phone":    "9400000001",
		"password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("login: status = %d, body = %v", status, body)
	}
	token, _ := dataField(t, body)["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}

	// the issued token must open protected routes
	status, body = doJSON(t, app, http.MethodGet, "/api/profile/me", "Bearer "+token, nil)
	if status != http.StatusOK {
		t.Fatalf("profile/me with issued token: status = %d, body = %v", status, body)
	}
	if got := dataField(t, body)["phone"]; got != "9400000001" {
		t.Errorf("phone = %v, want 9400000001", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	app, gdb := newTestApp(t)
	seedUser(t, gdb, "labor", "9400000010", nil)

	tests := []struct {
		name  string
		body  fiber.Map
		field string
	}{
		{"missing phone", fiber.Map{"password": "secret123", "role": "labor"}, "phone"},
		{"short phone", fiber.Map{"phone": "123", "password": "secret123", "role": "labor"}, "phone"},
		{"short password", fiber.Map{"phone": "9400000011", "password": "abc", "role": "labor"}, "password"},
		{"bad role", fiber.Map{"phone": "9400000012", "password": "secret123", "role": "admin"}, "role"},
		{"duplicate phone", fiber.Map{"phone": "9400000010", "password": "secret123", "role": "labor"}, "phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", tt.body)
			if status != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %v)", status, body)
			}
			errs, _ := body["errors"].(map[string]interface{})
			if _, ok := errs[tt.field]; !ok {
				t.Errorf("errors = %v, want a message for %q", errs, tt.field)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, gdb := newTestApp(t)
	seedUser(t, gdb, "consumer", "9400000020", nil)

	tests := []struct {
		name string
		body fiber.Map
	}{
		{"wrong password", fiber.Map{"phone": "9400000020", "password": "wrongpass"}},
		{"unknown phone", fiber.Map{"phone": "9499999999", "password": "secret123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", tt.body)
			if status != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401 (body %v)", status, body)
			}
		})
	}
}
