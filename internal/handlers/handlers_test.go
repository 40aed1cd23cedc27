package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/db"
	"github.com/pehchaan/pehchaan_be/internal/middleware"
	"github.com/pehchaan/pehchaan_be/internal/models"
	"github.com/pehchaan/pehchaan_be/internal/utils"
)

const testSecret = "test-secret"

// newTestApp wires the full route table against a throwaway SQLite file,
// mirroring cmd/api. Redis is absent, so geo lookups take the DB path.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	authH := &AuthHandler{DB: gdb, JWTSecret: testSecret, Expires: 60}
	profileH := NewProfileHandler(gdb, nil)
	projectH := NewProjectHandler(gdb)
	assignmentH := NewAssignmentHandler(gdb)
	workLogH := NewWorkLogHandler(gdb)
	gigH := NewGigHandler(gdb)
	workerH := NewWorkerHandler(gdb, nil)

	app := fiber.New()
	api := app.Group("/api")

	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)

	protected := api.Group("/",
		middleware.JWTFromHeader(testSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/profile/me", profileH.GetMe)
	protected.Put("/profile/me", profileH.UpdateProfile)
	protected.Put("/profile/me/status", middleware.RequireRoles("labor"), profileH.UpdateStatus)
	protected.Put("/profile/me/location", middleware.RequireRoles("labor"), profileH.UpdateLocation)

	protected.Post("/projects", middleware.RequireRoles("contractor"), projectH.Create)
	protected.Get("/projects/my-projects", middleware.RequireRoles("contractor"), projectH.ListMine)

	protected.Post("/assignments", middleware.RequireRoles("contractor"), assignmentH.Create)
	protected.Get("/assignments/my-projects", middleware.RequireRoles("labor"), assignmentH.ListMine)
	protected.Get("/assignments/workers/search", middleware.RequireRoles("contractor"), assignmentH.SearchWorkers)

	protected.Post("/work/check-in", middleware.RequireRoles("labor"), workLogH.CheckIn)
	protected.Post("/work/check-out", middleware.RequireRoles("labor"), workLogH.CheckOut)
	protected.Get("/work/my-logs", workLogH.MyLogs)
	protected.Post("/work/logs/:id/approve", middleware.RequireRoles("contractor"), workLogH.Approve)

	protected.Post("/gigs/request", middleware.RequireRoles("consumer"), gigH.Request)
	protected.Get("/gigs/my-gigs", gigH.MyGigs)
	protected.Post("/gigs/:id/accept", middleware.RequireRoles("labor"), gigH.Accept)
	protected.Post("/gigs/:id/start", middleware.RequireRoles("labor"), gigH.Start)
	protected.Post("/gigs/:id/complete", middleware.RequireRoles("labor"), gigH.Complete)
	protected.Post("/gigs/:id/pay", middleware.RequireRoles("consumer", "labor"), gigH.Pay)
	protected.Post("/gigs/:id/rate", middleware.RequireRoles("consumer"), gigH.Rate)

	protected.Get("/workers/nearby", middleware.RequireRoles("consumer", "contractor"), workerH.Nearby)

	return app, gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, role models.Role, phone string, mut func(*models.User)) models.User {
	t.Helper()

	hash, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := models.User{
		Phone:    phone,
		Password: hash,
		Role:     role,
		Status:   models.StatusOffline,
	}
	if mut != nil {
		mut(&u)
	}
	if err := gdb.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", phone, err)
	}
	return u
}

func bearer(t *testing.T, u models.User) string {
	t.Helper()
	token, err := utils.SignJWT(testSecret, u.ID.String(), string(u.Role), 60)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

// doJSON issues a request and decodes the JSON envelope.
func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func dataField(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	return data
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/profile/me", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
}
