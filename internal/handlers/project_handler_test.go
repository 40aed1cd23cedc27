package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/pehchaan/pehchaan_be/internal/models"
)

func TestCreateProject(t *testing.T) {
	app, gdb := newTestApp(t)
	contractor := seedUser(t, gdb, models.RoleContractor, "9600000001", nil)

	status, body := doJSON(t, app, http.MethodPost, "/api/projects", bearer(t, contractor), fiber.Map{
		"name":      "Tower B",
		"address":   "Sector 12",
		"latitude":  siteLat,
		"longitude": siteLng,
	})
	if status != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %v", status, body)
	}
	if got := dataField(t, body)["name"]; got != "Tower B" {
		t.Errorf("name = %v, want Tower B", got)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/projects", bearer(t, contractor), fiber.Map{
		"address": "Sector 12",
	})
	if status != http.StatusBadRequest {
		t.Errorf("nameless project: status = %d, want 400 (body %v)", status, body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/projects/my-projects", bearer(t, contractor), nil)
	if status != http.StatusOK {
		t.Fatalf("list: status = %d, body = %v", status, body)
	}
	if list, _ := body["data"].([]interface{}); len(list) != 1 {
		t.Errorf("projects = %v, want 1 entry", body["data"])
	}

	// laborers have no business creating worksites
	laborer := seedUser(t, gdb, models.RoleLabor, "9600000002", nil)
	status, _ = doJSON(t, app, http.MethodPost, "/api/projects", bearer(t, laborer), fiber.Map{
		"name":    "Tower C",
		"address": "Sector 13",
	})
	if status != http.StatusForbidden {
		t.Errorf("laborer create: status = %d, want 403", status)
	}
}

func TestCreateAssignment(t *testing.T) {
	app, gdb := newTestApp(t)
	contractor := seedUser(t, gdb, models.RoleContractor, "9600000010", nil)
	other := seedUser(t, gdb, models.RoleContractor, "9600000011", nil)
	laborer := seedUser(t, gdb, models.RoleLabor, "9600000012", nil)
	consumer := seedConsumer(t, gdb, "9600000013")
	project := seedSite(t, gdb, contractor)

	mk := func(mut func(m fiber.Map)) fiber.Map {
		m := fiber.Map{
			"project_id": project.ID.String(),
			"laborer_id": laborer.ID.String(),
			"wage_rate":  650.0,
			"wage_type":  "daily",
		}
		if mut != nil {
			mut(m)
		}
		return m
	}

	status, body := doJSON(t, app, http.MethodPost, "/api/assignments", bearer(t, contractor), mk(nil))
	if status != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %v", status, body)
	}
	data := dataField(t, body)
	if got := data["wage_type"]; got != string(models.WageDaily) {
		t.Errorf("wage_type = %v, want DAILY", got)
	}

	t.Run("duplicate pair", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/assignments", bearer(t, contractor), mk(nil))
		if status != http.StatusConflict {
			t.Errorf("status = %d, want 409", status)
		}
	})

	t.Run("foreign project", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/assignments", bearer(t, other), mk(nil))
		if status != http.StatusForbidden {
			t.Errorf("status = %d, want 403", status)
		}
	})

	t.Run("target must be a laborer", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/assignments", bearer(t, contractor), mk(func(m fiber.Map) {
			m["laborer_id"] = consumer.ID.String()
		}))
		if status != http.StatusNotFound {
			t.Errorf("status = %d, want 404", status)
		}
	})

	t.Run("wage must be positive", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/assignments", bearer(t, contractor), mk(func(m fiber.Map) {
			m["laborer_id"] = seedUser(t, gdb, models.RoleLabor, "9600000014", nil).ID.String()
			m["wage_rate"] = 0.0
		}))
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("unknown wage type", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/assignments", bearer(t, contractor), mk(func(m fiber.Map) {
			m["wage_type"] = "WEEKLY"
		}))
		if status != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	status, body = doJSON(t, app, http.MethodGet, "/api/assignments/my-projects", bearer(t, laborer), nil)
	if status != http.StatusOK {
		t.Fatalf("list mine: status = %d, body = %v", status, body)
	}
	if list, _ := body["data"].([]interface{}); len(list) != 1 {
		t.Errorf("assignments = %v, want 1 entry", body["data"])
	}
}

func TestSearchWorkersIgnoresAvailability(t *testing.T) {
	app, gdb := newTestApp(t)
	contractor := seedUser(t, gdb, models.RoleContractor, "9600000020", nil)
	seedUser(t, gdb, models.RoleLabor, "9600000021", func(u *models.User) {
		u.Skills = []string{"MASON"}
		u.Status = models.StatusOffline
	})
	seedUser(t, gdb, models.RoleLabor, "9600000022", func(u *models.User) {
		u.Skills = []string{"PLUMBER"}
	})

	status, body := doJSON(t, app, http.MethodGet, "/api/assignments/workers/search?skill=mason", bearer(t, contractor), nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	list, _ := body["data"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("workers = %v, want the offline mason", body["data"])
	}
	if got := list[0].(map[string]interface{})["status"]; got != string(models.StatusOffline) {
		t.Errorf("status = %v, want OFFLINE (staffing search ignores availability)", got)
	}
}
