package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/models"
)

type AssignmentHandler struct {
	DB *gorm.DB
}

func NewAssignmentHandler(db *gorm.DB) *AssignmentHandler {
	return &AssignmentHandler{DB: db}
}

type CreateAssignmentReq struct {
	ProjectID string  `json:"project_id"`
	LaborerID string  `json:"laborer_id"`
	WageRate  float64 `json:"wage_rate"`
	WageType  string  `json:"wage_type"` // HOURLY / DAILY
}

// Create links a laborer to one of the caller's projects with an agreed
// wage. Assignments are standing eligibility, not active work.
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var req CreateAssignmentReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid project ID",
		})
	}
	laborerID, err := uuid.Parse(req.LaborerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid laborer ID",
		})
	}

	wageType := models.WageType(strings.ToUpper(strings.TrimSpace(req.WageType)))
	if !wageType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Wage type must be HOURLY or DAILY",
		})
	}
	if req.WageRate <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Wage rate must be positive",
		})
	}

	var project models.Project
	if err := h.DB.First(&project, "id = ?", projectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Project not found",
		})
	}
	if project.ContractorID != uid {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You do not own this project",
		})
	}

	var laborer models.User
	if err := h.DB.First(&laborer, "id = ? AND role = ?", laborerID, models.RoleLabor).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Laborer not found",
		})
	}

	var existing models.Assignment
	if err := h.DB.Where("project_id = ? AND laborer_id = ?", projectID, laborerID).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "This worker is already assigned to this project",
		})
	} else if err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong",
		})
	}

	assignment := models.Assignment{
		ProjectID: projectID,
		LaborerID: laborerID,
		WageRate:  req.WageRate,
		WageType:  wageType,
	}
	if err := h.DB.Create(&assignment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create assignment",
		})
	}

	h.DB.Preload("Project").Preload("Laborer").First(&assignment, "id = ?", assignment.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    assignment,
	})
}

// ListMine returns the calling laborer's standing assignments.
func (h *AssignmentHandler) ListMine(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var assignments []models.Assignment
	if err := h.DB.
		Preload("Project").
		Where("laborer_id = ?", uid).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch assignments",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    assignments,
	})
}

// SearchWorkers finds laborers holding a skill, regardless of availability.
// Contractors use this when staffing a project.
func (h *AssignmentHandler) SearchWorkers(c *fiber.Ctx) error {
	skill := strings.ToUpper(strings.TrimSpace(c.Query("skill")))
	if skill == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "skill query parameter is required",
		})
	}

	var laborers []models.User
	if err := h.DB.Where("role = ?", models.RoleLabor).Find(&laborers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to search workers",
		})
	}

	out := make([]ProfileResponse, 0)
	for i := range laborers {
		if laborers[i].HasSkill(skill) {
			out = append(out, toProfileResponse(&laborers[i]))
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}
