package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/models"
)

type ProjectHandler struct {
	DB *gorm.DB
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{DB: db}
}

type CreateProjectReq struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Create registers a new worksite for the calling contractor. Projects are
// immutable once created; there is no edit or delete.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var req CreateProjectReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	errs := FieldErrors{}
	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", "Name is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		errs.Add("address", "Address is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	project := models.Project{
		ContractorID: uid,
		Name:         strings.TrimSpace(req.Name),
		Address:      strings.TrimSpace(req.Address),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}
	if err := h.DB.Create(&project).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create project",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    project,
	})
}

func (h *ProjectHandler) ListMine(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var projects []models.Project
	if err := h.DB.
		Where("contractor_id = ?", uid).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch projects",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    projects,
	})
}
