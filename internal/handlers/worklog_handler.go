package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/geo"
	"github.com/pehchaan/pehchaan_be/internal/models"
	"github.com/pehchaan/pehchaan_be/internal/services/engagement"
	"github.com/pehchaan/pehchaan_be/internal/services/wage"
)

// Laborers must stand within this many meters of the site to check in.
const checkInRadiusMeters = 200

type WorkLogHandler struct {
	DB    *gorm.DB
	Guard *engagement.Guard
}

func NewWorkLogHandler(db *gorm.DB) *WorkLogHandler {
	return &WorkLogHandler{DB: db, Guard: engagement.NewGuard(db)}
}

type CheckInReq struct {
	ProjectID string  `json:"project_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CheckIn opens an ACTIVE work log for the calling laborer. Fails while the
// laborer already holds any engagement (work log or open gig), when they are
// not assigned to the project, or when they are not at the site.
func (h *WorkLogHandler) CheckIn(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var req CheckInReq
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

	var newLog models.WorkLog
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		blocking, err := h.Guard.ActiveForLaborer(tx, uid)
		if err != nil {
			return err
		}
		if blocking != engagement.KindNone {
			return fiber.NewError(fiber.StatusConflict,
				"You already have an active "+string(blocking))
		}

		var assignment models.Assignment
		if err := tx.Where("laborer_id = ? AND project_id = ?", uid, projectID).
			First(&assignment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusForbidden, "You are not assigned to this project")
			}
			return err
		}

		var project models.Project
		if err := tx.First(&project, "id = ?", projectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Project not found")
			}
			return err
		}

		if !geo.WithinMeters(req.Latitude, req.Longitude, project.Latitude, project.Longitude, checkInRadiusMeters) {
			return fiber.NewError(fiber.StatusBadRequest, "You are not at the worksite. Check-in failed.")
		}

		newLog = models.WorkLog{
			ProjectID:        projectID,
			LaborerID:        uid,
			CheckInTime:      time.Now(),
			CheckInLatitude:  req.Latitude,
			CheckInLongitude: req.Longitude,
			Status:           models.WorkStatusActive,
		}
		return tx.Create(&newLog).Error
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to check in",
		})
	}

	h.DB.Preload("Project").First(&newLog, "id = ?", newLog.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    newLog,
	})
}

// CheckOut closes the caller's ACTIVE log, computes the wage from the
// assignment's rate and type, and parks the log at PENDING_APPROVAL.
func (h *WorkLogHandler) CheckOut(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var activeLog models.WorkLog
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("laborer_id = ? AND status = ?", uid, models.WorkStatusActive).
			First(&activeLog).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "You are not checked in")
			}
			return err
		}

		var assignment models.Assignment
		if err := tx.Where("laborer_id = ? AND project_id = ?", uid, activeLog.ProjectID).
			First(&assignment).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusConflict, "No assignment found for this project")
			}
			return err
		}

		checkOutTime := time.Now()
		earned := wage.Compute(assignment.WageType, assignment.WageRate, activeLog.CheckInTime, checkOutTime)

		// Conditional update: the status predicate makes concurrent
		// check-outs serialize, first writer wins.
		res := tx.Model(&models.WorkLog{}).
			Where("id = ? AND status = ?", activeLog.ID, models.WorkStatusActive).
			Updates(map[string]interface{}{
				"check_out_time": checkOutTime,
				"wage_earned":    earned,
				"status":         models.WorkStatusPendingApproval,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "This action is no longer available")
		}

		return tx.First(&activeLog, "id = ?", activeLog.ID).Error
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to check out",
		})
	}

	h.DB.Preload("Project").First(&activeLog, "id = ?", activeLog.ID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    activeLog,
	})
}

// Approve lets the contractor owning the log's project sign it off.
// Re-approval of an APPROVED log is rejected.
func (h *WorkLogHandler) Approve(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	logID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid work log ID",
		})
	}

	var workLog models.WorkLog
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Project").First(&workLog, "id = ?", logID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Work log not found")
			}
			return err
		}

		if workLog.Project == nil || workLog.Project.ContractorID != uid {
			return fiber.NewError(fiber.StatusForbidden, "You are not authorized to approve this work log")
		}

		res := tx.Model(&models.WorkLog{}).
			Where("id = ? AND status = ?", logID, models.WorkStatusPendingApproval).
			Update("status", models.WorkStatusApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict, "This log is not pending approval")
		}

		return tx.First(&workLog, "id = ?", logID).Error
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to approve work log",
		})
	}

	h.DB.Preload("Project").Preload("Laborer").First(&workLog, "id = ?", logID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    workLog,
	})
}

// MyLogs returns the laborer's own logs, or for contractors every log across
// the projects they own.
func (h *WorkLogHandler) MyLogs(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	role, _ := c.Locals("role").(string)

	var logs []models.WorkLog
	switch models.Role(role) {
	case models.RoleLabor:
		if err := h.DB.Preload("Project").
			Where("laborer_id = ?", uid).
			Order("check_in_time DESC").
			Find(&logs).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to fetch work logs",
			})
		}
	case models.RoleContractor:
		var projectIDs []uuid.UUID
		if err := h.DB.Model(&models.Project{}).
			Where("contractor_id = ?", uid).
			Pluck("id", &projectIDs).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to fetch work logs",
			})
		}
		if len(projectIDs) > 0 {
			if err := h.DB.Preload("Project").Preload("Laborer").
				Where("project_id IN ?", projectIDs).
				Order("check_in_time DESC").
				Find(&logs).Error; err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Failed to fetch work logs",
				})
			}
		}
	}

	if logs == nil {
		logs = []models.WorkLog{}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    logs,
	})
}
