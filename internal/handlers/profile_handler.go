package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/models"
	"github.com/pehchaan/pehchaan_be/internal/services/engagement"
)

// GeoKey is the Redis GEO set holding the latest laborer coordinates.
const GeoKey = "geo:laborers"

type ProfileHandler struct {
	DB    *gorm.DB
	RDB   *redis.Client
	Guard *engagement.Guard
}

func NewProfileHandler(db *gorm.DB, rdb *redis.Client) *ProfileHandler {
	return &ProfileHandler{DB: db, RDB: rdb, Guard: engagement.NewGuard(db)}
}

type ProfileResponse struct {
	ID              string   `json:"id"`
	Phone           string   `json:"phone"`
	Role            string   `json:"role"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	ProfileComplete bool     `json:"profile_complete"`
	Rating          float64  `json:"rating"`
	IsVerified      bool     `json:"is_verified"`
	Status          string   `json:"status"`
	Skills          []string `json:"skills"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

func toProfileResponse(u *models.User) ProfileResponse {
	return ProfileResponse{
		ID:              u.ID.String(),
		Phone:           u.Phone,
		Role:            string(u.Role),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileComplete: u.ProfileComplete(),
		Rating:          u.Rating,
		IsVerified:      u.IsVerified,
		Status:          string(u.Status),
		Skills:          u.Skills,
		Latitude:        u.Latitude,
		Longitude:       u.Longitude,
	}
}

func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", uid).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Profile not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProfileResponse(&user),
	})
}

type UpdateProfileReq struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Skills    []string `json:"skills"`
}

// UpdateProfile is the follow-up registration step: names and, for laborers,
// the skill set. Skills are normalized to upper case.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", uid).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Profile not found",
		})
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)

	skills := make([]string, 0, len(req.Skills))
	for _, s := range req.Skills {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			skills = append(skills, s)
		}
	}
	user.Skills = skills

	if err := h.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update profile",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProfileResponse(&user),
	})
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus flips a laborer between AVAILABLE and OFFLINE. Rejected while
// the laborer holds an active engagement: the engine owns the slot then.
func (h *ProfileHandler) UpdateStatus(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var req UpdateStatusReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	status := models.AvailabilityStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status != models.StatusAvailable && status != models.StatusOffline {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Status must be AVAILABLE or OFFLINE",
		})
	}

	var user models.User
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", uid).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Profile not found")
		}

		blocking, err := h.Guard.ActiveForLaborer(tx, uid)
		if err != nil {
			return err
		}
		if blocking != engagement.KindNone {
			return fiber.NewError(fiber.StatusConflict,
				"Availability is locked while you have an active "+string(blocking))
		}

		user.Status = status
		return tx.Save(&user).Error
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update status",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProfileResponse(&user),
	})
}

type UpdateLocationReq struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *ProfileHandler) UpdateLocation(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var req UpdateLocationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", uid).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Profile not found",
		})
	}

	user.Latitude = &req.Latitude
	user.Longitude = &req.Longitude

	if err := h.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update location",
		})
	}

	// Keep the GEO index in step; the DB row stays authoritative.
	if h.RDB != nil {
		if err := h.RDB.GeoAdd(context.Background(), GeoKey, &redis.GeoLocation{
			Name:      user.ID.String(),
			Latitude:  req.Latitude,
			Longitude: req.Longitude,
		}).Err(); err != nil {
			log.Printf("geo index update failed for %s: %v", user.ID, err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProfileResponse(&user),
	})
}
