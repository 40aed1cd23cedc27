package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pehchaan/pehchaan_be/internal/models"
)

// callerUUID resolves the authenticated caller from request locals.
func callerUUID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Locals("userId")
	if raw == nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user ID format")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user ID")
	}
	return id, nil
}

// UserMini is the party summary embedded in gig and work-log responses.
type UserMini struct {
	ID        string  `json:"id"`
	Phone     string  `json:"phone"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Rating    float64 `json:"rating"`
}

func toUserMini(u *models.User) *UserMini {
	if u == nil {
		return nil
	}
	return &UserMini{
		ID:        u.ID.String(),
		Phone:     u.Phone,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Rating:    u.Rating,
	}
}
