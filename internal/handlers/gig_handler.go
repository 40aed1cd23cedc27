package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/models"
	"github.com/pehchaan/pehchaan_be/internal/services/engagement"
	"github.com/pehchaan/pehchaan_be/internal/services/wage"
)

type GigHandler struct {
	DB    *gorm.DB
	Guard *engagement.Guard
}

func NewGigHandler(db *gorm.DB) *GigHandler {
	return &GigHandler{DB: db, Guard: engagement.NewGuard(db)}
}

type GigRequestReq struct {
	LaborerID string  `json:"laborer_id"`
	Skill     string  `json:"skill"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

type InvoiceReq struct {
	AdditionalAmount *float64 `json:"additional_amount"`
}

type PaymentReq struct {
	PaymentMethod string `json:"payment_method"` // CASH / ONLINE
}

type RatingReq struct {
	Rating int `json:"rating"`
}

type GigResponse struct {
	ID         string `json:"id"`
	ConsumerID string `json:"consumer_id"`
	LaborerID  string `json:"laborer_id"`
	Status     string `json:"status"`
	Skill      string `json:"skill"`

	ConsumerLatitude  float64 `json:"consumer_latitude"`
	ConsumerLongitude float64 `json:"consumer_longitude"`
	ConsumerAddress   string  `json:"consumer_address"`

	VisitingCharge        float64 `json:"visiting_charge"`
	PlatformFee           float64 `json:"platform_fee"`
	LaborerVisitingPayout float64 `json:"laborer_visiting_payout"`
	AdditionalAmount      float64 `json:"additional_amount"`
	TotalAmount           float64 `json:"total_amount"`

	PaymentMethod string `json:"payment_method"`
	Rating        *int   `json:"rating,omitempty"`

	CreatedAt     time.Time  `json:"created_at"`
	AcceptedAt    *time.Time `json:"accepted_at"`
	WorkStartedAt *time.Time `json:"work_started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	PaidAt        *time.Time `json:"paid_at"`

	Consumer *UserMini `json:"consumer,omitempty"`
	Laborer  *UserMini `json:"laborer,omitempty"`
}

func toGigResponse(g *models.Gig) GigResponse {
	return GigResponse{
		ID:                    g.ID.String(),
		ConsumerID:            g.ConsumerID.String(),
		LaborerID:             g.LaborerID.String(),
		Status:                string(g.Status),
		Skill:                 g.Skill,
		ConsumerLatitude:      g.ConsumerLatitude,
		ConsumerLongitude:     g.ConsumerLongitude,
		ConsumerAddress:       g.ConsumerAddress,
		VisitingCharge:        g.VisitingCharge,
		PlatformFee:           g.PlatformFee,
		LaborerVisitingPayout: g.LaborerVisitingPayout,
		AdditionalAmount:      g.AdditionalAmount,
		TotalAmount:           g.TotalAmount,
		PaymentMethod:         string(g.PaymentMethod),
		Rating:                g.Rating,
		CreatedAt:             g.CreatedAt,
		AcceptedAt:            g.AcceptedAt,
		WorkStartedAt:         g.WorkStartedAt,
		CompletedAt:           g.CompletedAt,
		PaidAt:                g.PaidAt,
		Consumer:              toUserMini(g.Consumer),
		Laborer:               toUserMini(g.Laborer),
	}
}

// Request creates a gig in REQUESTED state. Both parties must be free of
// non-terminal engagements, and the target laborer must be AVAILABLE.
func (h *GigHandler) Request(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	var req GigRequestReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	laborerID, err := uuid.Parse(req.LaborerID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid laborer ID",
		})
	}

	errs := FieldErrors{}
	if strings.TrimSpace(req.Skill) == "" {
		errs.Add("skill", "Skill is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		errs.Add("address", "Address is required")
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	var gig models.Gig
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var laborer models.User
		if err := tx.First(&laborer, "id = ? AND role = ?", laborerID, models.RoleLabor).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Laborer not found")
			}
			return err
		}

		if laborer.Status != models.StatusAvailable {
			return fiber.NewError(fiber.StatusConflict, "This worker is no longer available")
		}

		blocking, err := h.Guard.ActiveForLaborer(tx, laborerID)
		if err != nil {
			return err
		}
		if blocking != engagement.KindNone {
			return fiber.NewError(fiber.StatusConflict,
				"This worker is already handling an active "+string(blocking))
		}

		busy, err := h.Guard.HasOpenGigAsConsumer(tx, uid)
		if err != nil {
			return err
		}
		if busy {
			return fiber.NewError(fiber.StatusConflict, "You already have an active gig request")
		}

		gig = models.Gig{
			ConsumerID:            uid,
			LaborerID:             laborerID,
			Status:                models.GigStatusRequested,
			Skill:                 strings.ToUpper(strings.TrimSpace(req.Skill)),
			ConsumerLatitude:      req.Latitude,
			ConsumerLongitude:     req.Longitude,
			ConsumerAddress:       strings.TrimSpace(req.Address),
			VisitingCharge:        wage.VisitingCharge,
			PlatformFee:           wage.PlatformFee,
			LaborerVisitingPayout: wage.LaborerVisitingPayout,
			TotalAmount:           wage.VisitingCharge, // invoice starts at the visiting charge
			PaymentMethod:         models.PaymentPending,
		}
		return tx.Create(&gig).Error
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to request gig",
		})
	}

	h.DB.Preload("Consumer").Preload("Laborer").First(&gig, "id = ?", gig.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    toGigResponse(&gig),
	})
}

// Accept moves REQUESTED -> ACCEPTED as a single conditional update, so a
// raced second accept loses and sees an invalid-state error. Side effect:
// the laborer is forced OFFLINE.
func (h *GigHandler) Accept(c *fiber.Ctx) error {
	return h.transition(c, models.GigActionAccept, func(tx *gorm.DB, gig *models.Gig, uid uuid.UUID) (map[string]interface{}, error) {
		blocking, err := h.Guard.ActiveForLaborerExcluding(tx, uid, gig.ID)
		if err != nil {
			return nil, err
		}
		if blocking != engagement.KindNone {
			return nil, fiber.NewError(fiber.StatusConflict,
				"You already have an active "+string(blocking))
		}
		now := time.Now()
		return map[string]interface{}{"accepted_at": now}, nil
	}, func(tx *gorm.DB, gig *models.Gig) error {
		return tx.Model(&models.User{}).
			Where("id = ?", gig.LaborerID).
			Update("status", models.StatusOffline).Error
	})
}

// Start moves ACCEPTED -> IN_PROGRESS when the laborer arrives.
func (h *GigHandler) Start(c *fiber.Ctx) error {
	return h.transition(c, models.GigActionStart, func(tx *gorm.DB, gig *models.Gig, uid uuid.UUID) (map[string]interface{}, error) {
		now := time.Now()
		return map[string]interface{}{"work_started_at": now}, nil
	}, nil)
}

// Complete submits the final invoice: IN_PROGRESS -> PENDING_PAYMENT with
// total = visiting charge + additional amount (default 0).
func (h *GigHandler) Complete(c *fiber.Ctx) error {
	var req InvoiceReq
	if err := c.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	additional := 0.0
	if req.AdditionalAmount != nil {
		additional = *req.AdditionalAmount
	}
	if additional < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Additional amount cannot be negative",
		})
	}

	return h.transition(c, models.GigActionComplete, func(tx *gorm.DB, gig *models.Gig, uid uuid.UUID) (map[string]interface{}, error) {
		now := time.Now()
		return map[string]interface{}{
			"additional_amount": wage.Round2(additional),
			"total_amount":      wage.InvoiceTotal(gig.VisitingCharge, additional),
			"completed_at":      now,
		}, nil
	}, nil)
}

// Pay settles the invoice: PENDING_PAYMENT -> COMPLETED. Either party may
// record the settlement (the laborer for cash in hand). Idempotent-reject:
// a second pay on the same gig fails.
func (h *GigHandler) Pay(c *fiber.Ctx) error {
	var req PaymentReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	method := models.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod)))
	if !method.ValidForSettlement() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Payment method must be CASH or ONLINE",
		})
	}

	return h.transition(c, models.GigActionPay, func(tx *gorm.DB, gig *models.Gig, uid uuid.UUID) (map[string]interface{}, error) {
		now := time.Now()
		return map[string]interface{}{
			"payment_method": method,
			"paid_at":        now,
		}, nil
	}, nil)
}

// transition runs one row of the gig state machine: ownership gate, any
// action-specific preconditions, then a single conditional UPDATE keyed on
// the required predecessor status. First writer wins; everyone else gets an
// invalid-state error and no partial change is ever visible.
func (h *GigHandler) transition(
	c *fiber.Ctx,
	action models.GigAction,
	prepare func(tx *gorm.DB, gig *models.Gig, uid uuid.UUID) (map[string]interface{}, error),
	after func(tx *gorm.DB, gig *models.Gig) error,
) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	gigID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid gig ID",
		})
	}

	from, to, caller, ok := models.Transition(action)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Unknown action",
		})
	}

	var gig models.Gig
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&gig, "id = ?", gigID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Gig not found")
			}
			return err
		}

		party := gig.Party(uid)
		switch caller {
		case models.PartyEither:
			if party != models.PartyLaborer && party != models.PartyConsumer {
				return fiber.NewError(fiber.StatusForbidden, "You are not authorized to update this gig")
			}
		default:
			if party != caller {
				return fiber.NewError(fiber.StatusForbidden, "You are not authorized to update this gig")
			}
		}

		updates, err := prepare(tx, &gig, uid)
		if err != nil {
			return err
		}
		updates["status"] = to

		res := tx.Model(&models.Gig{}).
			Where("id = ? AND status = ?", gigID, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusConflict,
				"This action is no longer available: gig is "+string(gig.Status)+", not "+string(from))
		}

		if err := tx.First(&gig, "id = ?", gigID).Error; err != nil {
			return err
		}

		if after != nil {
			return after(tx, &gig)
		}
		return nil
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update gig",
		})
	}

	h.DB.Preload("Consumer").Preload("Laborer").First(&gig, "id = ?", gigID)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toGigResponse(&gig),
	})
}

// Rate records the consumer's one-shot rating on a settled gig.
func (h *GigHandler) Rate(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	gigID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid gig ID",
		})
	}

	var req RatingReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Rating must be between 1 and 5",
		})
	}

	var gig models.Gig
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&gig, "id = ?", gigID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "Gig not found")
			}
			return err
		}

		if gig.ConsumerID != uid {
			return fiber.NewError(fiber.StatusForbidden, "You are not authorized to rate this gig")
		}
		if !gig.Status.Terminal() {
			return fiber.NewError(fiber.StatusConflict, "Only completed gigs can be rated")
		}
		if gig.Rating != nil {
			return fiber.NewError(fiber.StatusConflict, "This gig has already been rated")
		}

		if err := tx.Model(&models.Gig{}).
			Where("id = ?", gigID).
			Update("rating", req.Rating).Error; err != nil {
			return err
		}
		return tx.First(&gig, "id = ?", gigID).Error
	})
	if err != nil {
		if e, ok := err.(*fiber.Error); ok {
			return c.Status(e.Code).JSON(fiber.Map{"success": false, "message": e.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to rate gig",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toGigResponse(&gig),
	})
}

// MyGigs lists the caller's gigs newest first, from whichever side of the
// table they sit on. Contractors have no gigs.
func (h *GigHandler) MyGigs(c *fiber.Ctx) error {
	uid, err := callerUUID(c)
	if err != nil {
		return err
	}

	role, _ := c.Locals("role").(string)

	q := h.DB.Preload("Consumer").Preload("Laborer").Order("created_at DESC")
	var gigs []models.Gig
	switch models.Role(role) {
	case models.RoleLabor:
		err = q.Where("laborer_id = ?", uid).Find(&gigs).Error
	case models.RoleConsumer:
		err = q.Where("consumer_id = ?", uid).Find(&gigs).Error
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch gigs",
		})
	}

	out := make([]GigResponse, 0, len(gigs))
	for i := range gigs {
		out = append(out, toGigResponse(&gigs[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}
