package handlers

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/geo"
	"github.com/pehchaan/pehchaan_be/internal/models"
)

const (
	nearbyRadiusMeters = 5000
	nearbyLimit        = 10
)

type WorkerHandler struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewWorkerHandler(db *gorm.DB, rdb *redis.Client) *WorkerHandler {
	return &WorkerHandler{DB: db, RDB: rdb}
}

type NearbyWorker struct {
	ProfileResponse
	DistanceMeters float64 `json:"distance_meters"`
}

// Nearby returns AVAILABLE laborers holding the requested skill, closest
// first. Read-only; an empty list is a normal answer. The Redis GEO index
// is the fast path, the DB scan the fallback.
func (h *WorkerHandler) Nearby(c *fiber.Ctx) error {
	skill := strings.ToUpper(strings.TrimSpace(c.Query("skill")))
	if skill == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "skill query parameter is required",
		})
	}

	lat, err1 := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("longitude"), 64)
	if err1 != nil || err2 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "latitude and longitude are required",
		})
	}

	if h.RDB != nil {
		if out, err := h.nearbyFromGeoIndex(c.Context(), skill, lat, lng); err == nil {
			return c.JSON(fiber.Map{"success": true, "data": out})
		} else {
			log.Printf("geo index lookup failed, falling back to DB scan: %v", err)
		}
	}

	out, err := h.nearbyFromDB(skill, lat, lng)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to search workers",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": out})
}

// nearbyFromGeoIndex queries the Redis GEO set maintained by location
// updates, then re-checks availability and skill against the DB rows, which
// stay authoritative.
func (h *WorkerHandler) nearbyFromGeoIndex(ctx context.Context, skill string, lat, lng float64) ([]NearbyWorker, error) {
	locs, err := h.RDB.GeoSearchLocation(ctx, GeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Latitude:   lat,
			Longitude:  lng,
			Radius:     nearbyRadiusMeters,
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, err
	}

	out := make([]NearbyWorker, 0, len(locs))
	for _, loc := range locs {
		id, err := uuid.Parse(loc.Name)
		if err != nil {
			continue
		}
		var u models.User
		if err := h.DB.First(&u, "id = ? AND role = ?", id, models.RoleLabor).Error; err != nil {
			continue
		}
		if u.Status != models.StatusAvailable || !u.HasSkill(skill) {
			continue
		}
		out = append(out, NearbyWorker{
			ProfileResponse: toProfileResponse(&u),
			DistanceMeters:  loc.Dist,
		})
		if len(out) == nearbyLimit {
			break
		}
	}
	return out, nil
}

func (h *WorkerHandler) nearbyFromDB(skill string, lat, lng float64) ([]NearbyWorker, error) {
	var laborers []models.User
	if err := h.DB.
		Where("role = ? AND status = ?", models.RoleLabor, models.StatusAvailable).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Find(&laborers).Error; err != nil {
		return nil, err
	}

	out := make([]NearbyWorker, 0)
	for i := range laborers {
		u := &laborers[i]
		if !u.HasSkill(skill) {
			continue
		}
		d := geo.Distance(lat, lng, *u.Latitude, *u.Longitude)
		if d > nearbyRadiusMeters {
			continue
		}
		out = append(out, NearbyWorker{
			ProfileResponse: toProfileResponse(u),
			DistanceMeters:  d,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	if len(out) > nearbyLimit {
		out = out[:nearbyLimit]
	}
	return out, nil
}
