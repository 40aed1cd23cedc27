// Package engagement enforces the mutual-exclusion rule between the two
// engagement types: a laborer with an ACTIVE work log or an open gig can
// take on nothing else until it is closed out.
package engagement

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pehchaan/pehchaan_be/internal/models"
)

// Kind names the engagement type blocking a laborer, for conflict messages.
type Kind string

const (
	KindNone    Kind = ""
	KindWorkLog Kind = "work log"
	KindGig     Kind = "gig"
)

type Guard struct {
	DB *gorm.DB
}

func NewGuard(db *gorm.DB) *Guard {
	return &Guard{DB: db}
}

// ActiveForLaborer returns the engagement currently holding the laborer's
// slot, if any. Run it on the same transaction that will create the new
// engagement so the check and the insert serialize together.
func (g *Guard) ActiveForLaborer(tx *gorm.DB, laborerID uuid.UUID) (Kind, error) {
	var logCount int64
	if err := tx.Model(&models.WorkLog{}).
		Where("laborer_id = ? AND status = ?", laborerID, models.WorkStatusActive).
		Count(&logCount).Error; err != nil {
		return KindNone, err
	}
	if logCount > 0 {
		return KindWorkLog, nil
	}

	var gigCount int64
	if err := tx.Model(&models.Gig{}).
		Where("laborer_id = ? AND status IN ?", laborerID, models.NonTerminalGigStatuses).
		Count(&gigCount).Error; err != nil {
		return KindNone, err
	}
	if gigCount > 0 {
		return KindGig, nil
	}

	return KindNone, nil
}

// ActiveForLaborerExcluding behaves like ActiveForLaborer but ignores one
// gig, so a laborer acting on their own pending gig is not blocked by it.
func (g *Guard) ActiveForLaborerExcluding(tx *gorm.DB, laborerID, gigID uuid.UUID) (Kind, error) {
	var logCount int64
	if err := tx.Model(&models.WorkLog{}).
		Where("laborer_id = ? AND status = ?", laborerID, models.WorkStatusActive).
		Count(&logCount).Error; err != nil {
		return KindNone, err
	}
	if logCount > 0 {
		return KindWorkLog, nil
	}

	var gigCount int64
	if err := tx.Model(&models.Gig{}).
		Where("laborer_id = ? AND id <> ? AND status IN ?", laborerID, gigID, models.NonTerminalGigStatuses).
		Count(&gigCount).Error; err != nil {
		return KindNone, err
	}
	if gigCount > 0 {
		return KindGig, nil
	}

	return KindNone, nil
}

// HasOpenGigAsConsumer reports whether the consumer already holds a
// non-terminal gig. Consumers are not subject to work-log exclusion.
func (g *Guard) HasOpenGigAsConsumer(tx *gorm.DB, consumerID uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.Gig{}).
		Where("consumer_id = ? AND status IN ?", consumerID, models.NonTerminalGigStatuses).
		Count(&count).Error
	return count > 0, err
}
