package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a contractor-owned worksite. Immutable after creation.
type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractorID uuid.UUID `gorm:"type:uuid;not null;index" json:"contractor_id"`
	Name         string    `gorm:"not null" json:"name"`
	Address      string    `gorm:"not null" json:"address"`
	Latitude     float64   `gorm:"not null" json:"latitude"`
	Longitude    float64   `gorm:"not null" json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Contractor *User `gorm:"foreignKey:ContractorID" json:"contractor,omitempty"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
