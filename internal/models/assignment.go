package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WageType string

const (
	WageHourly WageType = "HOURLY"
	WageDaily  WageType = "DAILY"
)

func (w WageType) Valid() bool {
	return w == WageHourly || w == WageDaily
}

// Assignment is a standing eligibility link between a laborer and a project.
// Many may exist per laborer; they do not represent active work.
type Assignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_laborer" json:"project_id"`
	LaborerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_laborer" json:"laborer_id"`
	WageRate  float64   `gorm:"type:decimal(10,2);not null" json:"wage_rate"`
	WageType  WageType  `gorm:"type:varchar(10);not null" json:"wage_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Laborer *User    `gorm:"foreignKey:LaborerID" json:"laborer,omitempty"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
