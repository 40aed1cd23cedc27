package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkStatus string

const (
	WorkStatusActive          WorkStatus = "ACTIVE"           // checked in, clock running
	WorkStatusPendingApproval WorkStatus = "PENDING_APPROVAL" // checked out, wage computed
	WorkStatusApproved        WorkStatus = "APPROVED"         // contractor signed off
)

// workTransitions is the only legal path. No skipping, no going back.
var workTransitions = map[WorkStatus]WorkStatus{
	WorkStatusActive:          WorkStatusPendingApproval,
	WorkStatusPendingApproval: WorkStatusApproved,
}

// CanTransition reports whether status may move directly to next.
func (s WorkStatus) CanTransition(next WorkStatus) bool {
	return workTransitions[s] == next
}

func (s WorkStatus) Terminal() bool {
	return s == WorkStatusApproved
}

// WorkLog is one continuous check-in/check-out interval against a project.
// At most one ACTIVE log exists per laborer at any time.
type WorkLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	LaborerID uuid.UUID `gorm:"type:uuid;not null;index" json:"laborer_id"`

	CheckInTime  time.Time  `gorm:"not null" json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`

	// Where the laborer stood at check-in.
	CheckInLatitude  float64 `json:"check_in_latitude"`
	CheckInLongitude float64 `json:"check_in_longitude"`

	WageEarned float64    `gorm:"type:decimal(10,2)" json:"wage_earned"`
	Status     WorkStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Laborer *User    `gorm:"foreignKey:LaborerID" json:"laborer,omitempty"`
}

func (w *WorkLog) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}
