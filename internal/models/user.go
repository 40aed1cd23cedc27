package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleLabor      Role = "labor"
	RoleContractor Role = "contractor"
	RoleConsumer   Role = "consumer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleLabor, RoleContractor, RoleConsumer:
		return true
	}
	return false
}

type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "AVAILABLE"
	StatusOffline   AvailabilityStatus = "OFFLINE"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Phone    string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"phone"`
	Email    *string   `gorm:"type:varchar(150);uniqueIndex" json:"email,omitempty"` // set for Google sign-ins
	Password string    `gorm:"not null" json:"-"`
	Role     Role      `gorm:"type:varchar(20);not null;index" json:"role"`

	FirstName string `gorm:"type:varchar(80)" json:"first_name"`
	LastName  string `gorm:"type:varchar(80)" json:"last_name"`

	Rating     float64 `gorm:"type:decimal(3,2);default:0" json:"rating"`
	IsVerified bool    `gorm:"default:false" json:"is_verified"`

	// Laborer-only fields. Availability may only change while the laborer
	// holds no active engagement.
	Status    AvailabilityStatus          `gorm:"type:varchar(20);default:'OFFLINE';index" json:"status"`
	Skills    datatypes.JSONSlice[string] `json:"skills"`
	Latitude  *float64                    `json:"latitude"`
	Longitude *float64                    `json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// ProfileComplete reports whether the follow-up profile step has been done.
func (u *User) ProfileComplete() bool {
	return u.FirstName != "" && u.LastName != ""
}

// HasSkill matches case-insensitively; skills are stored upper-case.
func (u *User) HasSkill(skill string) bool {
	for _, s := range u.Skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}
