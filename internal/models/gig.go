package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GigStatus string

const (
	GigStatusRequested      GigStatus = "REQUESTED"       // consumer has sent the request
	GigStatusAccepted       GigStatus = "ACCEPTED"        // laborer accepted, visiting charge due
	GigStatusInProgress     GigStatus = "IN_PROGRESS"     // laborer arrived and started work
	GigStatusPendingPayment GigStatus = "PENDING_PAYMENT" // final invoice submitted
	GigStatusCompleted      GigStatus = "COMPLETED"       // paid; gig is immutable from here
)

// NonTerminalGigStatuses are the statuses that count as an active engagement.
var NonTerminalGigStatuses = []GigStatus{
	GigStatusRequested,
	GigStatusAccepted,
	GigStatusInProgress,
	GigStatusPendingPayment,
}

func (s GigStatus) Terminal() bool {
	return s == GigStatusCompleted
}

type GigAction string

const (
	GigActionAccept   GigAction = "accept"
	GigActionStart    GigAction = "start"
	GigActionComplete GigAction = "complete"
	GigActionPay      GigAction = "pay"
)

// GigParty identifies which side of the gig may perform an action.
type GigParty int

const (
	PartyLaborer GigParty = iota
	PartyConsumer
	PartyEither
)

type gigTransition struct {
	From   GigStatus
	To     GigStatus
	Caller GigParty
}

// gigTransitions is the exhaustive transition table. Creation (consumer
// request -> REQUESTED) is the only way into the machine and has no row here.
var gigTransitions = map[GigAction]gigTransition{
	GigActionAccept:   {From: GigStatusRequested, To: GigStatusAccepted, Caller: PartyLaborer},
	GigActionStart:    {From: GigStatusAccepted, To: GigStatusInProgress, Caller: PartyLaborer},
	GigActionComplete: {From: GigStatusInProgress, To: GigStatusPendingPayment, Caller: PartyLaborer},
	GigActionPay:      {From: GigStatusPendingPayment, To: GigStatusCompleted, Caller: PartyEither},
}

// Transition returns the required predecessor state and resulting state for
// an action. ok is false for unknown actions.
func Transition(action GigAction) (from, to GigStatus, caller GigParty, ok bool) {
	t, ok := gigTransitions[action]
	return t.From, t.To, t.Caller, ok
}

type PaymentMethod string

const (
	PaymentPending PaymentMethod = "PENDING"
	PaymentCash    PaymentMethod = "CASH"
	PaymentOnline  PaymentMethod = "ONLINE"
)

func (m PaymentMethod) ValidForSettlement() bool {
	return m == PaymentCash || m == PaymentOnline
}

// Gig is one on-demand engagement between a consumer and a laborer.
// At most one non-terminal gig per consumer and per laborer at a time.
type Gig struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConsumerID uuid.UUID `gorm:"type:uuid;not null;index" json:"consumer_id"`
	LaborerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"laborer_id"`

	Status GigStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Skill  string    `gorm:"not null" json:"skill"`

	// The job site is the consumer's location.
	ConsumerLatitude  float64 `gorm:"not null" json:"consumer_latitude"`
	ConsumerLongitude float64 `gorm:"not null" json:"consumer_longitude"`
	ConsumerAddress   string  `gorm:"not null" json:"consumer_address"`

	// Price breakdown. VisitingCharge = PlatformFee + LaborerVisitingPayout.
	VisitingCharge        float64 `gorm:"type:decimal(10,2);not null" json:"visiting_charge"`
	PlatformFee           float64 `gorm:"type:decimal(10,2);not null" json:"platform_fee"`
	LaborerVisitingPayout float64 `gorm:"type:decimal(10,2);not null" json:"laborer_visiting_payout"`
	AdditionalAmount      float64 `gorm:"type:decimal(10,2);default:0" json:"additional_amount"`
	TotalAmount           float64 `gorm:"type:decimal(10,2);not null" json:"total_amount"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null;default:'PENDING'" json:"payment_method"`
	Rating        *int          `json:"rating,omitempty"`

	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	AcceptedAt    *time.Time `json:"accepted_at"`
	WorkStartedAt *time.Time `json:"work_started_at"`
	CompletedAt   *time.Time `json:"completed_at"` // invoice submitted
	PaidAt        *time.Time `json:"paid_at"`      // payment confirmed

	Consumer *User `gorm:"foreignKey:ConsumerID" json:"consumer,omitempty"`
	Laborer  *User `gorm:"foreignKey:LaborerID" json:"laborer,omitempty"`
}

func (g *Gig) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}

// Party returns which side of the gig userID is on, or -1 for a stranger.
func (g *Gig) Party(userID uuid.UUID) GigParty {
	switch userID {
	case g.LaborerID:
		return PartyLaborer
	case g.ConsumerID:
		return PartyConsumer
	}
	return GigParty(-1)
}
