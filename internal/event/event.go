package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/crm-management/internal"
)

// Event is a scheduled occasion delivered under a signed contract.
// CustomerID is denormalized from the contract and always equals
// contract.customer_id. SupportUserID is nil until management assigns a
// support user.
type Event struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	EventNumber   string    `json:"event_number"`
	ContractID    int64     `json:"contract_id"`
	CustomerID    int64     `json:"customer_id"`
	SupportUserID *int64    `json:"support_user_id,omitempty"`
	EventName     string    `json:"event_name"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Location      string    `json:"location"`
	Attendees     int       `json:"attendees"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var ErrEventNotFound = internal.NewNotFoundError("event not found", internal.ErrCodeEventNotFound)

// NewEventNumber mints the external identifier carried on tickets and
// invoices.
func NewEventNumber() string {
	return fmt.Sprintf("EV-%s", uuid.NewString())
}
