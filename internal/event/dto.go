package event

import (
	"strings"
	"time"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/authz"
)

type CreateEventDTO struct {
	ContractID    int64     `json:"contract_id"`
	EventName     string    `json:"event_name"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Location      string    `json:"location"`
	Attendees     int       `json:"attendees"`
	Note          string    `json:"note"`
}

func (d CreateEventDTO) Validate() error {
	if d.ContractID == 0 {
		return internal.NewValidationError("contract_id is required", internal.ErrCodeMissingField)
	}
	if strings.TrimSpace(d.EventName) == "" {
		return internal.NewValidationError("event_name is required", internal.ErrCodeMissingField)
	}
	if d.EndDatetime.Before(d.StartDatetime) {
		return internal.NewValidationError("end_datetime cannot be before start_datetime", internal.ErrCodeInvalidDate)
	}
	if d.Attendees < 0 {
		return internal.NewValidationError("attendees cannot be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateEventDTO carries a partial update; nil fields stay untouched. The
// contract and customer links are fixed at creation.
type UpdateEventDTO struct {
	SupportUserID *int64     `json:"support_user_id,omitempty"`
	EventName     *string    `json:"event_name,omitempty"`
	StartDatetime *time.Time `json:"start_datetime,omitempty"`
	EndDatetime   *time.Time `json:"end_datetime,omitempty"`
	Location      *string    `json:"location,omitempty"`
	Attendees     *int       `json:"attendees,omitempty"`
	Note          *string    `json:"note,omitempty"`
}

func (d UpdateEventDTO) Validate() error {
	if d.EventName != nil && strings.TrimSpace(*d.EventName) == "" {
		return internal.NewValidationError("event_name cannot be empty", internal.ErrCodeInvalidFormat)
	}
	if d.Attendees != nil && *d.Attendees < 0 {
		return internal.NewValidationError("attendees cannot be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

// Changes lists the field names the update would touch. The authorization
// decision validates this whole set before any field is applied.
func (d UpdateEventDTO) Changes() []string {
	var fields []string
	if d.SupportUserID != nil {
		fields = append(fields, authz.EventAssignmentField)
	}
	if d.EventName != nil {
		fields = append(fields, "event_name")
	}
	if d.StartDatetime != nil {
		fields = append(fields, "start_datetime")
	}
	if d.EndDatetime != nil {
		fields = append(fields, "end_datetime")
	}
	if d.Location != nil {
		fields = append(fields, "location")
	}
	if d.Attendees != nil {
		fields = append(fields, "attendees")
	}
	if d.Note != nil {
		fields = append(fields, "note")
	}
	return fields
}

// Apply copies the set fields onto the entity.
func (d UpdateEventDTO) Apply(e *Event) {
	if d.SupportUserID != nil {
		e.SupportUserID = d.SupportUserID
	}
	if d.EventName != nil {
		e.EventName = *d.EventName
	}
	if d.StartDatetime != nil {
		e.StartDatetime = *d.StartDatetime
	}
	if d.EndDatetime != nil {
		e.EndDatetime = *d.EndDatetime
	}
	if d.Location != nil {
		e.Location = *d.Location
	}
	if d.Attendees != nil {
		e.Attendees = *d.Attendees
	}
	if d.Note != nil {
		e.Note = *d.Note
	}
}
