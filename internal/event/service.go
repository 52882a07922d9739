package event

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/authz"
)

// Repository defines the data access methods for events. GetRef and
// GetContractRef load the authorization snapshots; both are available inside
// InTx so a guarded read and the write it guards share one transaction.
type Repository interface {
	Create(e *Event) error
	GetByID(id int64) (*Event, error)
	GetRef(id int64) (authz.EventRef, error)
	GetContractRef(contractID int64) (authz.ContractRef, error)
	GetAll(limit, offset int) ([]*Event, error)
	GetBySupportUserID(supportUserID int64, limit, offset int) ([]*Event, error)
	GetBySalesUserID(salesUserID int64, limit, offset int) ([]*Event, error)
	GetUnassigned(limit, offset int) ([]*Event, error)
	Update(e *Event) error
	Delete(id int64) error
	InTx(fn func(Repository) error) error
}

type Service struct {
	repo   Repository
	engine *authz.Engine
	logger *slog.Logger
}

func NewService(repo Repository, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
		logger: logger,
	}
}

// CreateEvent creates an event under a signed contract the actor owns. The
// contract is re-read inside the transaction, so a contract unsigned between
// an earlier check and the insert still rejects, and customer_id is always
// taken from the contract row, never from the request.
func (s *Service) CreateEvent(actor *authz.Actor, dto CreateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var created *Event
	err := s.repo.InTx(func(tx Repository) error {
		ref, err := tx.GetContractRef(dto.ContractID)
		if err != nil {
			return err
		}

		if err := s.engine.CanCreateEvent(actor, ref); err != nil {
			s.logger.Warn("event create denied",
				"contract_id", dto.ContractID, "user_id", actor.ID,
				"signed", ref.Signed, "owner_id", ref.SalesUserID)
			return err
		}

		now := time.Now()
		e := &Event{
			EventNumber:   NewEventNumber(),
			ContractID:    ref.ID,
			CustomerID:    ref.CustomerID,
			EventName:     dto.EventName,
			StartDatetime: dto.StartDatetime,
			EndDatetime:   dto.EndDatetime,
			Location:      dto.Location,
			Attendees:     dto.Attendees,
			Note:          dto.Note,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := tx.Create(e); err != nil {
			return err
		}
		created = e
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to create event", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create event", err)
	}

	s.logger.Info("event created",
		"event_id", created.ID, "event_number", created.EventNumber,
		"contract_id", created.ContractID, "user_id", actor.ID)
	return created, nil
}

func (s *Service) GetEvent(actor *authz.Actor, id int64) (*Event, error) {
	if err := s.engine.CanReadEvents(actor); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListEvents(actor *authz.Actor, limit, offset int) ([]*Event, error) {
	if err := s.engine.CanReadEvents(actor); err != nil {
		return nil, err
	}
	return s.repo.GetAll(limit, offset)
}

// ListMyEvents narrows by role: support sees events assigned to it, sales
// sees events on its customers, management sees everything.
func (s *Service) ListMyEvents(actor *authz.Actor, limit, offset int) ([]*Event, error) {
	if err := s.engine.CanReadEvents(actor); err != nil {
		return nil, err
	}

	switch actor.Role {
	case authz.RoleSupport:
		return s.repo.GetBySupportUserID(actor.ID, limit, offset)
	case authz.RoleSales:
		return s.repo.GetBySalesUserID(actor.ID, limit, offset)
	}
	return s.repo.GetAll(limit, offset)
}

// ListUnassignedEvents lists events without a support user.
func (s *Service) ListUnassignedEvents(actor *authz.Actor, limit, offset int) ([]*Event, error) {
	if err := s.engine.CanReadEvents(actor); err != nil {
		return nil, err
	}
	return s.repo.GetUnassigned(limit, offset)
}

// UpdateEvent applies a partial update after the whole changed-field set
// passes the authorization decision; a denial persists nothing.
func (s *Service) UpdateEvent(actor *authz.Actor, id int64, dto UpdateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	changed := dto.Changes()

	var updated *Event
	err := s.repo.InTx(func(tx Repository) error {
		ref, err := tx.GetRef(id)
		if err != nil {
			return err
		}

		if err := s.engine.CanUpdateEvent(actor, ref, changed); err != nil {
			s.logger.Warn("event update denied",
				"event_id", id, "user_id", actor.ID,
				"role", actor.Role, "changed_fields", changed)
			return err
		}

		e, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		dto.Apply(e)
		if e.EndDatetime.Before(e.StartDatetime) {
			return internal.NewValidationError(
				"end_datetime cannot be before start_datetime", internal.ErrCodeInvalidDate)
		}

		e.UpdatedAt = time.Now()
		if err := tx.Update(e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("event updated", "event_id", id, "user_id", actor.ID, "changed_fields", changed)
	return updated, nil
}

// AssignSupport is the management path for changing the support assignment.
func (s *Service) AssignSupport(actor *authz.Actor, id int64, supportUserID int64) (*Event, error) {
	return s.UpdateEvent(actor, id, UpdateEventDTO{SupportUserID: &supportUserID})
}

// DeleteEvent removes an event.
func (s *Service) DeleteEvent(actor *authz.Actor, id int64) error {
	err := s.repo.InTx(func(tx Repository) error {
		if _, err := tx.GetByID(id); err != nil {
			return err
		}

		if err := s.engine.CanDeleteEvent(actor, id); err != nil {
			s.logger.Warn("event delete denied", "event_id", id, "user_id", actor.ID)
			return err
		}

		return tx.Delete(id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("event deleted", "event_id", id, "user_id", actor.ID)
	return nil
}
