package customer

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/authz"
)

// Repository defines the data access methods for customers. InTx runs fn
// against a transactional copy of the repository so check-then-write
// sequences see a consistent row.
type Repository interface {
	Create(c *Customer) error
	GetByID(id int64) (*Customer, error)
	GetAll(limit, offset int) ([]*Customer, error)
	GetBySalesUserID(salesUserID int64, limit, offset int) ([]*Customer, error)
	Update(c *Customer) error
	Delete(id int64) error
	CountContracts(customerID int64) (int64, error)
	InTx(fn func(Repository) error) error
}

// Service handles customer business logic. Every mutation asks the engine
// first, against the persisted row, never against request input.
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

// CreateCustomer creates a customer owned by the acting sales user. The owner
// is always the actor; the request cannot assign someone else.
func (s *Service) CreateCustomer(actor *authz.Actor, dto CreateCustomerDTO) (*Customer, error) {
	if err := s.engine.CanCreateCustomer(actor); err != nil {
		s.logger.Warn("customer create denied", "user_id", actor.ID, "error", err)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &Customer{
		FullName:    dto.FullName,
		Email:       dto.Email,
		Phone:       dto.Phone,
		CompanyName: dto.CompanyName,
		SalesUserID: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(c); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create customer", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create customer", err)
	}

	s.logger.Info("customer created", "customer_id", c.ID, "sales_user_id", actor.ID)
	return c, nil
}

// GetCustomer retrieves a single customer; read access is global for holders
// of the read bit.
func (s *Service) GetCustomer(actor *authz.Actor, id int64) (*Customer, error) {
	if err := s.engine.CanReadCustomers(actor); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// ListCustomers returns all customers.
func (s *Service) ListCustomers(actor *authz.Actor, limit, offset int) ([]*Customer, error) {
	if err := s.engine.CanReadCustomers(actor); err != nil {
		return nil, err
	}
	return s.repo.GetAll(limit, offset)
}

// ListMyCustomers returns the customers owned by the acting sales user.
func (s *Service) ListMyCustomers(actor *authz.Actor, limit, offset int) ([]*Customer, error) {
	if err := s.engine.CanReadCustomers(actor); err != nil {
		return nil, err
	}
	return s.repo.GetBySalesUserID(actor.ID, limit, offset)
}

// UpdateCustomer applies a partial update after the ownership check. The load,
// the check and the write share one transaction so the owner cannot change
// between them.
func (s *Service) UpdateCustomer(actor *authz.Actor, id int64, dto UpdateCustomerDTO) (*Customer, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *Customer
	err := s.repo.InTx(func(tx Repository) error {
		c, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		if err := s.engine.CanUpdateCustomer(actor, c.ID, c.SalesUserID); err != nil {
			s.logger.Warn("customer update denied",
				"customer_id", id, "user_id", actor.ID, "owner_id", c.SalesUserID)
			return err
		}

		dto.Apply(c)
		c.UpdatedAt = time.Now()
		if err := tx.Update(c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer updated", "customer_id", id, "user_id", actor.ID)
	return updated, nil
}

// DeleteCustomer removes a customer the actor owns, unless contracts still
// reference it.
func (s *Service) DeleteCustomer(actor *authz.Actor, id int64) error {
	err := s.repo.InTx(func(tx Repository) error {
		c, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		if err := s.engine.CanDeleteCustomer(actor, c.ID, c.SalesUserID); err != nil {
			s.logger.Warn("customer delete denied",
				"customer_id", id, "user_id", actor.ID, "owner_id", c.SalesUserID)
			return err
		}

		count, err := tx.CountContracts(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return internal.NewReferentialConflictError(
				"customer still has contracts", internal.ErrCodeCustomerReferenced)
		}

		return tx.Delete(id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("customer deleted", "customer_id", id, "user_id", actor.ID)
	return nil
}
