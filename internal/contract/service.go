package contract

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/authz"
	"github.com/frahmantamala/crm-management/internal/customer"
)

// Repository defines the data access methods for contracts. GetRef joins the
// contract with its customer's owning sales id for authorization decisions.
type Repository interface {
	Create(c *Contract) error
	GetByID(id int64) (*Contract, error)
	GetRef(id int64) (authz.ContractRef, error)
	GetAll(filter Filter, limit, offset int) ([]*Contract, error)
	GetByManagementUserID(userID int64, filter Filter, limit, offset int) ([]*Contract, error)
	GetBySalesUserID(salesUserID int64, filter Filter, limit, offset int) ([]*Contract, error)
	Update(c *Contract) error
	Delete(id int64) error
	InTx(fn func(Repository) error) error
}

// CustomerReader is the slice of the customer store this service needs.
type CustomerReader interface {
	GetByID(id int64) (*customer.Customer, error)
}

type Service struct {
	repo      Repository
	customers CustomerReader
	engine    *authz.Engine
	logger    *slog.Logger
}

func NewService(repo Repository, customers CustomerReader, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		engine:    engine,
		logger:    logger,
	}
}

// CreateContract authors a contract for a customer. The author is always the
// acting management user.
func (s *Service) CreateContract(actor *authz.Actor, dto CreateContractDTO) (*Contract, error) {
	if err := s.engine.CanCreateContract(actor); err != nil {
		s.logger.Warn("contract create denied", "user_id", actor.ID, "error", err)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.customers.GetByID(dto.CustomerID); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &Contract{
		CustomerID:       dto.CustomerID,
		ManagementUserID: actor.ID,
		TotalAmount:      dto.TotalAmount,
		BalanceDue:       dto.BalanceDue,
		Signed:           dto.Signed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(c); err != nil {
		s.logger.Error("failed to create contract", "error", err, "user_id", actor.ID)
		return nil, internal.NewInternalError("failed to create contract", err)
	}

	s.logger.Info("contract created",
		"contract_id", c.ID, "customer_id", c.CustomerID, "user_id", actor.ID)
	return c, nil
}

func (s *Service) GetContract(actor *authz.Actor, id int64) (*Contract, error) {
	if err := s.engine.CanReadContracts(actor); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// ListContracts returns all contracts matching the filter.
func (s *Service) ListContracts(actor *authz.Actor, filter Filter, limit, offset int) ([]*Contract, error) {
	if err := s.engine.CanReadContracts(actor); err != nil {
		return nil, err
	}
	return s.repo.GetAll(filter, limit, offset)
}

// ListMyContracts narrows by role: management sees contracts it authored,
// sales sees contracts on its customers, support has no contracts of its own.
func (s *Service) ListMyContracts(actor *authz.Actor, filter Filter, limit, offset int) ([]*Contract, error) {
	if err := s.engine.CanReadContracts(actor); err != nil {
		return nil, err
	}

	switch actor.Role {
	case authz.RoleManagement:
		return s.repo.GetByManagementUserID(actor.ID, filter, limit, offset)
	case authz.RoleSales:
		return s.repo.GetBySalesUserID(actor.ID, filter, limit, offset)
	}
	return []*Contract{}, nil
}

// UpdateContract applies a partial update. Management may update any contract,
// sales only contracts on customers it owns; the load, the decision and the
// write share one transaction.
func (s *Service) UpdateContract(actor *authz.Actor, id int64, dto UpdateContractDTO) (*Contract, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *Contract
	err := s.repo.InTx(func(tx Repository) error {
		c, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		ref, err := tx.GetRef(id)
		if err != nil {
			return err
		}

		if err := s.engine.CanUpdateContract(actor, ref); err != nil {
			s.logger.Warn("contract update denied",
				"contract_id", id, "user_id", actor.ID, "owner_id", ref.SalesUserID)
			return err
		}

		dto.Apply(c)
		if c.BalanceDue > c.TotalAmount {
			return internal.NewValidationError(
				"balance_due cannot exceed total_amount", internal.ErrCodeInvalidAmount)
		}

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

	s.logger.Info("contract updated", "contract_id", id, "user_id", actor.ID)
	return updated, nil
}

// DeleteContract removes a contract; management only.
func (s *Service) DeleteContract(actor *authz.Actor, id int64) error {
	err := s.repo.InTx(func(tx Repository) error {
		if _, err := tx.GetByID(id); err != nil {
			return err
		}

		if err := s.engine.CanDeleteContract(actor, id); err != nil {
			s.logger.Warn("contract delete denied", "contract_id", id, "user_id", actor.ID)
			return err
		}

		return tx.Delete(id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("contract deleted", "contract_id", id, "user_id", actor.ID)
	return nil
}
