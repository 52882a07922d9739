package user

import (
	"log/slog"
	"time"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/authz"
)

// Repository defines the data access methods for users.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetAll(limit, offset int) ([]*User, error)
	Update(u *User) error
	Delete(id int64) error
	RoleIDByName(name string) (int64, error)
	CountReferences(userID int64) (References, error)
	InTx(fn func(Repository) error) error
}

// PasswordHasher is the slice of the auth service this service needs.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	engine *authz.Engine
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, engine *authz.Engine, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		engine: engine,
		logger: logger,
	}
}

// CreateUser creates a staff account; management only.
func (s *Service) CreateUser(actor *authz.Actor, dto CreateUserDTO) (*User, error) {
	if err := s.engine.CanCreateUser(actor); err != nil {
		s.logger.Warn("user create denied", "user_id", actor.ID, "error", err)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	roleID, err := s.repo.RoleIDByName(dto.Role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	now := time.Now()
	u := &User{
		Username:     dto.Username,
		Email:        dto.Email,
		FullName:     dto.FullName,
		PasswordHash: hash,
		RoleID:       roleID,
		RoleName:     dto.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(u); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "created_id", u.ID, "role", dto.Role, "user_id", actor.ID)
	return u, nil
}

func (s *Service) GetUser(actor *authz.Actor, id int64) (*User, error) {
	if err := s.engine.CanReadUsers(actor); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) ListUsers(actor *authz.Actor, limit, offset int) ([]*User, error) {
	if err := s.engine.CanReadUsers(actor); err != nil {
		return nil, err
	}
	return s.repo.GetAll(limit, offset)
}

// UpdateUser applies a partial update; management only. A role change is a
// role-name lookup, never a raw id from the request.
func (s *Service) UpdateUser(actor *authz.Actor, id int64, dto UpdateUserDTO) (*User, error) {
	if err := s.engine.CanUpdateUser(actor, id); err != nil {
		s.logger.Warn("user update denied", "target_id", id, "user_id", actor.ID)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var updated *User
	err := s.repo.InTx(func(tx Repository) error {
		u, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		if dto.Email != nil {
			u.Email = *dto.Email
		}
		if dto.FullName != nil {
			u.FullName = *dto.FullName
		}
		if dto.Password != nil {
			hash, err := s.hasher.HashPassword(*dto.Password)
			if err != nil {
				return internal.NewInternalError("failed to update user", err)
			}
			u.PasswordHash = hash
		}
		if dto.Role != nil {
			roleID, err := tx.RoleIDByName(*dto.Role)
			if err != nil {
				return err
			}
			u.RoleID = roleID
			u.RoleName = *dto.Role
		}

		u.UpdatedAt = time.Now()
		if err := tx.Update(u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "target_id", id, "user_id", actor.ID)
	return updated, nil
}

// DeleteUser removes a staff account; management only, never the actor's own
// account, and never while contracts, events or customers still reference the
// target. The row is left untouched on refusal.
func (s *Service) DeleteUser(actor *authz.Actor, id int64) error {
	if err := s.engine.CanDeleteUser(actor, id); err != nil {
		s.logger.Warn("user delete denied", "target_id", id, "user_id", actor.ID)
		return err
	}

	err := s.repo.InTx(func(tx Repository) error {
		if _, err := tx.GetByID(id); err != nil {
			return err
		}

		refs, err := tx.CountReferences(id)
		if err != nil {
			return err
		}
		if refs.Total() > 0 {
			return internal.NewReferentialConflictError(
				"user is still referenced by contracts, events or customers",
				internal.ErrCodeUserReferenced).WithDetails(refs)
		}

		return tx.Delete(id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", "target_id", id, "user_id", actor.ID)
	return nil
}

// Profile returns the actor plus the sections its role may see.
func (s *Service) Profile(actor *authz.Actor) (*User, []authz.Section, error) {
	if !actor.IsAuthenticated() {
		return nil, nil, internal.NewUnauthenticatedError()
	}
	u, err := s.repo.GetByID(actor.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, s.engine.VisibleSections(actor), nil
}
