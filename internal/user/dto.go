package user

import (
	"strings"

	"github.com/frahmantamala/crm-management/internal"
	"github.com/frahmantamala/crm-management/internal/authz"
)

type CreateUserDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d CreateUserDTO) Validate() error {
	if strings.TrimSpace(d.Username) == "" {
		return internal.NewValidationError("username is required", internal.ErrCodeMissingField)
	}
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeMissingField)
	}
	if !strings.Contains(d.Email, "@") {
		return internal.NewValidationError("email is not valid", internal.ErrCodeInvalidFormat)
	}
	if len(d.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeInvalidFormat)
	}
	return validRole(d.Role)
}

// UpdateUserDTO carries a partial update; nil fields stay untouched.
type UpdateUserDTO struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

func (d UpdateUserDTO) Validate() error {
	if d.Email != nil {
		if strings.TrimSpace(*d.Email) == "" {
			return internal.NewValidationError("email cannot be empty", internal.ErrCodeInvalidFormat)
		}
		if !strings.Contains(*d.Email, "@") {
			return internal.NewValidationError("email is not valid", internal.ErrCodeInvalidFormat)
		}
	}
	if d.Password != nil && len(*d.Password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeInvalidFormat)
	}
	if d.Role != nil {
		return validRole(*d.Role)
	}
	return nil
}

func validRole(role string) error {
	switch role {
	case authz.RoleManagement, authz.RoleSales, authz.RoleSupport:
		return nil
	}
	return internal.NewValidationError("role must be one of management, sales, support", internal.ErrCodeInvalidFormat)
}
