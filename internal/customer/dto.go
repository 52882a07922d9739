package customer

import (
	"strings"

	"github.com/frahmantamala/crm-management/internal"
)

type CreateCustomerDTO struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
}

func (d CreateCustomerDTO) Validate() error {
	if strings.TrimSpace(d.FullName) == "" {
		return internal.NewValidationError("full_name is required", internal.ErrCodeMissingField)
	}
	if strings.TrimSpace(d.Email) == "" {
		return internal.NewValidationError("email is required", internal.ErrCodeMissingField)
	}
	if !strings.Contains(d.Email, "@") {
		return internal.NewValidationError("email is not valid", internal.ErrCodeInvalidFormat)
	}
	return nil
}

// UpdateCustomerDTO carries a partial update; nil fields stay untouched.
// The owning sales user cannot be changed through this path.
type UpdateCustomerDTO struct {
	FullName    *string `json:"full_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
}

func (d UpdateCustomerDTO) Validate() error {
	if d.FullName != nil && strings.TrimSpace(*d.FullName) == "" {
		return internal.NewValidationError("full_name cannot be empty", internal.ErrCodeInvalidFormat)
	}
	if d.Email != nil {
		if strings.TrimSpace(*d.Email) == "" {
			return internal.NewValidationError("email cannot be empty", internal.ErrCodeInvalidFormat)
		}
		if !strings.Contains(*d.Email, "@") {
			return internal.NewValidationError("email is not valid", internal.ErrCodeInvalidFormat)
		}
	}
	return nil
}

// Apply copies the set fields onto the entity.
func (d UpdateCustomerDTO) Apply(c *Customer) {
	if d.FullName != nil {
		c.FullName = *d.FullName
	}
	if d.Email != nil {
		c.Email = *d.Email
	}
	if d.Phone != nil {
		c.Phone = *d.Phone
	}
	if d.CompanyName != nil {
		c.CompanyName = *d.CompanyName
	}
}
