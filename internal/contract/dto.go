package contract

import (
	"github.com/frahmantamala/crm-management/internal"
)

type CreateContractDTO struct {
	CustomerID  int64 `json:"customer_id"`
	TotalAmount int64 `json:"total_amount"`
	BalanceDue  int64 `json:"balance_due"`
	Signed      bool  `json:"signed"`
}

func (d CreateContractDTO) Validate() error {
	if d.CustomerID == 0 {
		return internal.NewValidationError("customer_id is required", internal.ErrCodeMissingField)
	}
	if d.TotalAmount < 0 {
		return internal.NewValidationError("total_amount cannot be negative", internal.ErrCodeInvalidAmount)
	}
	if d.BalanceDue < 0 {
		return internal.NewValidationError("balance_due cannot be negative", internal.ErrCodeInvalidAmount)
	}
	if d.BalanceDue > d.TotalAmount {
		return internal.NewValidationError("balance_due cannot exceed total_amount", internal.ErrCodeInvalidAmount)
	}
	return nil
}

// UpdateContractDTO carries a partial update; nil fields stay untouched. The
// customer and the author cannot be changed after creation.
type UpdateContractDTO struct {
	TotalAmount *int64 `json:"total_amount,omitempty"`
	BalanceDue  *int64 `json:"balance_due,omitempty"`
	Signed      *bool  `json:"signed,omitempty"`
}

func (d UpdateContractDTO) Validate() error {
	if d.TotalAmount != nil && *d.TotalAmount < 0 {
		return internal.NewValidationError("total_amount cannot be negative", internal.ErrCodeInvalidAmount)
	}
	if d.BalanceDue != nil && *d.BalanceDue < 0 {
		return internal.NewValidationError("balance_due cannot be negative", internal.ErrCodeInvalidAmount)
	}
	return nil
}

// Apply copies the set fields onto the entity.
func (d UpdateContractDTO) Apply(c *Contract) {
	if d.TotalAmount != nil {
		c.TotalAmount = *d.TotalAmount
	}
	if d.BalanceDue != nil {
		c.BalanceDue = *d.BalanceDue
	}
	if d.Signed != nil {
		c.Signed = *d.Signed
	}
}
