package contract

import (
	"time"

	"github.com/frahmantamala/crm-management/internal"
)

// Contract ties a customer to an agreed amount. ManagementUserID is the
// management user who authored it; amounts are in cents.
type Contract struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	CustomerID       int64     `json:"customer_id"`
	ManagementUserID int64     `json:"management_user_id"`
	TotalAmount      int64     `json:"total_amount"`
	BalanceDue       int64     `json:"balance_due"`
	Signed           bool      `json:"signed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Filter narrows contract listings. The flags are independent guards and may
// be combined.
type Filter struct {
	Unsigned bool
	Unpaid   bool
}

var ErrContractNotFound = internal.NewNotFoundError("contract not found", internal.ErrCodeContractNotFound)
