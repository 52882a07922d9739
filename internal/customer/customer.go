package customer

import (
	"time"

	"github.com/frahmantamala/crm-management/internal"
)

// Customer is a client company contact. SalesUserID is the owning sales user;
// ownership drives every write decision on the record.
type Customer struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CompanyName string    `json:"company_name"`
	SalesUserID int64     `json:"sales_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrCustomerNotFound = internal.NewNotFoundError("customer not found", internal.ErrCodeCustomerNotFound)
	ErrDuplicateEmail   = internal.NewConflictError("a customer with this email already exists", internal.ErrCodeDuplicateValue)
)
