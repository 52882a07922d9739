package user

import (
	"time"

	"github.com/frahmantamala/crm-management/internal"
)

// User is a CRM staff account. RoleID links to exactly one role; RoleName is
// populated on reads for convenience and never written back.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	RoleID       int64     `json:"-"`
	RoleName     string    `json:"role" gorm:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// References counts the rows that still point at a user: contracts authored,
// events assigned, customers owned. A user with any nonzero count cannot be
// deleted.
type References struct {
	Contracts int64 `json:"contracts"`
	Events    int64 `json:"events"`
	Customers int64 `json:"customers"`
}

func (r References) Total() int64 {
	return r.Contracts + r.Events + r.Customers
}

var (
	ErrUserNotFound      = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	ErrRoleNotFound      = internal.NewNotFoundError("role not found", internal.ErrCodeRoleNotFound)
	ErrDuplicateUsername = internal.NewConflictError("a user with this username already exists", internal.ErrCodeDuplicateValue)
)
