package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/crm-management/internal/authz"
)

// RolePermissionSource resolves a role name to its permission names.
type RolePermissionSource interface {
	PermissionsForRole(ctx context.Context, roleName string) ([]string, error)
}

type Repository struct {
	db    *gorm.DB
	roles RolePermissionSource
}

func NewRepository(db *gorm.DB, roles RolePermissionSource) *Repository {
	return &Repository{
		db:    db,
		roles: roles,
	}
}

func (r *Repository) GetCredentialsByUsername(username string) (int64, string, error) {
	var userID int64
	var passwordHash string
	query := `SELECT id, password_hash FROM users WHERE username = ?`

	row := r.db.Raw(query, username).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, "", fmt.Errorf("user not found")
		}
		return 0, "", err
	}
	return userID, passwordHash, nil
}

// GetActor loads the user joined with its role, then the role's permission
// names. The permission set rides on the actor for the rest of the request.
func (r *Repository) GetActor(userID int64) (*authz.Actor, error) {
	var actor authz.Actor

	query := `SELECT u.id, u.username, ro.name
	          FROM users u
	          JOIN roles ro ON ro.id = u.role_id
	          WHERE u.id = ?`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&actor.ID, &actor.Username, &actor.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	permissions, err := r.roles.PermissionsForRole(context.Background(), actor.Role)
	if err != nil {
		return nil, err
	}

	actor.Permissions = permissions
	return &actor, nil
}
