package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// RoleRepository reads the role and permission tables with plain SQL. The
// grants change only through migrations or administrative action, so there is
// no write path here.
type RoleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// PermissionsForRole returns the permission names granted to the named role,
// in seed order. A role with no grants returns an empty slice, not an error.
func (r *RoleRepository) PermissionsForRole(ctx context.Context, roleName string) ([]string, error) {
	query := `
		SELECT p.name
		FROM permissions p
		JOIN role_permission rp ON rp.permission_id = p.id
		JOIN roles ro ON ro.id = rp.role_id
		WHERE ro.name = $1
		ORDER BY p.id`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query, roleName); err != nil {
		return nil, fmt.Errorf("select permissions for role %s: %w", roleName, err)
	}
	return names, nil
}

// HasPermission reports whether the role holds a single named permission.
func (r *RoleRepository) HasPermission(ctx context.Context, roleName, permission string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM role_permission rp
			JOIN roles ro ON ro.id = rp.role_id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE ro.name = $1 AND p.name = $2
		)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, roleName, permission); err != nil {
		return false, fmt.Errorf("check permission %s for role %s: %w", permission, roleName, err)
	}
	return exists, nil
}

// RoleID resolves a role name to its primary key.
func (r *RoleRepository) RoleID(ctx context.Context, roleName string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM roles WHERE name = $1`, roleName); err != nil {
		return 0, fmt.Errorf("resolve role %s: %w", roleName, err)
	}
	return id, nil
}
