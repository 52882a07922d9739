package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/crm-management/internal/user"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	if err := r.db.Table("users").Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	query := `SELECT u.id, u.username, u.email, u.full_name, u.password_hash,
	                 u.role_id, ro.name AS role_name, u.created_at, u.updated_at
	          FROM users u
	          JOIN roles ro ON ro.id = u.role_id
	          WHERE u.id = ?`

	row := r.db.Raw(query, id).Row()
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.RoleID, &u.RoleName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetAll(limit, offset int) ([]*user.User, error) {
	query := `SELECT u.id, u.username, u.email, u.full_name, u.password_hash,
	                 u.role_id, ro.name AS role_name, u.created_at, u.updated_at
	          FROM users u
	          JOIN roles ro ON ro.id = u.role_id
	          ORDER BY u.id ASC
	          LIMIT ? OFFSET ?`

	rows, err := r.db.Raw(query, limit, offset).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
			&u.RoleID, &u.RoleName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(u *user.User) error {
	if err := r.db.Table("users").Save(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Table("users").Where("id = ?", id).Delete(&user.User{}).Error
}

func (r *UserRepository) RoleIDByName(name string) (int64, error) {
	var id int64
	row := r.db.Raw(`SELECT id FROM roles WHERE name = ?`, name).Row()
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, user.ErrRoleNotFound
		}
		return 0, err
	}
	return id, nil
}

// CountReferences tallies the rows that still point at the user.
func (r *UserRepository) CountReferences(userID int64) (user.References, error) {
	var refs user.References

	if err := r.db.Table("contracts").
		Where("management_user_id = ?", userID).
		Count(&refs.Contracts).Error; err != nil {
		return refs, err
	}

	if err := r.db.Table("events").
		Where("support_user_id = ?", userID).
		Count(&refs.Events).Error; err != nil {
		return refs, err
	}

	if err := r.db.Table("customers").
		Where("sales_user_id = ?", userID).
		Count(&refs.Customers).Error; err != nil {
		return refs, err
	}

	return refs, nil
}

// InTx runs fn against a repository bound to a single transaction.
func (r *UserRepository) InTx(fn func(user.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}
