package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/crm-management/internal/authz"
	"github.com/frahmantamala/crm-management/internal/contract"
)

// ContractRepository implements the contract.Repository interface using GORM
type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) contract.Repository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(c *contract.Contract) error {
	return r.db.Table("contracts").Create(c).Error
}

func (r *ContractRepository) GetByID(id int64) (*contract.Contract, error) {
	var c contract.Contract
	err := r.db.Table("contracts").Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetRef loads the authorization snapshot: the contract joined with its
// customer's owning sales user.
func (r *ContractRepository) GetRef(id int64) (authz.ContractRef, error) {
	var ref authz.ContractRef
	query := `SELECT co.id, co.customer_id, cu.sales_user_id, co.signed
	          FROM contracts co
	          JOIN customers cu ON cu.id = co.customer_id
	          WHERE co.id = ?`

	row := r.db.Raw(query, id).Row()
	if err := row.Scan(&ref.ID, &ref.CustomerID, &ref.SalesUserID, &ref.Signed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authz.ContractRef{}, contract.ErrContractNotFound
		}
		return authz.ContractRef{}, err
	}
	return ref, nil
}

func (r *ContractRepository) GetAll(filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	err := r.filtered(r.db.Table("contracts"), filter).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) GetByManagementUserID(userID int64, filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	err := r.filtered(r.db.Table("contracts").Where("management_user_id = ?", userID), filter).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&contracts).Error
	return contracts, err
}

// GetBySalesUserID lists contracts whose customer is owned by the sales user.
func (r *ContractRepository) GetBySalesUserID(salesUserID int64, filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	base := r.db.Table("contracts").
		Joins("JOIN customers ON customers.id = contracts.customer_id").
		Where("customers.sales_user_id = ?", salesUserID).
		Select("contracts.*")
	err := r.filtered(base, filter).
		Order("contracts.id ASC").
		Limit(limit).
		Offset(offset).
		Find(&contracts).Error
	return contracts, err
}

func (r *ContractRepository) Update(c *contract.Contract) error {
	return r.db.Table("contracts").Save(c).Error
}

func (r *ContractRepository) Delete(id int64) error {
	return r.db.Table("contracts").Where("id = ?", id).Delete(&contract.Contract{}).Error
}

// InTx runs fn against a repository bound to a single transaction.
func (r *ContractRepository) InTx(fn func(contract.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ContractRepository{db: tx})
	})
}

func (r *ContractRepository) filtered(q *gorm.DB, filter contract.Filter) *gorm.DB {
	if filter.Unsigned {
		q = q.Where("signed = ?", false)
	}
	if filter.Unpaid {
		q = q.Where("balance_due > 0")
	}
	return q
}
