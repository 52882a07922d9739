package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/crm-management/internal/customer"
)

// CustomerRepository implements the customer.Repository interface using GORM
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) customer.Repository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(c *customer.Customer) error {
	if err := r.db.Table("customers").Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return customer.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *CustomerRepository) GetByID(id int64) (*customer.Customer, error) {
	var c customer.Customer
	err := r.db.Table("customers").Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) GetAll(limit, offset int) ([]*customer.Customer, error) {
	var customers []*customer.Customer
	err := r.db.Table("customers").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) GetBySalesUserID(salesUserID int64, limit, offset int) ([]*customer.Customer, error) {
	var customers []*customer.Customer
	err := r.db.Table("customers").
		Where("sales_user_id = ?", salesUserID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) Update(c *customer.Customer) error {
	if err := r.db.Table("customers").Save(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return customer.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *CustomerRepository) Delete(id int64) error {
	return r.db.Table("customers").Where("id = ?", id).Delete(&customer.Customer{}).Error
}

func (r *CustomerRepository) CountContracts(customerID int64) (int64, error) {
	var count int64
	err := r.db.Table("contracts").Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

// InTx runs fn against a repository bound to a single transaction.
func (r *CustomerRepository) InTx(fn func(customer.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&CustomerRepository{db: tx})
	})
}
