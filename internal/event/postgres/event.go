package postgres

import (
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/crm-management/internal/authz"
	"github.com/frahmantamala/crm-management/internal/contract"
	"github.com/frahmantamala/crm-management/internal/event"
)

// EventRepository implements the event.Repository interface using GORM
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) event.Repository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(e *event.Event) error {
	return r.db.Table("events").Create(e).Error
}

func (r *EventRepository) GetByID(id int64) (*event.Event, error) {
	var e event.Event
	err := r.db.Table("events").Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, event.ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetRef loads the authorization snapshot: the event's assignment plus the
// owning sales id resolved through contract and customer.
func (r *EventRepository) GetRef(id int64) (authz.EventRef, error) {
	var (
		ref       authz.EventRef
		supportID sql.NullInt64
	)
	query := `SELECT ev.id, ev.customer_id, cu.sales_user_id, ev.support_user_id
	          FROM events ev
	          JOIN contracts co ON co.id = ev.contract_id
	          JOIN customers cu ON cu.id = co.customer_id
	          WHERE ev.id = ?`

	row := r.db.Raw(query, id).Row()
	if err := row.Scan(&ref.ID, &ref.CustomerID, &ref.SalesUserID, &supportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authz.EventRef{}, event.ErrEventNotFound
		}
		return authz.EventRef{}, err
	}
	if supportID.Valid {
		ref.SupportUserID = &supportID.Int64
	}
	return ref, nil
}

// GetContractRef loads the contract snapshot needed for the create decision.
func (r *EventRepository) GetContractRef(contractID int64) (authz.ContractRef, error) {
	var ref authz.ContractRef
	query := `SELECT co.id, co.customer_id, cu.sales_user_id, co.signed
	          FROM contracts co
	          JOIN customers cu ON cu.id = co.customer_id
	          WHERE co.id = ?`

	row := r.db.Raw(query, contractID).Row()
	if err := row.Scan(&ref.ID, &ref.CustomerID, &ref.SalesUserID, &ref.Signed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authz.ContractRef{}, contract.ErrContractNotFound
		}
		return authz.ContractRef{}, err
	}
	return ref, nil
}

func (r *EventRepository) GetAll(limit, offset int) ([]*event.Event, error) {
	var events []*event.Event
	err := r.db.Table("events").
		Order("start_datetime ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) GetBySupportUserID(supportUserID int64, limit, offset int) ([]*event.Event, error) {
	var events []*event.Event
	err := r.db.Table("events").
		Where("support_user_id = ?", supportUserID).
		Order("start_datetime ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, err
}

// GetBySalesUserID lists events whose customer is owned by the sales user.
func (r *EventRepository) GetBySalesUserID(salesUserID int64, limit, offset int) ([]*event.Event, error) {
	var events []*event.Event
	err := r.db.Table("events").
		Joins("JOIN customers ON customers.id = events.customer_id").
		Where("customers.sales_user_id = ?", salesUserID).
		Select("events.*").
		Order("events.start_datetime ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) GetUnassigned(limit, offset int) ([]*event.Event, error) {
	var events []*event.Event
	err := r.db.Table("events").
		Where("support_user_id IS NULL").
		Order("start_datetime ASC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) Update(e *event.Event) error {
	return r.db.Table("events").Save(e).Error
}

func (r *EventRepository) Delete(id int64) error {
	return r.db.Table("events").Where("id = ?", id).Delete(&event.Event{}).Error
}

// InTx runs fn against a repository bound to a single transaction.
func (r *EventRepository) InTx(fn func(event.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&EventRepository{db: tx})
	})
}
