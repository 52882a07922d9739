package authz

import (
	"github.com/frahmantamala/crm-management/internal"
)

// ContractRef is the read-only ownership snapshot a contract decision needs:
// the contract row joined with its customer's owning sales id. Services load
// it from storage so decisions never traverse a lazy object graph, and always
// see the current persisted owner rather than request-supplied values.
type ContractRef struct {
	ID          int64
	CustomerID  int64
	SalesUserID int64
	Signed      bool
}

// EventRef is the equivalent snapshot for an event: the assignment plus the
// owning sales id resolved through contract -> customer.
type EventRef struct {
	ID            int64
	CustomerID    int64
	SalesUserID   int64
	SupportUserID *int64
}

// EventAssignmentField is the single event column management may change.
const EventAssignmentField = "support_user_id"

// Engine holds the fine-grained permission decisions. All decisions are pure:
// identical inputs produce identical results, nothing is read or mutated
// outside the arguments, and a denial is returned as an error value carrying
// the permission name and resource id. The engine never logs and never
// retries; that is the caller's business.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// require is the base check shared by every decision: fail closed for a
// missing identity, then the permission-bit lookup.
func (e *Engine) require(actor *Actor, permission string, resourceID int64) *internal.AppError {
	if !actor.IsAuthenticated() {
		return internal.NewUnauthenticatedError()
	}
	if !actor.HasPermission(permission) {
		return internal.NewPermissionDeniedError(permission, resourceID)
	}
	return nil
}

// HasPermission exposes the bare bit lookup for callers that gate on a single
// permission without an ownership predicate.
func (e *Engine) HasPermission(actor *Actor, permission string) bool {
	return actor.HasPermission(permission)
}

// VisibleSections returns the menu sections the actor may see, one per held
// <resource>:read bit. UI gating only; not a security boundary.
func (e *Engine) VisibleSections(actor *Actor) []Section {
	var sections []Section
	if actor.HasPermission(PermUserRead) {
		sections = append(sections, SectionUsers)
	}
	if actor.HasPermission(PermCustomerRead) {
		sections = append(sections, SectionCustomers)
	}
	if actor.HasPermission(PermContractRead) {
		sections = append(sections, SectionContracts)
	}
	if actor.HasPermission(PermEventRead) {
		sections = append(sections, SectionEvents)
	}
	return sections
}

// ----------------- customers -----------------

// CanCreateCustomer: customer:create and the sales role; a new customer is
// always owned by a sales actor.
func (e *Engine) CanCreateCustomer(actor *Actor) *internal.AppError {
	if err := e.require(actor, PermCustomerCreate, 0); err != nil {
		return err
	}
	if actor.Role != RoleSales {
		return internal.NewPermissionDeniedError(PermCustomerCreate, 0)
	}
	return nil
}

// CanReadCustomers: the read bit alone; read is global for any authenticated
// holder of the bit.
func (e *Engine) CanReadCustomers(actor *Actor) *internal.AppError {
	return e.require(actor, PermCustomerRead, 0)
}

// CanUpdateCustomer: customer:update, sales role, and ownership of the
// customer. ownerSalesID is the persisted owner, never a request value.
func (e *Engine) CanUpdateCustomer(actor *Actor, customerID, ownerSalesID int64) *internal.AppError {
	if err := e.require(actor, PermCustomerUpdate, customerID); err != nil {
		return err
	}
	if actor.Role != RoleSales || actor.ID != ownerSalesID {
		return internal.NewPermissionDeniedError(PermCustomerUpdate, customerID)
	}
	return nil
}

// CanDeleteCustomer mirrors CanUpdateCustomer with the delete bit.
func (e *Engine) CanDeleteCustomer(actor *Actor, customerID, ownerSalesID int64) *internal.AppError {
	if err := e.require(actor, PermCustomerDelete, customerID); err != nil {
		return err
	}
	if actor.Role != RoleSales || actor.ID != ownerSalesID {
		return internal.NewPermissionDeniedError(PermCustomerDelete, customerID)
	}
	return nil
}

// ----------------- contracts -----------------

// CanCreateContract: contract:create and the management role; contracts are
// authored by management.
func (e *Engine) CanCreateContract(actor *Actor) *internal.AppError {
	if err := e.require(actor, PermContractCreate, 0); err != nil {
		return err
	}
	if actor.Role != RoleManagement {
		return internal.NewPermissionDeniedError(PermContractCreate, 0)
	}
	return nil
}

func (e *Engine) CanReadContracts(actor *Actor) *internal.AppError {
	return e.require(actor, PermContractRead, 0)
}

// CanUpdateContract: contract:update plus either management (any contract) or
// sales owning the contract's customer.
func (e *Engine) CanUpdateContract(actor *Actor, contract ContractRef) *internal.AppError {
	if err := e.require(actor, PermContractUpdate, contract.ID); err != nil {
		return err
	}
	if actor.Role == RoleManagement {
		return nil
	}
	if actor.Role == RoleSales && actor.ID == contract.SalesUserID {
		return nil
	}
	return internal.NewPermissionDeniedError(PermContractUpdate, contract.ID)
}

// CanDeleteContract: contract:delete and the management role.
func (e *Engine) CanDeleteContract(actor *Actor, contractID int64) *internal.AppError {
	if err := e.require(actor, PermContractDelete, contractID); err != nil {
		return err
	}
	if actor.Role != RoleManagement {
		return internal.NewPermissionDeniedError(PermContractDelete, contractID)
	}
	return nil
}

// ----------------- events -----------------

// CanCreateEvent: event:create, sales role, a signed contract, and ownership
// of the contract's customer. An event can never be created against an
// unsigned contract, whoever asks.
func (e *Engine) CanCreateEvent(actor *Actor, contract ContractRef) *internal.AppError {
	if err := e.require(actor, PermEventCreate, contract.ID); err != nil {
		return err
	}
	if actor.Role != RoleSales || actor.ID != contract.SalesUserID {
		return internal.NewPermissionDeniedError(PermEventCreate, contract.ID)
	}
	if !contract.Signed {
		return internal.NewPermissionDeniedError(PermEventCreate, contract.ID)
	}
	return nil
}

func (e *Engine) CanReadEvents(actor *Actor) *internal.AppError {
	return e.require(actor, PermEventRead, 0)
}

// CanUpdateEvent validates the full set of changed field names before any
// field is applied; a rejection rejects the whole update.
//
// Branches by role: management may change only the support assignment;
// support may change anything except the assignment, and only on events
// assigned to them; sales may change events on customers they own.
func (e *Engine) CanUpdateEvent(actor *Actor, event EventRef, changedFields []string) *internal.AppError {
	if err := e.require(actor, PermEventUpdate, event.ID); err != nil {
		return err
	}
	switch actor.Role {
	case RoleManagement:
		for _, field := range changedFields {
			if field != EventAssignmentField {
				return internal.NewPermissionDeniedError(PermEventUpdate, event.ID)
			}
		}
		return nil
	case RoleSupport:
		if event.SupportUserID == nil || *event.SupportUserID != actor.ID {
			return internal.NewPermissionDeniedError(PermEventUpdate, event.ID)
		}
		for _, field := range changedFields {
			if field == EventAssignmentField {
				return internal.NewPermissionDeniedError(PermEventUpdate, event.ID)
			}
		}
		return nil
	case RoleSales:
		if actor.ID != event.SalesUserID {
			return internal.NewPermissionDeniedError(PermEventUpdate, event.ID)
		}
		return nil
	}
	return internal.NewPermissionDeniedError(PermEventUpdate, event.ID)
}

// CanDeleteEvent: the delete bit alone.
func (e *Engine) CanDeleteEvent(actor *Actor, eventID int64) *internal.AppError {
	return e.require(actor, PermEventDelete, eventID)
}

// ----------------- users -----------------

// User administration is management-only across create, update and delete.

func (e *Engine) CanCreateUser(actor *Actor) *internal.AppError {
	if err := e.require(actor, PermUserCreate, 0); err != nil {
		return err
	}
	if actor.Role != RoleManagement {
		return internal.NewPermissionDeniedError(PermUserCreate, 0)
	}
	return nil
}

func (e *Engine) CanReadUsers(actor *Actor) *internal.AppError {
	return e.require(actor, PermUserRead, 0)
}

func (e *Engine) CanUpdateUser(actor *Actor, targetUserID int64) *internal.AppError {
	if err := e.require(actor, PermUserUpdate, targetUserID); err != nil {
		return err
	}
	if actor.Role != RoleManagement {
		return internal.NewPermissionDeniedError(PermUserUpdate, targetUserID)
	}
	return nil
}

// CanDeleteUser additionally forbids self-deletion whatever the permission
// bits say. Referential-integrity checks (the target still referenced by
// contracts, events or customers) are the service's responsibility since they
// need storage counts.
func (e *Engine) CanDeleteUser(actor *Actor, targetUserID int64) *internal.AppError {
	if err := e.require(actor, PermUserDelete, targetUserID); err != nil {
		return err
	}
	if actor.Role != RoleManagement {
		return internal.NewPermissionDeniedError(PermUserDelete, targetUserID)
	}
	if actor.ID == targetUserID {
		return internal.NewValidationError("users cannot delete their own account", internal.ErrCodeSelfDelete)
	}
	return nil
}
