package authz

// Permission names follow the <resource>:<action> convention. They are
// immutable once defined and unique by name.
const (
	PermUserCreate = "user:create"
	PermUserRead   = "user:read"
	PermUserUpdate = "user:update"
	PermUserDelete = "user:delete"

	PermCustomerCreate = "customer:create"
	PermCustomerRead   = "customer:read"
	PermCustomerUpdate = "customer:update"
	PermCustomerDelete = "customer:delete"

	PermContractCreate = "contract:create"
	PermContractRead   = "contract:read"
	PermContractUpdate = "contract:update"
	PermContractDelete = "contract:delete"

	PermEventCreate = "event:create"
	PermEventRead   = "event:read"
	PermEventUpdate = "event:update"
	PermEventDelete = "event:delete"
)

// AllPermissions lists every defined permission, in seed order.
var AllPermissions = []string{
	PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
	PermCustomerCreate, PermCustomerRead, PermCustomerUpdate, PermCustomerDelete,
	PermContractCreate, PermContractRead, PermContractUpdate, PermContractDelete,
	PermEventCreate, PermEventRead, PermEventUpdate, PermEventDelete,
}

// DefaultRolePermissions is the static permission grant per role. The grants
// may only change through administrative action; code never mutates this map.
var DefaultRolePermissions = map[string][]string{
	RoleManagement: {
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermContractCreate, PermContractRead, PermContractUpdate, PermContractDelete,
		PermCustomerRead,
		PermEventRead, PermEventUpdate,
	},
	RoleSales: {
		PermCustomerCreate, PermCustomerRead, PermCustomerUpdate, PermCustomerDelete,
		PermContractRead, PermContractUpdate,
		PermEventCreate, PermEventRead, PermEventDelete,
	},
	RoleSupport: {
		PermCustomerRead,
		PermContractRead,
		PermEventRead, PermEventUpdate,
	},
}

// Section tags the big menu areas the presentation layer may show. Sections
// are UI gating only and never a security boundary: every action re-checks
// the fine-grained decision.
type Section string

const (
	SectionUsers     Section = "users"
	SectionCustomers Section = "customers"
	SectionContracts Section = "contracts"
	SectionEvents    Section = "events"
)
