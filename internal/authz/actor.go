package authz

// Role names are fixed; every actor maps to exactly one of them.
const (
	RoleManagement = "management"
	RoleSales      = "sales"
	RoleSupport    = "support"
)

// Actor is the authenticated identity attempting an action. It is resolved
// once at request start (id, role name, role's permission set) and treated as
// read-only by every decision.
type Actor struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// IsAuthenticated reports whether the actor carries a usable identity. A nil
// actor or an actor without an id fails every permission check.
func (a *Actor) IsAuthenticated() bool {
	return a != nil && a.ID != 0
}

// HasPermission is the single entry guard for every decision: false for an
// unauthenticated actor regardless of the permission name, otherwise a set
// membership test on the role's permissions.
func (a *Actor) HasPermission(name string) bool {
	if !a.IsAuthenticated() {
		return false
	}
	for _, p := range a.Permissions {
		if p == name {
			return true
		}
	}
	return false
}

func (a *Actor) HasAnyPermission(names []string) bool {
	for _, name := range names {
		if a.HasPermission(name) {
			return true
		}
	}
	return false
}
