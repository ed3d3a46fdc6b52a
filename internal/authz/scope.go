package authz

import "github.com/stwalsh4118/rentroll/internal/models"

// ScopeKind selects how list queries are narrowed.
type ScopeKind int

const (
	// ScopeNone matches no rows.
	ScopeNone ScopeKind = iota
	// ScopeAll matches every row.
	ScopeAll
	// ScopeLandlord matches rows reached through properties the landlord owns.
	ScopeLandlord
	// ScopeTenant matches rows reached through the tenant's leases.
	ScopeTenant
)

// Scope is the row filter for an actor's list queries.
type Scope struct {
	Kind       ScopeKind
	LandlordID uint
	TenantID   uint
}

// Covers reports whether a list narrowed to children of owner stays inside
// the scope. Tenant scopes filter per lease, so every parent is covered.
func (s Scope) Covers(owner Owner) bool {
	switch s.Kind {
	case ScopeAll, ScopeTenant:
		return true
	case ScopeLandlord:
		return owner.LandlordID != 0 && owner.LandlordID == s.LandlordID
	}
	return false
}

// ListScope returns the filter applied to every list the actor requests.
// A tenant-role user without a tenant record sees nothing.
func ListScope(a Actor) Scope {
	switch a.Role {
	case models.RoleAdmin:
		return Scope{Kind: ScopeAll}
	case models.RoleLandlord:
		return Scope{Kind: ScopeLandlord, LandlordID: a.UserID}
	case models.RoleTenant:
		if a.TenantID != nil {
			return Scope{Kind: ScopeTenant, TenantID: *a.TenantID}
		}
	}
	return Scope{Kind: ScopeNone}
}
