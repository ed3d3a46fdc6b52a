// Package authz decides what an authenticated actor may see and do.
//
// Every role rule lives here: ListScope narrows list queries and Authorize
// checks a single action against a resource's ownership. Services call
// these instead of branching on roles themselves.
package authz

import (
	"errors"
	"fmt"

	"github.com/stwalsh4118/rentroll/internal/models"
)

// ErrForbidden is returned when the actor may not perform the action.
var ErrForbidden = errors.New("forbidden")

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint
	Role   models.Role
	Email  string
	// TenantID is set when the user has a tenant record.
	TenantID *uint
}

// IsLandlord reports whether the actor is a landlord.
func (a Actor) IsLandlord() bool { return a.Role == models.RoleLandlord }

// IsTenant reports whether the actor is a tenant.
func (a Actor) IsTenant() bool { return a.Role == models.RoleTenant }

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Resource names a kind of domain object.
type Resource string

const (
	ResourceProperty    Resource = "property"
	ResourceUnit        Resource = "unit"
	ResourceLease       Resource = "lease"
	ResourcePayment     Resource = "payment"
	ResourceMaintenance Resource = "maintenance"
	ResourceTenant      Resource = "tenant"
	// ResourceDashboard covers the landlord dashboard views.
	ResourceDashboard Resource = "dashboard"
	// ResourcePortal covers the tenant dashboard and portal views.
	ResourcePortal Resource = "portal"
)

// Action names an operation on a resource.
type Action string

const (
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionPay    Action = "pay"
	ActionSync   Action = "sync"
	ActionUpload Action = "upload"
)

// Owner describes who a concrete resource belongs to.
type Owner struct {
	// LandlordID owns the property the resource hangs off.
	LandlordID uint
	// TenantIDs hold leases the resource hangs off.
	TenantIDs []uint
	// UserID is the account the resource represents, for tenant records.
	UserID uint
}

type grant int

const (
	grantNone grant = iota
	// grantOwn requires the resource to belong to the actor.
	grantOwn
	grantAny
)

type rules map[Resource]map[Action]grant

var policy = map[models.Role]rules{
	models.RoleLandlord: {
		ResourceProperty:    {ActionList: grantAny, ActionCreate: grantAny, ActionRead: grantOwn, ActionUpdate: grantOwn, ActionDelete: grantOwn},
		ResourceUnit:        {ActionList: grantAny, ActionCreate: grantOwn, ActionRead: grantOwn, ActionUpdate: grantOwn, ActionDelete: grantOwn},
		ResourceLease:       {ActionList: grantAny, ActionCreate: grantOwn, ActionRead: grantOwn, ActionUpdate: grantOwn, ActionDelete: grantOwn},
		ResourcePayment:     {ActionList: grantAny, ActionCreate: grantOwn, ActionRead: grantOwn, ActionUpdate: grantOwn, ActionDelete: grantOwn, ActionPay: grantOwn, ActionSync: grantAny},
		ResourceMaintenance: {ActionList: grantAny, ActionCreate: grantOwn, ActionRead: grantOwn, ActionUpdate: grantOwn, ActionDelete: grantOwn, ActionUpload: grantOwn},
		ResourceTenant:      {ActionList: grantAny, ActionRead: grantAny, ActionDelete: grantAny},
		ResourceDashboard:   {ActionRead: grantAny},
	},
	models.RoleTenant: {
		ResourceUnit:        {ActionList: grantAny, ActionRead: grantOwn},
		ResourceLease:       {ActionList: grantAny, ActionRead: grantOwn},
		ResourcePayment:     {ActionList: grantAny, ActionRead: grantOwn, ActionPay: grantOwn},
		ResourceMaintenance: {ActionList: grantAny, ActionCreate: grantOwn, ActionRead: grantOwn, ActionUpdate: grantOwn, ActionUpload: grantOwn},
		ResourceTenant:      {ActionRead: grantOwn},
		ResourcePortal:      {ActionRead: grantAny},
	},
	models.RoleAdmin: {
		ResourceProperty:    {ActionList: grantAny, ActionRead: grantAny, ActionUpdate: grantAny, ActionDelete: grantAny},
		ResourceUnit:        everything(),
		ResourceLease:       everything(),
		ResourcePayment:     everything(),
		ResourceMaintenance: everything(),
		ResourceTenant:      everything(),
		ResourceDashboard:   {ActionRead: grantAny},
	},
}

func everything() map[Action]grant {
	return map[Action]grant{
		ActionList: grantAny, ActionCreate: grantAny, ActionRead: grantAny, ActionUpdate: grantAny,
		ActionDelete: grantAny, ActionPay: grantAny, ActionSync: grantAny, ActionUpload: grantAny,
	}
}

// Can reports whether the actor's role grants the action on some instance of
// the resource, before ownership is known.
func Can(a Actor, res Resource, act Action) bool {
	return lookup(a, res, act) != grantNone
}

// Authorize checks the action against the capability table and, where the
// grant is limited to owned resources, against owner.
func Authorize(a Actor, res Resource, act Action, owner Owner) error {
	switch lookup(a, res, act) {
	case grantAny:
		return nil
	case grantOwn:
		if owns(a, res, owner) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s may not %s this %s", ErrForbidden, roleName(a), act, res)
}

func lookup(a Actor, res Resource, act Action) grant {
	byResource, ok := policy[a.Role]
	if !ok {
		return grantNone
	}
	return byResource[res][act]
}

func owns(a Actor, res Resource, owner Owner) bool {
	switch a.Role {
	case models.RoleLandlord:
		return owner.LandlordID != 0 && owner.LandlordID == a.UserID
	case models.RoleTenant:
		if res == ResourceTenant {
			return owner.UserID != 0 && owner.UserID == a.UserID
		}
		if a.TenantID == nil {
			return false
		}
		for _, id := range owner.TenantIDs {
			if id == *a.TenantID {
				return true
			}
		}
	}
	return false
}

func roleName(a Actor) string {
	if a.Role == "" {
		return "anonymous"
	}
	return string(a.Role)
}
