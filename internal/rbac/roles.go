// Package rbac models the closed role set and its capability grants.
package rbac

import (
	"context"
	"fmt"

	"github.com/minimart-pos/minimart-pos/internal/shared"
)

// Role is the closed enumeration of account roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleCashier Role = "cashier"
)

// ParseRole validates a raw role string against the enumeration.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleStaff, RoleCashier:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", shared.ErrValidation, raw)
	}
}

// Capability is an atomic operation class gated by authorization.
type Capability string

const (
	CapCreateSale      Capability = "sales:create"
	CapViewSalesStats  Capability = "sales:stats"
	CapManagePurchases Capability = "purchases:manage"
	CapAdjustInventory Capability = "inventory:adjust"
	CapViewInventory   Capability = "inventory:view"
	CapManageProducts  Capability = "catalog:products"
	CapManageCatalog   Capability = "catalog:manage"
	CapManageDiscounts Capability = "discounts:manage"
	CapManageUsers     Capability = "users:manage"
	CapViewReports     Capability = "reports:view"
)

var grants = map[Role]map[Capability]struct{}{
	RoleAdmin: {
		CapCreateSale: {}, CapViewSalesStats: {}, CapManagePurchases: {},
		CapAdjustInventory: {}, CapViewInventory: {}, CapManageProducts: {},
		CapManageCatalog: {}, CapManageDiscounts: {}, CapManageUsers: {},
		CapViewReports: {},
	},
	RoleStaff: {
		CapManagePurchases: {}, CapAdjustInventory: {}, CapViewInventory: {},
		CapManageProducts: {}, CapViewReports: {},
	},
	RoleCashier: {
		CapCreateSale: {}, CapViewSalesStats: {},
	},
}

// Can reports whether the role is granted the capability.
func (r Role) Can(c Capability) bool {
	caps, ok := grants[r]
	if !ok {
		return false
	}
	_, ok = caps[c]
	return ok
}

// Actor describes the authenticated user attached to a request.
type Actor struct {
	ID       int64
	Username string
	FullName string
	Email    string
	Role     Role
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
