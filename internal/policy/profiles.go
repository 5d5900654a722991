package policy

import (
	"github.com/diewo77/go-sourcing/internal/auth"
	"github.com/diewo77/go-sourcing/internal/gate"
	"github.com/diewo77/go-sourcing/internal/models"
)

// Resource types checked by the gate.
const (
	ResourceNegotiation = "negotiation"
	ResourceQuotation   = "quotation"
	ResourceFavorites   = "favorites"
	ResourceCategory    = "category"
)

// RoleResolver returns the fixed profile of each marketplace role.
func RoleResolver() *gate.KeyResolver[auth.Principal, models.Actor] {
	r := gate.NewKeyResolver[auth.Principal, models.Actor](func(p auth.Principal) models.Actor { return p.Role })
	r.Set(models.ActorAdmin, gate.NewStaticProfile("admin", gate.PermissionSuperAdmin))
	r.Set(models.ActorSeller, gate.NewStaticProfile("seller",
		gate.NewPermission(ResourceNegotiation, gate.ActionView),
		gate.NewPermission(ResourceNegotiation, gate.ActionOffer),
		gate.NewPermission(ResourceNegotiation, gate.ActionClose),
		gate.NewPermission(ResourceQuotation, gate.ActionView),
		gate.NewPermission(ResourceQuotation, gate.ActionQuote),
		gate.NewPermission(ResourceCategory, gate.ActionList),
		gate.NewPermission(ResourceCategory, gate.ActionView),
	))
	r.Set(models.ActorCustomer, gate.NewStaticProfile("customer",
		gate.NewPermission(ResourceNegotiation, gate.ActionView),
		gate.NewPermission(ResourceNegotiation, gate.ActionOffer),
		gate.NewPermission(ResourceNegotiation, gate.ActionClose),
		gate.NewPermission(ResourceQuotation, gate.ActionCreate),
		gate.NewPermission(ResourceQuotation, gate.ActionView),
		gate.NewPermission(ResourceFavorites, gate.WildcardAll),
		gate.NewPermission(ResourceCategory, gate.ActionList),
		gate.NewPermission(ResourceCategory, gate.ActionView),
	))
	return r
}
