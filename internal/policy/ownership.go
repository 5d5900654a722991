package policy

import (
	"context"

	"github.com/diewo77/go-sourcing/internal/auth"
	"github.com/diewo77/go-sourcing/internal/gate"
	"github.com/diewo77/go-sourcing/internal/models"
)

// Ownable is implemented by resources that belong to one seller.
type Ownable interface {
	OwnerEmail() string
}

// SellerOwnershipPolicy restricts sellers to their own resources. Admins and customers
// are not narrowed by it; their profile permissions already decide.
type SellerOwnershipPolicy struct{}

func NewSellerOwnershipPolicy() *SellerOwnershipPolicy { return &SellerOwnershipPolicy{} }

func (p *SellerOwnershipPolicy) Can(_ context.Context, user auth.Principal, _ gate.Action, resource any) bool {
	if user.Role != models.ActorSeller {
		return true
	}
	if resource == nil {
		return true
	}
	owned, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return owned.OwnerEmail() == user.Email
}

// BuyerOwned is implemented by resources that belong to one customer.
type BuyerOwned interface {
	BuyerEmail() string
}

// CustomerOwnershipPolicy restricts customers to resources they posted. A resource with
// no recorded buyer is closed to every customer.
type CustomerOwnershipPolicy struct{}

func NewCustomerOwnershipPolicy() *CustomerOwnershipPolicy { return &CustomerOwnershipPolicy{} }

func (p *CustomerOwnershipPolicy) Can(_ context.Context, user auth.Principal, _ gate.Action, resource any) bool {
	if user.Role != models.ActorCustomer || resource == nil {
		return true
	}
	owned, ok := resource.(BuyerOwned)
	if !ok {
		return false
	}
	buyer := owned.BuyerEmail()
	return buyer != "" && buyer == user.Email
}
