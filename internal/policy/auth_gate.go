package policy

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/auth"
	"github.com/diewo77/go-sourcing/internal/gate"
	"github.com/diewo77/go-sourcing/internal/httpx"
	"github.com/diewo77/go-sourcing/internal/models"
)

// AuthGate is the central authorization point for HTTP handlers.
type AuthGate struct {
	Gate *gate.Gate[auth.Principal]
}

// NewAuthGate wires the role profiles and the ownership policies. Negotiations are
// narrowed to their seller and their buyer, quotations to their buyer.
func NewAuthGate() *AuthGate {
	ag := &AuthGate{Gate: gate.New[auth.Principal](RoleResolver())}
	ag.RegisterPolicy(ResourceNegotiation, gate.All[auth.Principal](
		NewSellerOwnershipPolicy(),
		NewCustomerOwnershipPolicy(),
	))
	ag.RegisterPolicy(ResourceQuotation, NewCustomerOwnershipPolicy())
	return ag
}

func (ag *AuthGate) RegisterPolicy(resourceType string, p gate.Policy[auth.Principal]) {
	ag.Gate.Register(resourceType, p)
}

// Authorize checks the caller in ctx. Denials are returned as apperr kinds so
// handlers can pass them to httpx.Error unchanged.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	p, _ := auth.PrincipalFromContext(ctx)
	err := ag.Gate.Authorize(ctx, p, action, resourceType, resource)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrUnauthorized):
		return &apperr.Error{Kind: apperr.KindUnauthorized, Message: "unauthorized"}
	default:
		return apperr.Forbidden("%s:%s denied", resourceType, action)
	}
}

func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	p, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, p, action, resourceType)
}

// RequirePermission returns middleware that checks the profile permission only.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
				httpx.JSONError(w, http.StatusUnauthorized, apperr.KindUnauthorized, "unauthorized", nil)
				return
			}
			if !ag.CanProfile(r.Context(), action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, apperr.KindForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows only principals holding the superadmin permission.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, apperr.KindUnauthorized, "unauthorized", nil)
				return
			}
			if p.Role != models.ActorAdmin {
				httpx.JSONError(w, http.StatusForbidden, apperr.KindForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
