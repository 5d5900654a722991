// Package gate is a small authorization registry: profiles grant "resource:action"
// permissions and per-resource policies narrow them for a loaded resource.
// It has no dependency on domain models.
package gate

import "context"

// Gate combines profile permissions with resource policies.
//  1. The subject must be non-zero.
//  2. Its profile must grant resource:action.
//  3. If a resource is given and a policy is registered for its type, the policy must allow it.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver, policies: make(map[string]Policy[U])}
}

// Register sets the policy for resourceType, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized for a zero subject and ErrForbidden when a
// permission or policy denies the action.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	if !g.CanProfile(ctx, user, action, resourceType) {
		return ErrForbidden
	}
	if resource != nil {
		if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, user, action, resource) {
			return ErrForbidden
		}
	}
	return nil
}

// CanProfile checks only the profile permission, before a resource is loaded.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}
