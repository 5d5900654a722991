package gate

import (
	"context"
	"slices"
)

// Profile is a named set of permissions.
type Profile interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// ProfileResolver maps a subject to its profile. A nil profile means no access.
type ProfileResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Profile, error)
}

// StaticProfile is an in-memory profile.
type StaticProfile struct {
	name        string
	permissions map[Permission]bool
}

func NewStaticProfile(name string, permissions ...Permission) *StaticProfile {
	p := &StaticProfile{name: name, permissions: make(map[Permission]bool, len(permissions))}
	for _, perm := range permissions {
		p.permissions[perm] = true
	}
	return p
}

func (p *StaticProfile) Name() string { return p.name }

// Permissions returns the granted permissions, sorted.
func (p *StaticProfile) Permissions() []Permission {
	perms := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		perms = append(perms, perm)
	}
	slices.Sort(perms)
	return perms
}

func (p *StaticProfile) HasPermission(requested Permission) bool {
	for perm := range p.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// KeyResolver resolves subjects by a derived key, typically their role.
type KeyResolver[U any, K comparable] struct {
	key      func(U) K
	profiles map[K]Profile
}

func NewKeyResolver[U any, K comparable](key func(U) K) *KeyResolver[U, K] {
	return &KeyResolver[U, K]{key: key, profiles: make(map[K]Profile)}
}

// Set assigns a profile to every subject whose key is k.
func (r *KeyResolver[U, K]) Set(k K, profile Profile) {
	r.profiles[k] = profile
}

func (r *KeyResolver[U, K]) Resolve(_ context.Context, user U) (Profile, error) {
	return r.profiles[r.key(user)], nil
}
