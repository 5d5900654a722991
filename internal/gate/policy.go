package gate

import "context"

// Policy adds resource-level rules on top of profile permissions.
// For list and create, resource may be nil.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}

// All allows an action only when every policy allows it.
func All[U any](policies ...Policy[U]) Policy[U] {
	return PolicyFunc[U](func(ctx context.Context, user U, action Action, resource any) bool {
		for _, p := range policies {
			if !p.Can(ctx, user, action, resource) {
				return false
			}
		}
		return true
	})
}
