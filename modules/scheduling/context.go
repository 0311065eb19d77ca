package scheduling

import "context"

// storeKey is a private type to prevent collisions with other context keys.
type storeKey struct{}

// WithStore adds a tenant store to the context.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// StoreFromContext retrieves the tenant store from the context.
// Returns nil, false if no store is present.
func StoreFromContext(ctx context.Context) (*Store, bool) {
	s, ok := ctx.Value(storeKey{}).(*Store)
	return s, ok
}

// MustStoreFromContext retrieves the tenant store and panics if none is
// present. Use only in handlers mounted behind Middleware.
func MustStoreFromContext(ctx context.Context) *Store {
	s, ok := StoreFromContext(ctx)
	if !ok || s == nil {
		panic("scheduling: no tenant store in context")
	}
	return s
}
