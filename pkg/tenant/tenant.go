package tenant

import (
	"context"
	"time"
)

// Tenant is one business account in the registry. The ID is an opaque,
// identifier-safe string; in practice it is a UUID assigned at onboarding.
// The ID maps one-to-one onto a database schema and is never reused.
type Tenant struct {
	ID        string    `json:"id"`
	Subdomain string    `json:"subdomain"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads tenant information from the registry.
type Provider interface {
	// GetByIdentifier retrieves a tenant using any unique identifier,
	// either the tenant id or the subdomain. Returns ErrTenantNotFound
	// if no tenant matches.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
