// Package tenant provides tenant identity for the multi-tenant request
// path: resolving which business account a request belongs to, loading it
// from the registry, and carrying it through the request context.
//
// The package is built around three pieces:
//
//  1. Resolvers extract a tenant identifier from an HTTP request. The
//     ClaimsResolver reads it from the authenticated caller's JWT; header
//     and subdomain resolvers exist for internal tooling and tests.
//  2. The Provider interface (implemented by Store over the global
//     tenants table) loads the full tenant record.
//  3. Middleware ties the two together and stores the tenant in the
//     request context, where handlers and the logger pick it up.
//
// Tenant data isolation itself lives in modules/scheduling, which maps the
// identity established here onto a per-tenant database schema.
package tenant
