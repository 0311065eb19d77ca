// Package scheduling implements the tenant data-isolation layer of the
// scheduling product. Every business account owns a dedicated PostgreSQL
// schema inside the shared database; this package provisions those schemas,
// rewrites SQL against the right schema, exposes typed per-tenant data
// access, and memoizes one accessor handle per tenant with idle eviction.
//
// The pieces, bottom up:
//
//   - SchemaName maps a tenant id to its schema name, deterministically.
//   - Provisioner issues the per-tenant DDL (schema, enum types, tables).
//   - Qualify and the Table allow-list rewrite generic SQL templates into
//     schema-qualified statements with validated parameter bindings.
//   - Store is the per-tenant accessor: typed CRUD and upserts for the
//     scheduling entities, all executed against the tenant's schema over
//     the single shared connection pool.
//   - HandleCache memoizes one Store per tenant and sweeps idle entries.
//   - Middleware attaches the cached Store to tenant-scoped requests.
//
// Stores are stateless wrappers over the shared pool: evicting one from the
// cache never invalidates instances already handed to in-flight requests.
package scheduling
