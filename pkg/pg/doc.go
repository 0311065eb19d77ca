// Package pg wires the application to PostgreSQL through the pgx/v5
// driver: pooled connections with startup retry, goose migrations for the
// shared global tables, a health-check closure, and error-classification
// helpers for the SQLSTATE codes the rest of the codebase cares about.
//
// The entire application shares one *pgxpool.Pool. Tenant isolation is
// achieved with schema-qualified SQL on top of that single pool (see
// modules/scheduling), never with per-tenant pools.
package pg
