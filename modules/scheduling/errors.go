package scheduling

import "errors"

var (
	// ErrProvisioningFailed wraps any DDL failure while creating a tenant
	// schema. A failed run may leave the schema partially created; there is
	// no automatic rollback.
	ErrProvisioningFailed = errors.New("tenant schema provisioning failed")

	// ErrDropFailed wraps a failed cascading schema drop.
	ErrDropFailed = errors.New("tenant schema drop failed")

	// ErrNoTenantContext is returned when a tenant-scoped operation runs on
	// a request whose context carries no tenant identity. This is a wiring
	// defect at the HTTP boundary, not a data-layer fault.
	ErrNoTenantContext = errors.New("no tenant in request context")

	// ErrMarkerOutOfRange is returned by Qualify when a $N marker references
	// a position outside the supplied parameter list.
	ErrMarkerOutOfRange = errors.New("parameter marker out of range")

	// ErrUnboundParameter is returned by Qualify when a supplied parameter
	// is never referenced by any marker.
	ErrUnboundParameter = errors.New("parameter not referenced by any marker")
)
