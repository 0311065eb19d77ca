package scheduling

import (
	"fmt"
	"regexp"
	"strings"
)

// SchemaPrefix is prepended to every sanitized tenant id to form the
// tenant's schema name.
const SchemaPrefix = "business_"

// SchemaName maps a tenant id to its schema name. Pure and deterministic:
// the id is lower-cased and every rune outside [a-z0-9_] becomes an
// underscore, so "biz-123" maps to "business_biz_123". Over the UUID
// identifier space this mapping is injective. An empty id is a caller
// contract violation, not an error produced here.
func SchemaName(tenantID string) string {
	var b strings.Builder
	b.Grow(len(SchemaPrefix) + len(tenantID))
	b.WriteString(SchemaPrefix)
	for _, r := range strings.ToLower(tenantID) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Table names one tenant-local entity table. The typed constants below are
// the exhaustive allow-list: only these ever reach qualified SQL, so table
// identifiers are never attacker-influenced.
type Table string

const (
	TableAvailabilityRequests Table = "availability_requests"
	TableAvailabilityEntries  Table = "availability_entries"
	TableScheduleWeeks        Table = "schedule_weeks"
	TableShiftAssignments     Table = "shift_assignments"
	TableScheduleTemplates    Table = "schedule_templates"
	TableTemplateAssignments  Table = "template_assignments"
	TableCalendarIntegrations Table = "calendar_integrations"
)

// Tables returns the full allow-list in a stable order.
func Tables() []Table {
	return []Table{
		TableAvailabilityRequests,
		TableAvailabilityEntries,
		TableScheduleWeeks,
		TableShiftAssignments,
		TableScheduleTemplates,
		TableTemplateAssignments,
		TableCalendarIntegrations,
	}
}

// Qualified returns the schema-qualified, quoted identifier for the table.
// The schema argument must come from SchemaName.
func (t Table) Qualified(schema string) string {
	return `"` + schema + `"."` + string(t) + `"`
}

// Statement is a schema-qualified SQL statement with its bound parameters,
// ready for direct execution by the driver. Parameter values only ever
// travel as bound arguments, never interpolated into the SQL text.
type Statement struct {
	SQL  string
	Args []any
}

var markerPattern = regexp.MustCompile(`\$(\d+)`)

// Qualify rewrites a generic SQL template into a tenant-scoped statement.
// It is the generic entry point for ad-hoc statements; application code
// should prefer the typed Store accessors, which qualify through
// Table.Qualified directly. Quoted table literals from the allow-list are
// rewritten to "<schema>"."<table>"; unrecognized quoted identifiers are
// left untouched.
// Every $N marker must reference a valid position in params and every
// parameter must be referenced by at least one marker, otherwise Qualify
// fails instead of producing a silently truncated statement.
func Qualify(schema, template string, params []any) (Statement, error) {
	sql := template
	for _, tbl := range Tables() {
		sql = strings.ReplaceAll(sql, `"`+string(tbl)+`"`, tbl.Qualified(schema))
	}

	used := make([]bool, len(params))
	for _, m := range markerPattern.FindAllStringSubmatch(sql, -1) {
		var idx int
		if _, err := fmt.Sscanf(m[1], "%d", &idx); err != nil {
			return Statement{}, fmt.Errorf("%w: $%s", ErrMarkerOutOfRange, m[1])
		}
		if idx < 1 || idx > len(params) {
			return Statement{}, fmt.Errorf("%w: $%d with %d params", ErrMarkerOutOfRange, idx, len(params))
		}
		used[idx-1] = true
	}
	for i, u := range used {
		if !u {
			return Statement{}, fmt.Errorf("%w: param %d", ErrUnboundParameter, i+1)
		}
	}

	return Statement{SQL: sql, Args: params}, nil
}
