package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool this module executes against. Keeping
// it as an interface lets tests substitute a recording fake; production
// always passes the one shared pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the per-tenant data accessor. It owns nothing persistent: it is
// a cheap, reconstructible view binding the shared pool to one schema name.
// Instances are stateless and safe for concurrent use; one that outlives
// its cache entry keeps working.
type Store struct {
	db       DB
	tenantID string
	schema   string
}

// NewStore creates an accessor bound to the tenant's schema. It performs
// no I/O; the schema must already be provisioned.
func NewStore(db DB, tenantID string) *Store {
	return &Store{
		db:       db,
		tenantID: tenantID,
		schema:   SchemaName(tenantID),
	}
}

// TenantID returns the tenant this store is bound to.
func (s *Store) TenantID() string { return s.tenantID }

// Schema returns the schema name this store qualifies its SQL with.
func (s *Store) Schema() string { return s.schema }

// table returns the schema-qualified identifier for t.
func (s *Store) table(t Table) string { return t.Qualified(s.schema) }

// binder numbers bound values so dynamically assembled clauses never
// hand-count positional markers.
type binder struct {
	args []any
}

// bind appends v and returns its marker, "$1" for the first value.
func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// bindJSON marshals v and binds it for a jsonb column. The jsonb columns
// are NOT NULL with empty-document defaults, and Postgres applies DEFAULT
// only when a column is omitted from the statement, so a nil payload binds
// the empty document of its kind rather than SQL NULL.
func (b *binder) bindJSON(v any) (string, error) {
	if doc, ok := emptyJSONDoc(v); ok {
		return b.bind(doc), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return b.bind(raw), nil
}

// emptyJSONDoc catches nil maps and slices, typed nils hiding inside an
// interface included, and returns the empty document matching their kind.
func emptyJSONDoc(v any) ([]byte, bool) {
	if v == nil {
		return []byte(`{}`), true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return []byte(`{}`), true
		}
	case reflect.Slice:
		if rv.IsNil() {
			return []byte(`[]`), true
		}
	}
	return nil, false
}

// noRows maps pgx's no-rows error to the (nil, nil) "not found" convention
// used by every by-id lookup.
func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// unmarshalJSON decodes a jsonb column into out, treating NULL as absent.
func unmarshalJSON(raw []byte, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
