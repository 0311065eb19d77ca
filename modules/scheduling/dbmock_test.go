package scheduling_test

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB records every statement it receives and serves queued result
// rows, letting tests assert the generated SQL and argument order without
// a live database.
type fakeDB struct {
	mu     sync.Mutex
	calls  []dbCall
	queued [][]any
	err    error
}

type dbCall struct {
	sql  string
	args []any
}

func (f *fakeDB) queue(rows ...[]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, rows...)
}

func (f *fakeDB) lastCall() dbCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// setClause extracts the fragment between SET and WHERE so update tests
// can assert untouched columns without matching the RETURNING list, which
// always names every column.
func setClause(sql string) string {
	start := strings.Index(sql, "SET ")
	end := strings.Index(sql, " WHERE")
	if start < 0 || end < 0 || end < start {
		return sql
	}
	return sql[start:end]
}

func (f *fakeDB) record(sql string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dbCall{sql: sql, args: args})
}

func (f *fakeDB) pop() ([]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queued) == 0 {
		return nil, false
	}
	row := f.queued[0]
	f.queued = f.queued[1:]
	return row, true
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.record(sql, args)
	return pgconn.NewCommandTag("OK 1"), f.err
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.record(sql, args)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	rows := f.queued
	f.queued = nil
	f.mu.Unlock()
	return &fakeRows{rows: rows}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.record(sql, args)
	if f.err != nil {
		return &fakeRow{err: f.err}
	}
	vals, ok := f.pop()
	if !ok {
		return &fakeRow{err: pgx.ErrNoRows}
	}
	return &fakeRow{vals: vals}
}

func (f *fakeDB) Begin(_ context.Context) (pgx.Tx, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &fakeTx{db: f}, nil
}

// fakeTx satisfies pgx.Tx for the statements the module actually issues;
// anything else panics via the embedded nil interface.
type fakeTx struct {
	pgx.Tx
	db         *fakeDB
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeRow struct {
	vals []any
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(dest, r.vals)
}

type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(dest, r.rows[r.idx-1])
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.idx-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

// scanInto copies queued values into scan destinations, converting where
// Go allows it (string into named string types, etc.). A nil source leaves
// the destination at its zero value, matching a NULL column.
func scanInto(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(vals))
	}
	for i, v := range vals {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.SetZero()
			continue
		}
		src := reflect.ValueOf(v)
		switch {
		case src.Type().AssignableTo(target.Type()):
			target.Set(src)
		case src.Type().ConvertibleTo(target.Type()):
			target.Set(src.Convert(target.Type()))
		case target.Kind() == reflect.Pointer && src.Type().AssignableTo(target.Type().Elem()):
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(src)
			target.Set(p)
		default:
			return fmt.Errorf("scan: cannot assign %T to %s", v, target.Type())
		}
	}
	return nil
}
