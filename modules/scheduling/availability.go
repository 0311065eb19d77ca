package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const availabilityRequestCols = `id, title, week_start, status, deadline, created_at, updated_at`

// NewAvailabilityRequest are the caller-supplied fields for creating an
// availability request.
type NewAvailabilityRequest struct {
	Title     string     `json:"title"`
	WeekStart time.Time  `json:"week_start"`
	Deadline  *time.Time `json:"deadline,omitempty"`
}

// AvailabilityRequestUpdate is a partial update: absent fields stay
// unmodified, Null clears a nullable column.
type AvailabilityRequestUpdate struct {
	Title    Field[string]        `json:"title"`
	Status   Field[RequestStatus] `json:"status"`
	Deadline Field[time.Time]     `json:"deadline"`
}

// AvailabilityRequestFilter narrows ListAvailabilityRequests.
type AvailabilityRequestFilter struct {
	Status *RequestStatus
}

// CreateAvailabilityRequest inserts a new open request.
func (s *Store) CreateAvailabilityRequest(ctx context.Context, p NewAvailabilityRequest) (*AvailabilityRequest, error) {
	sql := fmt.Sprintf(`
		INSERT INTO %s (id, title, week_start, deadline)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`,
		s.table(TableAvailabilityRequests), availabilityRequestCols)

	row := s.db.QueryRow(ctx, sql, uuid.New(), p.Title, p.WeekStart, p.Deadline)
	return scanAvailabilityRequest(row)
}

// GetAvailabilityRequest returns the request or (nil, nil) when absent.
func (s *Store) GetAvailabilityRequest(ctx context.Context, id uuid.UUID) (*AvailabilityRequest, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`,
		availabilityRequestCols, s.table(TableAvailabilityRequests))

	req, err := scanAvailabilityRequest(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// ListAvailabilityRequests returns requests newest first.
func (s *Store) ListAvailabilityRequests(ctx context.Context, f AvailabilityRequestFilter) ([]AvailabilityRequest, error) {
	var b binder
	sql := fmt.Sprintf(`SELECT %s FROM %s`, availabilityRequestCols, s.table(TableAvailabilityRequests))
	if f.Status != nil {
		sql += ` WHERE status = ` + b.bind(*f.Status)
	}
	sql += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AvailabilityRequest
	for rows.Next() {
		req, err := scanAvailabilityRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// UpdateAvailabilityRequest applies a partial update and returns the
// resulting row, or (nil, nil) when the id does not exist.
func (s *Store) UpdateAvailabilityRequest(ctx context.Context, id uuid.UUID, p AvailabilityRequestUpdate) (*AvailabilityRequest, error) {
	var b binder
	var sets []string
	if p.Title.IsSet() {
		sets = append(sets, "title = "+b.bind(p.Title.arg()))
	}
	if p.Status.IsSet() {
		sets = append(sets, "status = "+b.bind(p.Status.arg()))
	}
	if p.Deadline.IsSet() {
		sets = append(sets, "deadline = "+b.bind(p.Deadline.arg()))
	}
	if len(sets) == 0 {
		return s.GetAvailabilityRequest(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	sql := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s RETURNING %s`,
		s.table(TableAvailabilityRequests), strings.Join(sets, ", "), b.bind(id), availabilityRequestCols)

	req, err := scanAvailabilityRequest(s.db.QueryRow(ctx, sql, b.args...))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// DeleteAvailabilityRequest removes the request and, via cascade, its entries.
func (s *Store) DeleteAvailabilityRequest(ctx context.Context, id uuid.UUID) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table(TableAvailabilityRequests))
	_, err := s.db.Exec(ctx, sql, id)
	return err
}

func scanAvailabilityRequest(row pgx.Row) (*AvailabilityRequest, error) {
	var r AvailabilityRequest
	if err := row.Scan(&r.ID, &r.Title, &r.WeekStart, &r.Status, &r.Deadline, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

const availabilityEntryCols = `id, request_id, user_id, entry_date, blocks, note, created_at, updated_at`

// AvailabilityEntrySubmission is an employee's availability for one date.
// Submissions are upserted: resubmitting for the same (request, user, date)
// replaces the previous blocks and note atomically.
type AvailabilityEntrySubmission struct {
	RequestID uuid.UUID       `json:"request_id"`
	UserID    string          `json:"user_id"`
	Date      time.Time       `json:"date"`
	Blocks    map[string]bool `json:"blocks"`
	Note      *string         `json:"note,omitempty"`
}

// AvailabilityEntryFilter narrows ListAvailabilityEntries.
type AvailabilityEntryFilter struct {
	RequestID *uuid.UUID
	UserID    *string
	From      *time.Time
	To        *time.Time
}

// UpsertAvailabilityEntry inserts or replaces the entry for the submission's
// natural key in a single statement, so concurrent resubmissions for the
// same date cannot race into duplicate rows.
func (s *Store) UpsertAvailabilityEntry(ctx context.Context, p AvailabilityEntrySubmission) (*AvailabilityEntry, error) {
	var b binder
	blocks, err := b.bindJSON(p.Blocks)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (id, request_id, user_id, entry_date, blocks, note)
		VALUES (%s, %s, %s, %s, %s, %s)
		ON CONFLICT (request_id, user_id, entry_date)
		DO UPDATE SET blocks = EXCLUDED.blocks, note = EXCLUDED.note, updated_at = now()
		RETURNING %s`,
		s.table(TableAvailabilityEntries),
		b.bind(uuid.New()), b.bind(p.RequestID), b.bind(p.UserID), b.bind(p.Date), blocks, b.bind(p.Note),
		availabilityEntryCols)

	return scanAvailabilityEntry(s.db.QueryRow(ctx, sql, b.args...))
}

// GetAvailabilityEntry returns the entry or (nil, nil) when absent.
func (s *Store) GetAvailabilityEntry(ctx context.Context, id uuid.UUID) (*AvailabilityEntry, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`,
		availabilityEntryCols, s.table(TableAvailabilityEntries))

	e, err := scanAvailabilityEntry(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// ListAvailabilityEntries returns entries in date order.
func (s *Store) ListAvailabilityEntries(ctx context.Context, f AvailabilityEntryFilter) ([]AvailabilityEntry, error) {
	var b binder
	var where []string
	if f.RequestID != nil {
		where = append(where, "request_id = "+b.bind(*f.RequestID))
	}
	if f.UserID != nil {
		where = append(where, "user_id = "+b.bind(*f.UserID))
	}
	if f.From != nil {
		where = append(where, "entry_date >= "+b.bind(*f.From))
	}
	if f.To != nil {
		where = append(where, "entry_date <= "+b.bind(*f.To))
	}

	sql := fmt.Sprintf(`SELECT %s FROM %s`, availabilityEntryCols, s.table(TableAvailabilityEntries))
	if len(where) > 0 {
		sql += ` WHERE ` + strings.Join(where, " AND ")
	}
	sql += ` ORDER BY entry_date ASC, user_id ASC`

	rows, err := s.db.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AvailabilityEntry
	for rows.Next() {
		e, err := scanAvailabilityEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// DeleteAvailabilityEntry removes one entry.
func (s *Store) DeleteAvailabilityEntry(ctx context.Context, id uuid.UUID) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table(TableAvailabilityEntries))
	_, err := s.db.Exec(ctx, sql, id)
	return err
}

func scanAvailabilityEntry(row pgx.Row) (*AvailabilityEntry, error) {
	var (
		e      AvailabilityEntry
		blocks []byte
	)
	if err := row.Scan(&e.ID, &e.RequestID, &e.UserID, &e.Date, &blocks, &e.Note, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(blocks, &e.Blocks); err != nil {
		return nil, err
	}
	return &e, nil
}
