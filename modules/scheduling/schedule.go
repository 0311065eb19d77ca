package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const scheduleWeekCols = `id, week_start, status, "rows", "columns", published_at, created_at, updated_at`

// NewScheduleWeek are the caller-supplied fields for creating a draft week.
type NewScheduleWeek struct {
	WeekStart time.Time        `json:"week_start"`
	Rows      []map[string]any `json:"rows,omitempty"`
	Columns   []map[string]any `json:"columns,omitempty"`
}

// ScheduleWeekUpdate is a partial update. Setting Status to
// SchedulePublished stamps published_at.
type ScheduleWeekUpdate struct {
	Status  Field[ScheduleStatus]   `json:"status"`
	Rows    Field[[]map[string]any] `json:"rows"`
	Columns Field[[]map[string]any] `json:"columns"`
}

// CreateScheduleWeek inserts a new draft week.
func (s *Store) CreateScheduleWeek(ctx context.Context, p NewScheduleWeek) (*ScheduleWeek, error) {
	var b binder
	rowsArg, err := b.bindJSON(p.Rows)
	if err != nil {
		return nil, err
	}
	colsArg, err := b.bindJSON(p.Columns)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (id, week_start, "rows", "columns")
		VALUES (%s, %s, %s, %s)
		RETURNING %s`,
		s.table(TableScheduleWeeks),
		b.bind(uuid.New()), b.bind(p.WeekStart), rowsArg, colsArg,
		scheduleWeekCols)

	return scanScheduleWeek(s.db.QueryRow(ctx, sql, b.args...))
}

// GetScheduleWeek returns the week or (nil, nil) when absent.
func (s *Store) GetScheduleWeek(ctx context.Context, id uuid.UUID) (*ScheduleWeek, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, scheduleWeekCols, s.table(TableScheduleWeeks))
	return s.getScheduleWeek(ctx, sql, id)
}

// GetScheduleWeekByStart returns the week starting on the given date, or
// (nil, nil) when none exists.
func (s *Store) GetScheduleWeekByStart(ctx context.Context, weekStart time.Time) (*ScheduleWeek, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE week_start = $1`, scheduleWeekCols, s.table(TableScheduleWeeks))
	return s.getScheduleWeek(ctx, sql, weekStart)
}

func (s *Store) getScheduleWeek(ctx context.Context, sql string, arg any) (*ScheduleWeek, error) {
	w, err := scanScheduleWeek(s.db.QueryRow(ctx, sql, arg))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

// ListScheduleWeeks returns weeks newest first.
func (s *Store) ListScheduleWeeks(ctx context.Context) ([]ScheduleWeek, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s ORDER BY week_start DESC`,
		scheduleWeekCols, s.table(TableScheduleWeeks))

	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScheduleWeek
	for rows.Next() {
		w, err := scanScheduleWeek(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// UpdateScheduleWeek applies a partial update and returns the resulting
// row, or (nil, nil) when the id does not exist.
func (s *Store) UpdateScheduleWeek(ctx context.Context, id uuid.UUID, p ScheduleWeekUpdate) (*ScheduleWeek, error) {
	var b binder
	var sets []string
	if p.Status.IsSet() {
		sets = append(sets, "status = "+b.bind(p.Status.arg()))
		if v, ok := p.Status.Value(); ok && v == SchedulePublished {
			sets = append(sets, "published_at = now()")
		}
	}
	if p.Rows.IsSet() {
		rows, _ := p.Rows.Value()
		arg, err := b.bindJSON(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, `"rows" = `+arg)
	}
	if p.Columns.IsSet() {
		cols, _ := p.Columns.Value()
		arg, err := b.bindJSON(cols)
		if err != nil {
			return nil, err
		}
		sets = append(sets, `"columns" = `+arg)
	}
	if len(sets) == 0 {
		return s.GetScheduleWeek(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	sql := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s RETURNING %s`,
		s.table(TableScheduleWeeks), strings.Join(sets, ", "), b.bind(id), scheduleWeekCols)

	w, err := scanScheduleWeek(s.db.QueryRow(ctx, sql, b.args...))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

// DeleteScheduleWeek removes the week and, via cascade, its assignments.
func (s *Store) DeleteScheduleWeek(ctx context.Context, id uuid.UUID) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table(TableScheduleWeeks))
	_, err := s.db.Exec(ctx, sql, id)
	return err
}

func scanScheduleWeek(row pgx.Row) (*ScheduleWeek, error) {
	var (
		w        ScheduleWeek
		rowsJSON []byte
		colsJSON []byte
	)
	if err := row.Scan(&w.ID, &w.WeekStart, &w.Status, &rowsJSON, &colsJSON, &w.PublishedAt, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(rowsJSON, &w.Rows); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(colsJSON, &w.Columns); err != nil {
		return nil, err
	}
	return &w, nil
}

const shiftAssignmentCols = `id, week_id, user_id, shift_date, position, role, start_time, end_time, created_at, updated_at`

// NewShiftAssignment are the caller-supplied fields for one shift placement.
type NewShiftAssignment struct {
	WeekID    uuid.UUID `json:"week_id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Position  int       `json:"position"`
	Role      *string   `json:"role,omitempty"`
	StartTime *string   `json:"start_time,omitempty"`
	EndTime   *string   `json:"end_time,omitempty"`
}

// ShiftAssignmentUpdate is a partial update.
type ShiftAssignmentUpdate struct {
	UserID    Field[string]    `json:"user_id"`
	Date      Field[time.Time] `json:"date"`
	Position  Field[int]       `json:"position"`
	Role      Field[string]    `json:"role"`
	StartTime Field[string]    `json:"start_time"`
	EndTime   Field[string]    `json:"end_time"`
}

// CreateShiftAssignment places an employee on a shift.
func (s *Store) CreateShiftAssignment(ctx context.Context, p NewShiftAssignment) (*ShiftAssignment, error) {
	sql := fmt.Sprintf(`
		INSERT INTO %s (id, week_id, user_id, shift_date, position, role, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`,
		s.table(TableShiftAssignments), shiftAssignmentCols)

	row := s.db.QueryRow(ctx, sql, uuid.New(), p.WeekID, p.UserID, p.Date, p.Position, p.Role, p.StartTime, p.EndTime)
	return scanShiftAssignment(row)
}

// GetShiftAssignment returns the assignment or (nil, nil) when absent.
func (s *Store) GetShiftAssignment(ctx context.Context, id uuid.UUID) (*ShiftAssignment, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, shiftAssignmentCols, s.table(TableShiftAssignments))

	a, err := scanShiftAssignment(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// ListShiftAssignments returns a week's assignments in display order:
// date ascending, then position ascending.
func (s *Store) ListShiftAssignments(ctx context.Context, weekID uuid.UUID) ([]ShiftAssignment, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE week_id = $1 ORDER BY shift_date ASC, position ASC`,
		shiftAssignmentCols, s.table(TableShiftAssignments))

	rows, err := s.db.Query(ctx, sql, weekID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShiftAssignment
	for rows.Next() {
		a, err := scanShiftAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateShiftAssignment applies a partial update and returns the resulting
// row, or (nil, nil) when the id does not exist.
func (s *Store) UpdateShiftAssignment(ctx context.Context, id uuid.UUID, p ShiftAssignmentUpdate) (*ShiftAssignment, error) {
	var b binder
	var sets []string
	if p.UserID.IsSet() {
		sets = append(sets, "user_id = "+b.bind(p.UserID.arg()))
	}
	if p.Date.IsSet() {
		sets = append(sets, "shift_date = "+b.bind(p.Date.arg()))
	}
	if p.Position.IsSet() {
		sets = append(sets, "position = "+b.bind(p.Position.arg()))
	}
	if p.Role.IsSet() {
		sets = append(sets, "role = "+b.bind(p.Role.arg()))
	}
	if p.StartTime.IsSet() {
		sets = append(sets, "start_time = "+b.bind(p.StartTime.arg()))
	}
	if p.EndTime.IsSet() {
		sets = append(sets, "end_time = "+b.bind(p.EndTime.arg()))
	}
	if len(sets) == 0 {
		return s.GetShiftAssignment(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	sql := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s RETURNING %s`,
		s.table(TableShiftAssignments), strings.Join(sets, ", "), b.bind(id), shiftAssignmentCols)

	a, err := scanShiftAssignment(s.db.QueryRow(ctx, sql, b.args...))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// DeleteShiftAssignment removes one assignment.
func (s *Store) DeleteShiftAssignment(ctx context.Context, id uuid.UUID) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table(TableShiftAssignments))
	_, err := s.db.Exec(ctx, sql, id)
	return err
}

func scanShiftAssignment(row pgx.Row) (*ShiftAssignment, error) {
	var a ShiftAssignment
	if err := row.Scan(&a.ID, &a.WeekID, &a.UserID, &a.Date, &a.Position, &a.Role, &a.StartTime, &a.EndTime, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
