package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const scheduleTemplateCols = `id, name, "rows", "columns", created_at, updated_at`

// NewScheduleTemplate are the caller-supplied fields for a template.
type NewScheduleTemplate struct {
	Name    string           `json:"name"`
	Rows    []map[string]any `json:"rows,omitempty"`
	Columns []map[string]any `json:"columns,omitempty"`
}

// ScheduleTemplateUpdate is a partial update.
type ScheduleTemplateUpdate struct {
	Name    Field[string]           `json:"name"`
	Rows    Field[[]map[string]any] `json:"rows"`
	Columns Field[[]map[string]any] `json:"columns"`
}

// CreateScheduleTemplate inserts a reusable week template.
func (s *Store) CreateScheduleTemplate(ctx context.Context, p NewScheduleTemplate) (*ScheduleTemplate, error) {
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
		INSERT INTO %s (id, name, "rows", "columns")
		VALUES (%s, %s, %s, %s)
		RETURNING %s`,
		s.table(TableScheduleTemplates),
		b.bind(uuid.New()), b.bind(p.Name), rowsArg, colsArg,
		scheduleTemplateCols)

	return scanScheduleTemplate(s.db.QueryRow(ctx, sql, b.args...))
}

// GetScheduleTemplate returns the template or (nil, nil) when absent.
func (s *Store) GetScheduleTemplate(ctx context.Context, id uuid.UUID) (*ScheduleTemplate, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, scheduleTemplateCols, s.table(TableScheduleTemplates))

	tpl, err := scanScheduleTemplate(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return tpl, nil
}

// ListScheduleTemplates returns templates newest first.
func (s *Store) ListScheduleTemplates(ctx context.Context) ([]ScheduleTemplate, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`,
		scheduleTemplateCols, s.table(TableScheduleTemplates))

	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScheduleTemplate
	for rows.Next() {
		tpl, err := scanScheduleTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tpl)
	}
	return out, rows.Err()
}

// UpdateScheduleTemplate applies a partial update and returns the resulting
// row, or (nil, nil) when the id does not exist.
func (s *Store) UpdateScheduleTemplate(ctx context.Context, id uuid.UUID, p ScheduleTemplateUpdate) (*ScheduleTemplate, error) {
	var b binder
	var sets []string
	if p.Name.IsSet() {
		sets = append(sets, "name = "+b.bind(p.Name.arg()))
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
		return s.GetScheduleTemplate(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	sql := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s RETURNING %s`,
		s.table(TableScheduleTemplates), strings.Join(sets, ", "), b.bind(id), scheduleTemplateCols)

	tpl, err := scanScheduleTemplate(s.db.QueryRow(ctx, sql, b.args...))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return tpl, nil
}

// DeleteScheduleTemplate removes the template and, via cascade, its
// employee assignments.
func (s *Store) DeleteScheduleTemplate(ctx context.Context, id uuid.UUID) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table(TableScheduleTemplates))
	_, err := s.db.Exec(ctx, sql, id)
	return err
}

func scanScheduleTemplate(row pgx.Row) (*ScheduleTemplate, error) {
	var (
		tpl      ScheduleTemplate
		rowsJSON []byte
		colsJSON []byte
	)
	if err := row.Scan(&tpl.ID, &tpl.Name, &rowsJSON, &colsJSON, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(rowsJSON, &tpl.Rows); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(colsJSON, &tpl.Columns); err != nil {
		return nil, err
	}
	return &tpl, nil
}

const templateAssignmentCols = `id, template_id, user_id, position, slots, created_at`

// NewTemplateAssignment pre-assigns an employee to a template slot.
type NewTemplateAssignment struct {
	UserID   string         `json:"user_id"`
	Position int            `json:"position"`
	Slots    map[string]any `json:"slots,omitempty"`
}

// CreateTemplateAssignment adds a single employee assignment to a template.
func (s *Store) CreateTemplateAssignment(ctx context.Context, templateID uuid.UUID, p NewTemplateAssignment) (*TemplateAssignment, error) {
	var b binder
	slots, err := b.bindJSON(p.Slots)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (id, template_id, user_id, position, slots)
		VALUES (%s, %s, %s, %s, %s)
		RETURNING %s`,
		s.table(TableTemplateAssignments),
		b.bind(uuid.New()), b.bind(templateID), b.bind(p.UserID), b.bind(p.Position), slots,
		templateAssignmentCols)

	return scanTemplateAssignment(s.db.QueryRow(ctx, sql, b.args...))
}

// ListTemplateAssignments returns a template's assignments in position order.
func (s *Store) ListTemplateAssignments(ctx context.Context, templateID uuid.UUID) ([]TemplateAssignment, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE template_id = $1 ORDER BY position ASC, user_id ASC`,
		templateAssignmentCols, s.table(TableTemplateAssignments))

	rows, err := s.db.Query(ctx, sql, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TemplateAssignment
	for rows.Next() {
		a, err := scanTemplateAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// ReplaceTemplateAssignments swaps a template's entire assignment set in
// one transaction. The product UI saves assignments wholesale, so partial
// application would leave the template in a mixed state.
func (s *Store) ReplaceTemplateAssignments(ctx context.Context, templateID uuid.UUID, assignments []NewTemplateAssignment) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	del := fmt.Sprintf(`DELETE FROM %s WHERE template_id = $1`, s.table(TableTemplateAssignments))
	if _, err := tx.Exec(ctx, del, templateID); err != nil {
		return err
	}

	ins := fmt.Sprintf(`
		INSERT INTO %s (id, template_id, user_id, position, slots)
		VALUES ($1, $2, $3, $4, $5)`,
		s.table(TableTemplateAssignments))

	for _, a := range assignments {
		// slots is NOT NULL; absent slots get the empty document.
		slots := []byte(`{}`)
		if a.Slots != nil {
			raw, err := json.Marshal(a.Slots)
			if err != nil {
				return err
			}
			slots = raw
		}
		if _, err := tx.Exec(ctx, ins, uuid.New(), templateID, a.UserID, a.Position, slots); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// DeleteTemplateAssignment removes one assignment.
func (s *Store) DeleteTemplateAssignment(ctx context.Context, id uuid.UUID) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table(TableTemplateAssignments))
	_, err := s.db.Exec(ctx, sql, id)
	return err
}

func scanTemplateAssignment(row pgx.Row) (*TemplateAssignment, error) {
	var (
		a     TemplateAssignment
		slots []byte
	)
	if err := row.Scan(&a.ID, &a.TemplateID, &a.UserID, &a.Position, &slots, &a.CreatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(slots, &a.Slots); err != nil {
		return nil, err
	}
	return &a, nil
}
