package scheduling

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const calendarIntegrationCols = `id, user_id, provider, external_id, settings, sync_token, created_at, updated_at`

// NewCalendarIntegration connects an employee to an external calendar
// provider. Connecting the same (user, provider) pair again replaces the
// stored settings.
type NewCalendarIntegration struct {
	UserID     string         `json:"user_id"`
	Provider   string         `json:"provider"`
	ExternalID *string        `json:"external_id,omitempty"`
	Settings   map[string]any `json:"settings,omitempty"`
}

// CalendarIntegrationUpdate is a partial update.
type CalendarIntegrationUpdate struct {
	ExternalID Field[string]         `json:"external_id"`
	Settings   Field[map[string]any] `json:"settings"`
	SyncToken  Field[string]         `json:"sync_token"`
}

// UpsertCalendarIntegration inserts or replaces the integration for the
// (user, provider) key in a single statement.
func (s *Store) UpsertCalendarIntegration(ctx context.Context, p NewCalendarIntegration) (*CalendarIntegration, error) {
	var b binder
	settings, err := b.bindJSON(p.Settings)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, provider, external_id, settings)
		VALUES (%s, %s, %s, %s, %s)
		ON CONFLICT (user_id, provider)
		DO UPDATE SET external_id = EXCLUDED.external_id, settings = EXCLUDED.settings, updated_at = now()
		RETURNING %s`,
		s.table(TableCalendarIntegrations),
		b.bind(uuid.New()), b.bind(p.UserID), b.bind(p.Provider), b.bind(p.ExternalID), settings,
		calendarIntegrationCols)

	return scanCalendarIntegration(s.db.QueryRow(ctx, sql, b.args...))
}

// GetCalendarIntegration returns the integration or (nil, nil) when absent.
func (s *Store) GetCalendarIntegration(ctx context.Context, id uuid.UUID) (*CalendarIntegration, error) {
	sql := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`,
		calendarIntegrationCols, s.table(TableCalendarIntegrations))

	ci, err := scanCalendarIntegration(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return ci, nil
}

// ListCalendarIntegrations returns integrations, optionally filtered by
// user, newest first.
func (s *Store) ListCalendarIntegrations(ctx context.Context, userID *string) ([]CalendarIntegration, error) {
	var b binder
	sql := fmt.Sprintf(`SELECT %s FROM %s`, calendarIntegrationCols, s.table(TableCalendarIntegrations))
	if userID != nil {
		sql += ` WHERE user_id = ` + b.bind(*userID)
	}
	sql += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, sql, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalendarIntegration
	for rows.Next() {
		ci, err := scanCalendarIntegration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ci)
	}
	return out, rows.Err()
}

// UpdateCalendarIntegration applies a partial update and returns the
// resulting row, or (nil, nil) when the id does not exist.
func (s *Store) UpdateCalendarIntegration(ctx context.Context, id uuid.UUID, p CalendarIntegrationUpdate) (*CalendarIntegration, error) {
	var b binder
	var sets []string
	if p.ExternalID.IsSet() {
		sets = append(sets, "external_id = "+b.bind(p.ExternalID.arg()))
	}
	if p.Settings.IsSet() {
		settings, _ := p.Settings.Value()
		arg, err := b.bindJSON(settings)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "settings = "+arg)
	}
	if p.SyncToken.IsSet() {
		sets = append(sets, "sync_token = "+b.bind(p.SyncToken.arg()))
	}
	if len(sets) == 0 {
		return s.GetCalendarIntegration(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	sql := fmt.Sprintf(`UPDATE %s SET %s WHERE id = %s RETURNING %s`,
		s.table(TableCalendarIntegrations), strings.Join(sets, ", "), b.bind(id), calendarIntegrationCols)

	ci, err := scanCalendarIntegration(s.db.QueryRow(ctx, sql, b.args...))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return ci, nil
}

// DeleteCalendarIntegration disconnects one integration.
func (s *Store) DeleteCalendarIntegration(ctx context.Context, id uuid.UUID) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table(TableCalendarIntegrations))
	_, err := s.db.Exec(ctx, sql, id)
	return err
}

func scanCalendarIntegration(row pgx.Row) (*CalendarIntegration, error) {
	var (
		ci       CalendarIntegration
		settings []byte
	)
	if err := row.Scan(&ci.ID, &ci.UserID, &ci.Provider, &ci.ExternalID, &settings, &ci.SyncToken, &ci.CreatedAt, &ci.UpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(settings, &ci.Settings); err != nil {
		return nil, err
	}
	return &ci, nil
}
