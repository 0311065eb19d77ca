package scheduling_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterly/rosterly/modules/scheduling"
)

func weekRow(id uuid.UUID, status scheduling.ScheduleStatus) []any {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	return []any{id, now, status, []byte(`[]`), []byte(`[]`), nil, now, now}
}

func shiftRow(id, weekID uuid.UUID, userID string, position int) []any {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	return []any{id, weekID, userID, now, position, nil, nil, nil, now, now}
}

func TestScheduleWeeks(t *testing.T) {
	t.Parallel()

	t.Run("create starts as draft", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		id := uuid.New()
		db.queue(weekRow(id, scheduling.ScheduleDraft))

		store := scheduling.NewStore(db, "biz-123")
		week, err := store.CreateScheduleWeek(t.Context(), scheduling.NewScheduleWeek{
			WeekStart: time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		assert.Equal(t, scheduling.ScheduleDraft, week.Status)
		assert.Nil(t, week.PublishedAt)

		call := db.lastCall()
		assert.Contains(t, call.sql, `"business_biz_123"."schedule_weeks"`)
		assert.Contains(t, call.sql, `"rows", "columns"`)

		// both grids are NOT NULL with '[]' defaults; omitting them from
		// the payload must bind empty arrays, never SQL NULL.
		assert.JSONEq(t, `[]`, string(call.args[0].([]byte)))
		assert.JSONEq(t, `[]`, string(call.args[1].([]byte)))
	})

	t.Run("clearing grids resets to empty documents", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		id := uuid.New()
		db.queue(weekRow(id, scheduling.ScheduleDraft))

		store := scheduling.NewStore(db, "biz-123")
		_, err := store.UpdateScheduleWeek(t.Context(), id, scheduling.ScheduleWeekUpdate{
			Rows: scheduling.Null[[]map[string]any](),
		})
		require.NoError(t, err)

		call := db.lastCall()
		assert.Contains(t, call.sql, `"rows" = $1`)
		assert.JSONEq(t, `[]`, string(call.args[0].([]byte)))
	})

	t.Run("publishing stamps published_at", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		id := uuid.New()
		db.queue(weekRow(id, scheduling.SchedulePublished))

		store := scheduling.NewStore(db, "biz-123")
		_, err := store.UpdateScheduleWeek(t.Context(), id, scheduling.ScheduleWeekUpdate{
			Status: scheduling.Set(scheduling.SchedulePublished),
		})
		require.NoError(t, err)

		call := db.lastCall()
		assert.Contains(t, call.sql, `status = $1, published_at = now()`)
		assert.Equal(t, []any{scheduling.SchedulePublished, id}, call.args)
	})

	t.Run("reverting to draft leaves published_at alone", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		id := uuid.New()
		db.queue(weekRow(id, scheduling.ScheduleDraft))

		store := scheduling.NewStore(db, "biz-123")
		_, err := store.UpdateScheduleWeek(t.Context(), id, scheduling.ScheduleWeekUpdate{
			Status: scheduling.Set(scheduling.ScheduleDraft),
		})
		require.NoError(t, err)
		assert.NotContains(t, setClause(db.lastCall().sql), "published_at")
	})

	t.Run("lookup by week start", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		db.queue(weekRow(uuid.New(), scheduling.ScheduleDraft))

		store := scheduling.NewStore(db, "biz-123")
		weekStart := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
		week, err := store.GetScheduleWeekByStart(t.Context(), weekStart)
		require.NoError(t, err)
		require.NotNil(t, week)

		call := db.lastCall()
		assert.Contains(t, call.sql, `WHERE week_start = $1`)
		assert.Equal(t, []any{weekStart}, call.args)
	})

	t.Run("list orders newest week first", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		store := scheduling.NewStore(db, "biz-123")
		_, err := store.ListScheduleWeeks(t.Context())
		require.NoError(t, err)
		assert.Contains(t, db.lastCall().sql, `ORDER BY week_start DESC`)
	})
}

func TestShiftAssignments(t *testing.T) {
	t.Parallel()

	t.Run("list orders by date then position", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		weekID := uuid.New()
		db.queue(
			shiftRow(uuid.New(), weekID, "u-1", 0),
			shiftRow(uuid.New(), weekID, "u-2", 1),
		)

		store := scheduling.NewStore(db, "biz-123")
		out, err := store.ListShiftAssignments(t.Context(), weekID)
		require.NoError(t, err)
		assert.Len(t, out, 2)

		call := db.lastCall()
		assert.Contains(t, call.sql, `WHERE week_id = $1 ORDER BY shift_date ASC, position ASC`)
		assert.Equal(t, []any{weekID}, call.args)
	})

	t.Run("update renumbers markers from one", func(t *testing.T) {
		t.Parallel()

		db := &fakeDB{}
		id := uuid.New()
		db.queue(shiftRow(id, uuid.New(), "u-9", 2))

		store := scheduling.NewStore(db, "biz-123")
		_, err := store.UpdateShiftAssignment(t.Context(), id, scheduling.ShiftAssignmentUpdate{
			UserID:   scheduling.Set("u-9"),
			Position: scheduling.Set(2),
			Role:     scheduling.Null[string](),
		})
		require.NoError(t, err)

		call := db.lastCall()
		assert.Contains(t, call.sql, `user_id = $1, position = $2, role = $3`)
		assert.Contains(t, call.sql, `WHERE id = $4`)
		assert.Equal(t, []any{"u-9", 2, nil, id}, call.args)
	})
}
