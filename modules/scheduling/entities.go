package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle of an availability request.
type RequestStatus string

const (
	RequestOpen     RequestStatus = "open"
	RequestLocked   RequestStatus = "locked"
	RequestArchived RequestStatus = "archived"
)

// ScheduleStatus is the lifecycle of a schedule week.
type ScheduleStatus string

const (
	ScheduleDraft     ScheduleStatus = "draft"
	SchedulePublished ScheduleStatus = "published"
)

// AvailabilityRequest asks employees to submit their availability for a week.
type AvailabilityRequest struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	WeekStart time.Time     `json:"week_start"`
	Status    RequestStatus `json:"status"`
	Deadline  *time.Time    `json:"deadline,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// AvailabilityEntry is one employee's availability for one date within a
// request. UserID references the global users table by id only; referential
// integrity across the schema boundary is upheld by the application, not
// the database. Unique per (request, user, date).
type AvailabilityEntry struct {
	ID        uuid.UUID       `json:"id"`
	RequestID uuid.UUID       `json:"request_id"`
	UserID    string          `json:"user_id"`
	Date      time.Time       `json:"date"`
	Blocks    map[string]bool `json:"blocks"`
	Note      *string         `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ScheduleWeek is a (draft or published) schedule grid for one week.
// Rows and Columns hold the grid layout as free-form JSON documents.
type ScheduleWeek struct {
	ID          uuid.UUID        `json:"id"`
	WeekStart   time.Time        `json:"week_start"`
	Status      ScheduleStatus   `json:"status"`
	Rows        []map[string]any `json:"rows"`
	Columns     []map[string]any `json:"columns"`
	PublishedAt *time.Time       `json:"published_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ShiftAssignment places one employee on one shift of a schedule week.
type ShiftAssignment struct {
	ID        uuid.UUID `json:"id"`
	WeekID    uuid.UUID `json:"week_id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"date"`
	Position  int       `json:"position"`
	Role      *string   `json:"role,omitempty"`
	StartTime *string   `json:"start_time,omitempty"`
	EndTime   *string   `json:"end_time,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleTemplate is a reusable week layout.
type ScheduleTemplate struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Rows      []map[string]any `json:"rows"`
	Columns   []map[string]any `json:"columns"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TemplateAssignment pre-assigns an employee to a template slot.
type TemplateAssignment struct {
	ID         uuid.UUID      `json:"id"`
	TemplateID uuid.UUID      `json:"template_id"`
	UserID     string         `json:"user_id"`
	Position   int            `json:"position"`
	Slots      map[string]any `json:"slots"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CalendarIntegration connects one employee to an external calendar.
// Unique per (user, provider).
type CalendarIntegration struct {
	ID         uuid.UUID      `json:"id"`
	UserID     string         `json:"user_id"`
	Provider   string         `json:"provider"`
	ExternalID *string        `json:"external_id,omitempty"`
	Settings   map[string]any `json:"settings"`
	SyncToken  *string        `json:"sync_token,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
