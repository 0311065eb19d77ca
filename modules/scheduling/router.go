package scheduling

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Router returns the tenant-scoped scheduling API. Mount it behind
// tenant.Middleware and Middleware so every handler can reach the
// caller's Store through the request context.
func Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/availability", func(r chi.Router) {
		r.Route("/requests", func(r chi.Router) {
			r.Post("/", createAvailabilityRequest)
			r.Get("/", listAvailabilityRequests)
			r.Get("/{id}", getAvailabilityRequest)
			r.Patch("/{id}", updateAvailabilityRequest)
			r.Delete("/{id}", deleteAvailabilityRequest)
			r.Put("/{id}/entries", upsertAvailabilityEntry)
		})
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", listAvailabilityEntries)
			r.Delete("/{id}", deleteAvailabilityEntry)
		})
	})

	r.Route("/weeks", func(r chi.Router) {
		r.Post("/", createScheduleWeek)
		r.Get("/", listScheduleWeeks)
		r.Get("/{id}", getScheduleWeek)
		r.Patch("/{id}", updateScheduleWeek)
		r.Delete("/{id}", deleteScheduleWeek)
		r.Post("/{id}/publish", publishScheduleWeek)
		r.Post("/{id}/shifts", createShiftAssignment)
		r.Get("/{id}/shifts", listShiftAssignments)
	})

	r.Route("/shifts", func(r chi.Router) {
		r.Patch("/{id}", updateShiftAssignment)
		r.Delete("/{id}", deleteShiftAssignment)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Post("/", createScheduleTemplate)
		r.Get("/", listScheduleTemplates)
		r.Get("/{id}", getScheduleTemplate)
		r.Patch("/{id}", updateScheduleTemplate)
		r.Delete("/{id}", deleteScheduleTemplate)
		r.Put("/{id}/assignments", replaceTemplateAssignments)
		r.Get("/{id}/assignments", listTemplateAssignments)
	})

	r.Route("/calendar-integrations", func(r chi.Router) {
		r.Put("/", upsertCalendarIntegration)
		r.Get("/", listCalendarIntegrations)
		r.Patch("/{id}", updateCalendarIntegration)
		r.Delete("/{id}", deleteCalendarIntegration)
	})

	return r
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func createAvailabilityRequest(w http.ResponseWriter, r *http.Request) {
	var p NewAvailabilityRequest
	if !decode(w, r, &p) {
		return
	}
	req, err := MustStoreFromContext(r.Context()).CreateAvailabilityRequest(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	respond(w, http.StatusCreated, req)
}

func listAvailabilityRequests(w http.ResponseWriter, r *http.Request) {
	var f AvailabilityRequestFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status := RequestStatus(s)
		f.Status = &status
	}
	out, err := MustStoreFromContext(r.Context()).ListAvailabilityRequests(r.Context(), f)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respond(w, http.StatusOK, out)
}

func getAvailabilityRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, err := MustStoreFromContext(r.Context()).GetAvailabilityRequest(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if req == nil {
		respondError(w, http.StatusNotFound, "availability request not found")
		return
	}
	respond(w, http.StatusOK, req)
}

func updateAvailabilityRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p AvailabilityRequestUpdate
	if !decode(w, r, &p) {
		return
	}
	req, err := MustStoreFromContext(r.Context()).UpdateAvailabilityRequest(r.Context(), id, p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if req == nil {
		respondError(w, http.StatusNotFound, "availability request not found")
		return
	}
	respond(w, http.StatusOK, req)
}

func deleteAvailabilityRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := MustStoreFromContext(r.Context()).DeleteAvailabilityRequest(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	respond(w, http.StatusNoContent, nil)
}

func upsertAvailabilityEntry(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r)
	if !ok {
		return
	}
	var p AvailabilityEntrySubmission
	if !decode(w, r, &p) {
		return
	}
	p.RequestID = requestID
	entry, err := MustStoreFromContext(r.Context()).UpsertAvailabilityEntry(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "submit failed")
		return
	}
	respond(w, http.StatusOK, entry)
}

func listAvailabilityEntries(w http.ResponseWriter, r *http.Request) {
	var f AvailabilityEntryFilter
	q := r.URL.Query()
	if s := q.Get("request_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid request_id")
			return
		}
		f.RequestID = &id
	}
	if s := q.Get("user_id"); s != "" {
		f.UserID = &s
	}
	for param, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if s := q.Get(param); s != "" {
			d, err := time.Parse(time.DateOnly, s)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid "+param+" date")
				return
			}
			*dst = &d
		}
	}
	out, err := MustStoreFromContext(r.Context()).ListAvailabilityEntries(r.Context(), f)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respond(w, http.StatusOK, out)
}

func deleteAvailabilityEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := MustStoreFromContext(r.Context()).DeleteAvailabilityEntry(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	respond(w, http.StatusNoContent, nil)
}

func createScheduleWeek(w http.ResponseWriter, r *http.Request) {
	var p NewScheduleWeek
	if !decode(w, r, &p) {
		return
	}
	week, err := MustStoreFromContext(r.Context()).CreateScheduleWeek(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	respond(w, http.StatusCreated, week)
}

func listScheduleWeeks(w http.ResponseWriter, r *http.Request) {
	out, err := MustStoreFromContext(r.Context()).ListScheduleWeeks(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respond(w, http.StatusOK, out)
}

func getScheduleWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	week, err := MustStoreFromContext(r.Context()).GetScheduleWeek(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if week == nil {
		respondError(w, http.StatusNotFound, "schedule week not found")
		return
	}
	respond(w, http.StatusOK, week)
}

func updateScheduleWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p ScheduleWeekUpdate
	if !decode(w, r, &p) {
		return
	}
	week, err := MustStoreFromContext(r.Context()).UpdateScheduleWeek(r.Context(), id, p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if week == nil {
		respondError(w, http.StatusNotFound, "schedule week not found")
		return
	}
	respond(w, http.StatusOK, week)
}

func publishScheduleWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	week, err := MustStoreFromContext(r.Context()).UpdateScheduleWeek(r.Context(), id, ScheduleWeekUpdate{
		Status: Set(SchedulePublished),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "publish failed")
		return
	}
	if week == nil {
		respondError(w, http.StatusNotFound, "schedule week not found")
		return
	}
	respond(w, http.StatusOK, week)
}

func deleteScheduleWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := MustStoreFromContext(r.Context()).DeleteScheduleWeek(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	respond(w, http.StatusNoContent, nil)
}

func createShiftAssignment(w http.ResponseWriter, r *http.Request) {
	weekID, ok := pathID(w, r)
	if !ok {
		return
	}
	var p NewShiftAssignment
	if !decode(w, r, &p) {
		return
	}
	p.WeekID = weekID
	a, err := MustStoreFromContext(r.Context()).CreateShiftAssignment(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	respond(w, http.StatusCreated, a)
}

func listShiftAssignments(w http.ResponseWriter, r *http.Request) {
	weekID, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := MustStoreFromContext(r.Context()).ListShiftAssignments(r.Context(), weekID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respond(w, http.StatusOK, out)
}

func updateShiftAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p ShiftAssignmentUpdate
	if !decode(w, r, &p) {
		return
	}
	a, err := MustStoreFromContext(r.Context()).UpdateShiftAssignment(r.Context(), id, p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if a == nil {
		respondError(w, http.StatusNotFound, "shift assignment not found")
		return
	}
	respond(w, http.StatusOK, a)
}

func deleteShiftAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := MustStoreFromContext(r.Context()).DeleteShiftAssignment(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	respond(w, http.StatusNoContent, nil)
}

func createScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	var p NewScheduleTemplate
	if !decode(w, r, &p) {
		return
	}
	tpl, err := MustStoreFromContext(r.Context()).CreateScheduleTemplate(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "create failed")
		return
	}
	respond(w, http.StatusCreated, tpl)
}

func listScheduleTemplates(w http.ResponseWriter, r *http.Request) {
	out, err := MustStoreFromContext(r.Context()).ListScheduleTemplates(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respond(w, http.StatusOK, out)
}

func getScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	tpl, err := MustStoreFromContext(r.Context()).GetScheduleTemplate(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if tpl == nil {
		respondError(w, http.StatusNotFound, "template not found")
		return
	}
	respond(w, http.StatusOK, tpl)
}

func updateScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p ScheduleTemplateUpdate
	if !decode(w, r, &p) {
		return
	}
	tpl, err := MustStoreFromContext(r.Context()).UpdateScheduleTemplate(r.Context(), id, p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if tpl == nil {
		respondError(w, http.StatusNotFound, "template not found")
		return
	}
	respond(w, http.StatusOK, tpl)
}

func deleteScheduleTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := MustStoreFromContext(r.Context()).DeleteScheduleTemplate(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	respond(w, http.StatusNoContent, nil)
}

func replaceTemplateAssignments(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathID(w, r)
	if !ok {
		return
	}
	var assignments []NewTemplateAssignment
	if !decode(w, r, &assignments) {
		return
	}
	store := MustStoreFromContext(r.Context())
	if err := store.ReplaceTemplateAssignments(r.Context(), templateID, assignments); err != nil {
		respondError(w, http.StatusInternalServerError, "replace failed")
		return
	}
	out, err := store.ListTemplateAssignments(r.Context(), templateID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respond(w, http.StatusOK, out)
}

func listTemplateAssignments(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := MustStoreFromContext(r.Context()).ListTemplateAssignments(r.Context(), templateID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respond(w, http.StatusOK, out)
}

func upsertCalendarIntegration(w http.ResponseWriter, r *http.Request) {
	var p NewCalendarIntegration
	if !decode(w, r, &p) {
		return
	}
	ci, err := MustStoreFromContext(r.Context()).UpsertCalendarIntegration(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "connect failed")
		return
	}
	respond(w, http.StatusOK, ci)
}

func listCalendarIntegrations(w http.ResponseWriter, r *http.Request) {
	var userID *string
	if s := r.URL.Query().Get("user_id"); s != "" {
		userID = &s
	}
	out, err := MustStoreFromContext(r.Context()).ListCalendarIntegrations(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list failed")
		return
	}
	respond(w, http.StatusOK, out)
}

func updateCalendarIntegration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p CalendarIntegrationUpdate
	if !decode(w, r, &p) {
		return
	}
	ci, err := MustStoreFromContext(r.Context()).UpdateCalendarIntegration(r.Context(), id, p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if ci == nil {
		respondError(w, http.StatusNotFound, "integration not found")
		return
	}
	respond(w, http.StatusOK, ci)
}

func deleteCalendarIntegration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := MustStoreFromContext(r.Context()).DeleteCalendarIntegration(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	respond(w, http.StatusNoContent, nil)
}
