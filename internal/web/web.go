package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/db"
	"github.com/Joseda-hg/lazycal/internal/ics"
	"github.com/Joseda-hg/lazycal/internal/model"
	"github.com/Joseda-hg/lazycal/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.New("index.tmpl").Funcs(template.FuncMap{
	"label": func(m model.FilterMode) string { return m.Label() },
}).ParseFS(templateFS, "templates/index.tmpl"))

type Options struct {
	WeekStart time.Weekday
	Logger    *slog.Logger
}

// Server exposes one session over HTTP. Handlers hold mu for their whole
// run, so gestures from concurrent requests apply one at a time.
type Server struct {
	mu        sync.Mutex
	session   *session.Session
	journal   *db.Journal
	weekStart time.Weekday
	logger    *slog.Logger
}

type stateResponse struct {
	State      session.Snapshot `json:"state"`
	FilterMode model.FilterMode `json:"filter_mode"`
}

type eventResponse struct {
	Event model.Event      `json:"event"`
	State session.Snapshot `json:"state"`
}

type eventView struct {
	model.Event
	Style model.Style `json:"style"`
}

type dayView struct {
	Date    string      `json:"date"`
	Day     int         `json:"day"`
	InMonth bool        `json:"in_month"`
	Today   bool        `json:"today"`
	Events  []eventView `json:"events"`
}

type monthView struct {
	Month string      `json:"month"`
	Title string      `json:"title"`
	Weeks [][]dayView `json:"weeks"`
}

func NewServer(sess *session.Session, journal *db.Journal, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{session: sess, journal: journal, weekStart: opts.WeekStart, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.indexHandler)
	mux.HandleFunc("GET /calendar.ics", s.icsHandler)
	mux.HandleFunc("GET /api/events", s.apiEventsHandler)
	mux.HandleFunc("GET /api/state", s.apiStateHandler)
	mux.HandleFunc("GET /api/history", s.apiHistoryHandler)
	mux.HandleFunc("GET /api/month", s.apiMonthHandler)
	mux.HandleFunc("POST /api/filter", s.apiFilterHandler)
	mux.HandleFunc("POST /api/slots", s.apiSelectSlotHandler)
	mux.HandleFunc("POST /api/events/{id}/select", s.apiSelectEventHandler)
	mux.HandleFunc("POST /api/draft", s.apiDraftHandler)
	mux.HandleFunc("POST /api/create/confirm", s.apiConfirmCreateHandler)
	mux.HandleFunc("POST /api/create/cancel", s.apiCancelCreateHandler)
	mux.HandleFunc("POST /api/view/edit", s.apiConfirmEditHandler)
	mux.HandleFunc("POST /api/view/delete", s.apiConfirmDeleteHandler)
	mux.HandleFunc("POST /api/view/close", s.apiCloseViewHandler)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	month, err := s.monthFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view := s.buildMonthView(month)

	data := struct {
		Month   monthView
		Prev    string
		Next    string
		Headers []string
		Filter  model.FilterMode
		Filters []model.FilterMode
		State   session.Snapshot
		Today   string
	}{
		Month:   view,
		Prev:    month.AddDate(0, -1, 0).Format(calendar.MonthLayout),
		Next:    month.AddDate(0, 1, 0).Format(calendar.MonthLayout),
		Headers: calendar.WeekdayHeaders(s.weekStart),
		Filter:  s.session.FilterMode(),
		Filters: []model.FilterMode{model.FilterAll, model.FilterPast, model.FilterUpcoming},
		State:   session.Describe(s.session.State()),
		Today:   s.session.Now().Format(calendar.DateLayout),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) icsHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="lazycal.ics"`)
	if err := ics.Write(w, s.session.VisibleEvents(), s.session.Now()); err != nil {
		s.logger.Error("ics export failed", "err", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) apiEventsHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := s.session.VisibleEvents()
	payload := make([]eventView, 0, len(events))
	for _, event := range events {
		payload = append(payload, eventView{Event: event, Style: s.session.StyleFor(event)})
	}
	writeJSON(w, payload)
}

func (s *Server) apiStateHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, s.stateResponse())
}

func (s *Server) apiHistoryHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.journal == nil {
		writeJSON(w, []model.HistoryEntry{})
		return
	}

	var history []model.HistoryEntry
	var err error
	if value := strings.TrimSpace(r.URL.Query().Get("event_id")); value != "" {
		id, parseErr := strconv.ParseInt(value, 10, 64)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid event id %q", value))
			return
		}
		history, err = s.journal.ListHistory(r.Context(), id)
	} else {
		history, err = s.journal.ListAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}
	writeJSON(w, history)
}

func (s *Server) apiMonthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	month, err := s.monthFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, s.buildMonthView(month))
}

func (s *Server) apiFilterHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(body.Mode) == "" {
		writeError(w, http.StatusBadRequest, errors.New("mode is required"))
		return
	}
	mode, err := model.ParseFilterMode(body.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.SetFilterMode(mode)
	writeJSON(w, s.stateResponse())
}

func (s *Server) apiSelectSlotHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	date, err := time.ParseInLocation(calendar.DateLayout, strings.TrimSpace(body.Date), s.session.Now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q", body.Date))
		return
	}
	if err := s.session.SelectSlot(date); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, s.stateResponse())
}

func (s *Server) apiSelectEventHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("invalid event id %q", r.PathValue("id")))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SelectEvent(id); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, s.stateResponse())
}

func (s *Server) apiDraftHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SetField(model.Field(strings.ToLower(strings.TrimSpace(body.Field))), body.Value); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, s.stateResponse())
}

func (s *Server) apiConfirmCreateHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.session.ConfirmCreate()
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, eventResponse{Event: created, State: session.Describe(s.session.State())})
}

func (s *Server) apiCancelCreateHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.CancelCreate(); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, s.stateResponse())
}

func (s *Server) apiConfirmEditHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.session.ConfirmEdit(body.Title)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, eventResponse{Event: updated, State: session.Describe(s.session.State())})
}

func (s *Server) apiConfirmDeleteHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.ConfirmDelete(); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, s.stateResponse())
}

func (s *Server) apiCloseViewHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.CloseView(); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, s.stateResponse())
}

func (s *Server) stateResponse() stateResponse {
	return stateResponse{State: session.Describe(s.session.State()), FilterMode: s.session.FilterMode()}
}

func (s *Server) monthFromRequest(r *http.Request) (time.Time, error) {
	now := s.session.Now()
	value := strings.TrimSpace(r.URL.Query().Get("month"))
	if value == "" {
		return calendar.FirstOfMonth(now), nil
	}
	return calendar.ParseMonth(value, now.Location())
}

func (s *Server) buildMonthView(first time.Time) monthView {
	grid := calendar.BuildMonth(first, s.weekStart, s.session.VisibleEvents(), s.session.Now())

	weeks := make([][]dayView, 0, len(grid.Weeks))
	for _, week := range grid.Weeks {
		days := make([]dayView, 0, len(week))
		for _, day := range week {
			events := make([]eventView, 0, len(day.Events))
			for _, event := range day.Events {
				events = append(events, eventView{Event: event, Style: s.session.StyleFor(event)})
			}
			days = append(days, dayView{
				Date:    day.Date.Format(calendar.DateLayout),
				Day:     day.Date.Day(),
				InMonth: day.InMonth,
				Today:   day.Today,
				Events:  events,
			})
		}
		weeks = append(weeks, days)
	}

	return monthView{
		Month: grid.First.Format(calendar.MonthLayout),
		Title: grid.Title(),
		Weeks: weeks,
	}
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("session request failed", "err", err)
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvariant):
		return http.StatusInternalServerError
	case errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, calendar.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, calendar.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
