package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/db"
	"github.com/Joseda-hg/lazycal/internal/model"
	"github.com/Joseda-hg/lazycal/internal/session"
)

var testNow = time.Date(2023, time.March, 15, 12, 0, 0, 0, time.Local)

type fixture struct {
	handler http.Handler
	store   *calendar.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.Open(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store := calendar.NewStore()
	journal := db.NewJournal(conn, "web-test")
	store.Subscribe(journal.Observer(nil))
	sess := session.New(store, session.WithClock(func() time.Time { return testNow }))

	server := NewServer(sess, journal, Options{WeekStart: time.Sunday})
	return fixture{handler: server.Handler(), store: store}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f fixture) insert(t *testing.T, title string, day time.Time) model.Event {
	t.Helper()
	start, end := calendar.DayBounds(day)
	created, err := f.store.Insert(model.Event{Title: title, Start: start, End: end})
	require.NoError(t, err)
	return created
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var payload stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestCreateScenarioOverHTTP(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/slots", `{"date":"2023-03-20"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "creating", decodeState(t, rec).State.Kind)

	rec = f.do(t, http.MethodPost, "/api/draft", `{"field":"title","value":"Lunch"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.do(t, http.MethodPost, "/api/draft", `{"field":"location","value":"Cafe"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Cafe", decodeState(t, rec).State.DraftLocation)

	rec = f.do(t, http.MethodPost, "/api/create/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created eventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Lunch", created.Event.Title)
	assert.Equal(t, "Cafe", created.Event.Location)
	assert.Equal(t, "idle", created.State.Kind)

	rec = f.do(t, http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var events []eventView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, model.StyleUpcoming, events[0].Style)
}

func TestConfirmCreateWithBlankTitleIsBadRequest(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/slots", `{"date":"2023-03-20"}`).Code)
	rec := f.do(t, http.MethodPost, "/api/create/confirm", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, "idle", decodeState(t, f.do(t, http.MethodGet, "/api/state", "")).State.Kind)
}

func TestViewEditDeleteOverHTTP(t *testing.T) {
	f := newFixture(t)
	created := f.insert(t, "Standup", testNow)

	rec := f.do(t, http.MethodPost, "/api/events/"+itoa(created.ID)+"/select", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state := decodeState(t, rec).State
	require.Equal(t, "viewing", state.Kind)
	assert.Equal(t, "Standup", state.DraftTitle)

	rec = f.do(t, http.MethodPost, "/api/view/edit", `{"title":"Daily standup"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var edited eventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &edited))
	assert.Equal(t, "Daily standup", edited.Event.Title)
	assert.Equal(t, "viewing", edited.State.Kind)

	rec = f.do(t, http.MethodPost, "/api/view/delete", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "idle", decodeState(t, rec).State.Kind)
	assert.Equal(t, 0, f.store.Len())

	rec = f.do(t, http.MethodGet, "/api/history?event_id="+itoa(created.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []model.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 3)
	assert.Equal(t, "deleted", history[0].EventType)
}

func TestErrorStatuses(t *testing.T) {
	f := newFixture(t)
	created := f.insert(t, "Standup", testNow)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/events/999/select", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/events/abc/select", "").Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/view/close", "").Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/create/confirm", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/filter", `{"mode":"soon"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/filter", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/filter", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/slots", `{"date":"tomorrow"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/month?month=2023-13", "").Code)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/events/"+itoa(created.ID)+"/select", "").Code)
	assert.Equal(t, http.StatusConflict, f.do(t, http.MethodPost, "/api/draft", `{"field":"location","value":"x"}`).Code)
	require.NoError(t, f.store.Delete(created.ID))
	assert.Equal(t, http.StatusInternalServerError, f.do(t, http.MethodPost, "/api/view/delete", "").Code)
	assert.Equal(t, "idle", decodeState(t, f.do(t, http.MethodGet, "/api/state", "")).State.Kind)
}

func TestFilterProjectsEvents(t *testing.T) {
	f := newFixture(t)
	f.insert(t, "Retro", time.Date(2023, time.March, 10, 0, 0, 0, 0, time.Local))
	f.insert(t, "Standup", testNow)
	f.insert(t, "Planning", time.Date(2023, time.March, 20, 0, 0, 0, 0, time.Local))

	cases := []struct {
		mode   string
		titles []string
	}{
		{"PAST", []string{"Retro"}},
		{"upcoming", []string{"Standup", "Planning"}},
		{"ALL", []string{"Retro", "Standup", "Planning"}},
	}
	for _, tc := range cases {
		t.Run(tc.mode, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/filter", `{"mode":"`+tc.mode+`"}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var events []eventView
			require.NoError(t, json.Unmarshal(f.do(t, http.MethodGet, "/api/events", "").Body.Bytes(), &events))
			titles := make([]string, 0, len(events))
			for _, event := range events {
				titles = append(titles, event.Title)
			}
			assert.Equal(t, tc.titles, titles)
		})
	}
}

func TestFilterWithoutModeKeepsCurrentFilter(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/filter", `{"mode":"PAST"}`).Code)
	rec := f.do(t, http.MethodPost, "/api/filter", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.FilterPast, decodeState(t, f.do(t, http.MethodGet, "/api/state", "")).FilterMode)
}

func TestMonthEndpoint(t *testing.T) {
	f := newFixture(t)
	f.insert(t, "Standup", testNow)

	rec := f.do(t, http.MethodGet, "/api/month?month=2023-03", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var month monthView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &month))
	assert.Equal(t, "March 2023", month.Title)
	require.Len(t, month.Weeks, 5)
	assert.Equal(t, "2023-02-26", month.Weeks[0][0].Date)
	assert.False(t, month.Weeks[0][0].InMonth)

	today := month.Weeks[2][3]
	assert.Equal(t, "2023-03-15", today.Date)
	assert.True(t, today.Today)
	require.Len(t, today.Events, 1)
	assert.Equal(t, model.StyleUpcoming, today.Events[0].Style)
}

func TestIndexAndCalendarExport(t *testing.T) {
	f := newFixture(t)
	f.insert(t, "Standup", testNow)

	rec := f.do(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "March 2023")
	assert.Contains(t, rec.Body.String(), "Standup")

	rec = f.do(t, http.MethodGet, "/calendar.ics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "SUMMARY:Standup")

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/missing", "").Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
