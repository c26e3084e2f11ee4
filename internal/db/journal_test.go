package db

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/model"
)

func TestJournalRecordsStoreMutations(t *testing.T) {
	journal, cleanup := newTestJournal(t)
	defer cleanup()

	store := calendar.NewStore()
	store.Subscribe(journal.Observer(slog.New(slog.NewTextHandler(io.Discard, nil))))

	start, end := calendar.DayBounds(time.Date(2023, time.March, 15, 0, 0, 0, 0, time.Local))
	created, err := store.Insert(model.Event{Title: "Standup", Location: "Room 2", Start: start, End: end})
	if err != nil {
		t.Fatalf("insert event: %v", err)
	}
	title := "Standup (moved)"
	if _, err := store.Update(created.ID, model.EventPatch{Title: &title}); err != nil {
		t.Fatalf("update event: %v", err)
	}
	if err := store.Delete(created.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}

	history, err := journal.ListHistory(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}

	wantTypes := []string{"deleted", "updated", "created"}
	for i, entry := range history {
		if entry.EventType != wantTypes[i] {
			t.Fatalf("expected entry %d to be %q, got %q", i, wantTypes[i], entry.EventType)
		}
		if entry.SessionID != "test-session" {
			t.Fatalf("expected session id 'test-session', got %q", entry.SessionID)
		}
		if entry.CreatedAt.IsZero() {
			t.Fatalf("expected entry %d to have a timestamp", i)
		}
	}

	if history[2].Details != "created: title='Standup' location=Room 2 day=2023-03-15" {
		t.Fatalf("unexpected created details %q", history[2].Details)
	}
	if history[1].Details != "updated: title: 'Standup' -> 'Standup (moved)'" {
		t.Fatalf("unexpected updated details %q", history[1].Details)
	}
	if !strings.HasPrefix(history[0].Details, "deleted: title='Standup (moved)'") {
		t.Fatalf("unexpected deleted details %q", history[0].Details)
	}
}

func TestJournalListAllSpansEvents(t *testing.T) {
	journal, cleanup := newTestJournal(t)
	defer cleanup()

	store := calendar.NewStore()
	store.Subscribe(journal.Observer(slog.New(slog.NewTextHandler(io.Discard, nil))))

	start, end := calendar.DayBounds(time.Date(2023, time.March, 15, 0, 0, 0, 0, time.Local))
	for _, title := range []string{"One", "Two"} {
		if _, err := store.Insert(model.Event{Title: title, Start: start, End: end}); err != nil {
			t.Fatalf("insert %s: %v", title, err)
		}
	}

	history, err := journal.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	if history[0].EventID == history[1].EventID {
		t.Fatalf("expected entries for two different events")
	}
}

func TestFormatEventDiffWithoutChanges(t *testing.T) {
	event := model.Event{ID: 1, Title: "Same"}
	if got := formatEventDiff(event, event); got != "updated: no changes" {
		t.Fatalf("expected no changes, got %q", got)
	}
}

func newTestJournal(t *testing.T) (*Journal, func()) {
	t.Helper()
	db, err := Open(MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewJournal(db, "test-session"), func() {
		_ = db.Close()
	}
}
