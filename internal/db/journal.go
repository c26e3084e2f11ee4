package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/model"
)

// Journal appends a history row for every mutation of the event store. It
// only ever lives as long as the session that owns it.
type Journal struct {
	DB        *sql.DB
	SessionID string
	now       func() time.Time
}

func NewJournal(db *sql.DB, sessionID string) *Journal {
	return &Journal{DB: db, SessionID: sessionID, now: time.Now}
}

// Observer adapts the journal to the store's observer hook. Failures are
// logged; they never undo the store mutation.
func (j *Journal) Observer(logger *slog.Logger) calendar.Observer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(change calendar.Change) {
		if err := j.Record(context.Background(), change); err != nil {
			logger.Error("journal write failed", "event_id", change.EventID(), "kind", string(change.Kind), "err", err)
		}
	}
}

func (j *Journal) Record(ctx context.Context, change calendar.Change) error {
	var details string
	switch change.Kind {
	case calendar.ChangeInserted:
		details = formatCreatedDetails(change.After)
	case calendar.ChangeUpdated:
		details = formatEventDiff(change.Before, change.After)
	case calendar.ChangeDeleted:
		details = formatDeletedDetails(change.Before)
	default:
		return fmt.Errorf("unknown change kind %q", change.Kind)
	}

	_, err := j.DB.ExecContext(ctx,
		"INSERT INTO history (session_id, event_id, event_type, details, created_at) VALUES (?, ?, ?, ?, ?)",
		j.SessionID, change.EventID(), string(change.Kind), details, j.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (j *Journal) ListHistory(ctx context.Context, eventID int64) ([]model.HistoryEntry, error) {
	rows, err := j.DB.QueryContext(ctx,
		"SELECT id, session_id, event_id, event_type, details, created_at FROM history WHERE event_id = ? ORDER BY id DESC",
		eventID,
	)
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}

func (j *Journal) ListAll(ctx context.Context) ([]model.HistoryEntry, error) {
	rows, err := j.DB.QueryContext(ctx,
		"SELECT id, session_id, event_id, event_type, details, created_at FROM history ORDER BY id DESC",
	)
	if err != nil {
		return nil, err
	}
	return scanHistory(rows)
}

func scanHistory(rows *sql.Rows) ([]model.HistoryEntry, error) {
	defer rows.Close()

	history := []model.HistoryEntry{}
	for rows.Next() {
		var entry model.HistoryEntry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.EventID, &entry.EventType, &entry.Details, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse history time: %w", err)
		}
		entry.CreatedAt = parsed
		history = append(history, entry)
	}
	return history, rows.Err()
}

func formatCreatedDetails(event model.Event) string {
	return fmt.Sprintf("created: title='%s' location=%s day=%s", event.Title, valueOrNone(event.Location), formatDay(event.Start))
}

func formatDeletedDetails(event model.Event) string {
	return fmt.Sprintf("deleted: title='%s' location=%s day=%s", event.Title, valueOrNone(event.Location), formatDay(event.Start))
}

func formatEventDiff(before, after model.Event) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Location != after.Location {
		changes = append(changes, formatChange("location", before.Location, after.Location))
	}
	if formatDay(before.Start) != formatDay(after.Start) {
		changes = append(changes, formatChange("day", formatDay(before.Start), formatDay(after.Start)))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}

	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}

func formatDay(value time.Time) string {
	if value.IsZero() {
		return "none"
	}
	return value.Format(calendar.DateLayout)
}
