package model

import (
	"fmt"
	"strings"
	"time"
)

// Event is a single-day calendar entry. Start is the first instant of the
// day and End the last second of it.
type Event struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// EventPatch lists the fields an edit may change. Nil fields are left alone.
type EventPatch struct {
	Title *string `json:"title,omitempty"`
}

type FilterMode string

const (
	FilterAll      FilterMode = "ALL"
	FilterPast     FilterMode = "PAST"
	FilterUpcoming FilterMode = "UPCOMING"
)

func ParseFilterMode(value string) (FilterMode, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(FilterAll):
		return FilterAll, nil
	case string(FilterPast):
		return FilterPast, nil
	case string(FilterUpcoming):
		return FilterUpcoming, nil
	default:
		return "", fmt.Errorf("unknown filter mode %q", value)
	}
}

func (m FilterMode) Label() string {
	switch m {
	case FilterPast:
		return "Past"
	case FilterUpcoming:
		return "Upcoming"
	default:
		return "All"
	}
}

type Style string

const (
	StyleUpcoming Style = "upcoming"
	StylePast     Style = "past"
)

// Field names a draft input of an open dialog.
type Field string

const (
	FieldTitle    Field = "title"
	FieldLocation Field = "location"
)

type HistoryEntry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	EventID   int64     `json:"event_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
