package session

import (
	"time"

	"github.com/Joseda-hg/lazycal/internal/model"
)

// State is the open dialog and its draft. Exactly one of Idle, Creating or
// Viewing is active at a time.
type State interface {
	Kind() string
}

type Idle struct{}

type Creating struct {
	TargetDate    time.Time
	DraftTitle    string
	DraftLocation string
}

type Viewing struct {
	TargetEvent model.Event
	DraftTitle  string
}

func (Idle) Kind() string     { return "idle" }
func (Creating) Kind() string { return "creating" }
func (Viewing) Kind() string  { return "viewing" }

// Snapshot is the flattened form of a State used by the presentation layers.
type Snapshot struct {
	Kind          string       `json:"kind"`
	TargetDate    *time.Time   `json:"target_date,omitempty"`
	TargetEvent   *model.Event `json:"target_event,omitempty"`
	DraftTitle    string       `json:"draft_title,omitempty"`
	DraftLocation string       `json:"draft_location,omitempty"`
}

func Describe(state State) Snapshot {
	switch s := state.(type) {
	case Creating:
		date := s.TargetDate
		return Snapshot{Kind: s.Kind(), TargetDate: &date, DraftTitle: s.DraftTitle, DraftLocation: s.DraftLocation}
	case Viewing:
		event := s.TargetEvent
		return Snapshot{Kind: s.Kind(), TargetEvent: &event, DraftTitle: s.DraftTitle}
	default:
		return Snapshot{Kind: Idle{}.Kind()}
	}
}
