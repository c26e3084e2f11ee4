// Package session holds the interaction state of one calendar session: the
// open dialog, its draft fields, and the active filter mode. Every method
// runs to completion on the caller's goroutine; callers that serve more than
// one goroutine must serialize access themselves.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/model"
)

var (
	// ErrInvalidTransition is returned for a gesture the active state does
	// not accept. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrInvariant marks a store failure the state machine should have made
	// impossible, such as editing an event that no longer exists.
	ErrInvariant = errors.New("session invariant violated")
	// ErrEmptyTitle is returned when a create is confirmed with a blank
	// title. The dialog still closes and nothing is stored.
	ErrEmptyTitle = fmt.Errorf("%w: title is required", calendar.ErrValidation)
)

type Clock func() time.Time

type Option func(*Session)

func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithFilterMode(mode model.FilterMode) Option {
	return func(s *Session) {
		s.mode = mode
	}
}

type Session struct {
	store  *calendar.Store
	mode   model.FilterMode
	state  State
	now    Clock
	logger *slog.Logger

	visible      []model.Event
	visibleDay   time.Time
	visibleValid bool
}

func New(store *calendar.Store, opts ...Option) *Session {
	s := &Session{
		store:  store,
		mode:   model.FilterAll,
		state:  Idle{},
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	store.Subscribe(func(calendar.Change) {
		s.invalidate()
	})
	return s
}

func (s *Session) SelectSlot(date time.Time) error {
	if _, ok := s.state.(Idle); !ok {
		return s.rejected("select slot")
	}
	s.state = Creating{TargetDate: calendar.StartOfDay(date)}
	s.logger.Debug("create dialog opened", "date", date.Format(calendar.DateLayout))
	return nil
}

func (s *Session) SelectEvent(id int64) error {
	if _, ok := s.state.(Idle); !ok {
		return s.rejected("select event")
	}
	event, err := s.store.Get(id)
	if err != nil {
		return err
	}
	s.state = Viewing{TargetEvent: event, DraftTitle: event.Title}
	s.logger.Debug("view dialog opened", "event_id", id)
	return nil
}

func (s *Session) SetField(field model.Field, value string) error {
	switch state := s.state.(type) {
	case Creating:
		switch field {
		case model.FieldTitle:
			state.DraftTitle = value
		case model.FieldLocation:
			state.DraftLocation = value
		default:
			return fmt.Errorf("%w: unknown field %q", calendar.ErrValidation, field)
		}
		s.state = state
		return nil
	case Viewing:
		if field != model.FieldTitle {
			return s.rejected("edit " + string(field))
		}
		state.DraftTitle = value
		s.state = state
		return nil
	default:
		return s.rejected("change field")
	}
}

// ConfirmCreate closes the create dialog and stores the draft. A blank title
// stores nothing and returns ErrEmptyTitle.
func (s *Session) ConfirmCreate() (model.Event, error) {
	state, ok := s.state.(Creating)
	if !ok {
		return model.Event{}, s.rejected("confirm create")
	}
	s.state = Idle{}

	title := strings.TrimSpace(state.DraftTitle)
	if title == "" {
		s.logger.Info("create discarded", "reason", "empty title", "date", state.TargetDate.Format(calendar.DateLayout))
		return model.Event{}, ErrEmptyTitle
	}

	start, end := calendar.DayBounds(state.TargetDate)
	created, err := s.store.Insert(model.Event{
		Title:    title,
		Location: strings.TrimSpace(state.DraftLocation),
		Start:    start,
		End:      end,
	})
	if err != nil {
		return model.Event{}, err
	}
	s.logger.Debug("event created", "event_id", created.ID, "date", start.Format(calendar.DateLayout))
	return created, nil
}

func (s *Session) CancelCreate() error {
	if _, ok := s.state.(Creating); !ok {
		return s.rejected("cancel create")
	}
	s.state = Idle{}
	return nil
}

// ConfirmEdit renames the viewed event and keeps the dialog open on it. A
// blank title counts as an aborted edit and changes nothing.
func (s *Session) ConfirmEdit(newTitle string) (model.Event, error) {
	state, ok := s.state.(Viewing)
	if !ok {
		return model.Event{}, s.rejected("confirm edit")
	}

	title := strings.TrimSpace(newTitle)
	if title == "" {
		return state.TargetEvent, nil
	}

	updated, err := s.store.Update(state.TargetEvent.ID, model.EventPatch{Title: &title})
	if err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return model.Event{}, s.violated("edit", state.TargetEvent.ID, err)
		}
		return model.Event{}, err
	}
	s.state = Viewing{TargetEvent: updated, DraftTitle: updated.Title}
	s.logger.Debug("event updated", "event_id", updated.ID)
	return updated, nil
}

func (s *Session) ConfirmDelete() error {
	state, ok := s.state.(Viewing)
	if !ok {
		return s.rejected("confirm delete")
	}

	id := state.TargetEvent.ID
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, calendar.ErrNotFound) {
			return s.violated("delete", id, err)
		}
		return err
	}
	s.state = Idle{}
	s.logger.Debug("event deleted", "event_id", id)
	return nil
}

func (s *Session) CloseView() error {
	if _, ok := s.state.(Viewing); !ok {
		return s.rejected("close view")
	}
	s.state = Idle{}
	return nil
}

func (s *Session) SetFilterMode(mode model.FilterMode) {
	if mode == s.mode {
		return
	}
	s.mode = mode
	s.invalidate()
	s.logger.Debug("filter mode changed", "mode", string(mode))
}

func (s *Session) FilterMode() model.FilterMode {
	return s.mode
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Now() time.Time {
	return s.now()
}

// VisibleEvents returns the projection of the store for the active filter
// mode. The cached result is dropped on every store mutation, every mode
// change, and whenever the current day moves on.
func (s *Session) VisibleEvents() []model.Event {
	now := s.now()
	today := calendar.StartOfDay(now)
	if !s.visibleValid || !today.Equal(s.visibleDay) {
		s.visible = calendar.Project(s.store.All(), s.mode, now)
		s.visibleDay = today
		s.visibleValid = true
	}
	result := make([]model.Event, len(s.visible))
	copy(result, s.visible)
	return result
}

func (s *Session) StyleFor(event model.Event) model.Style {
	return calendar.StyleFor(event, s.now())
}

func (s *Session) invalidate() {
	s.visibleValid = false
	s.visible = nil
}

func (s *Session) rejected(gesture string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, gesture, s.state.Kind())
}

func (s *Session) violated(op string, id int64, cause error) error {
	err := fmt.Errorf("%w: %s event %d: %w", ErrInvariant, op, id, cause)
	s.logger.Error("session invariant violated",
		"op", op,
		"event_id", id,
		"err", cause,
		"stack", string(goerrors.Wrap(err, 1).Stack()),
	)
	s.state = Idle{}
	return err
}
