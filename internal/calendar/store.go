package calendar

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Joseda-hg/lazycal/internal/model"
)

var (
	ErrNotFound   = errors.New("event not found")
	ErrValidation = errors.New("validation error")
)

type ChangeKind string

const (
	ChangeInserted ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
)

// Change describes one successful mutation. Before is zero for inserts and
// After is zero for deletes.
type Change struct {
	Kind   ChangeKind
	Before model.Event
	After  model.Event
}

// EventID returns the id of the event the change applies to.
func (c Change) EventID() int64 {
	if c.Kind == ChangeDeleted {
		return c.Before.ID
	}
	return c.After.ID
}

// Observer is called after every successful mutation, once the store is
// consistent again. Observers must not mutate the store.
type Observer func(Change)

// Store is the authoritative in-memory collection of events for one session.
// Iteration follows insertion order. Ids come from a counter and are never
// handed out twice, even after the event holding one is deleted.
type Store struct {
	events    []model.Event
	nextID    int64
	observers []Observer
}

func NewStore() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	s.observers = append(s.observers, observer)
}

func (s *Store) Insert(event model.Event) (model.Event, error) {
	if err := validateEvent(event); err != nil {
		return model.Event{}, err
	}

	event.ID = s.nextID
	s.nextID++
	s.events = append(s.events, event)

	s.notify(Change{Kind: ChangeInserted, After: event})
	return event, nil
}

func (s *Store) Update(id int64, patch model.EventPatch) (model.Event, error) {
	index := s.indexOf(id)
	if index < 0 {
		return model.Event{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	before := s.events[index]
	after := before
	if patch.Title != nil {
		after.Title = *patch.Title
	}
	if err := validateEvent(after); err != nil {
		return model.Event{}, err
	}

	s.events[index] = after
	s.notify(Change{Kind: ChangeUpdated, Before: before, After: after})
	return after, nil
}

func (s *Store) Delete(id int64) error {
	index := s.indexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	before := s.events[index]
	events := make([]model.Event, 0, len(s.events)-1)
	events = append(events, s.events[:index]...)
	events = append(events, s.events[index+1:]...)
	s.events = events

	s.notify(Change{Kind: ChangeDeleted, Before: before})
	return nil
}

func (s *Store) Get(id int64) (model.Event, error) {
	index := s.indexOf(id)
	if index < 0 {
		return model.Event{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return s.events[index], nil
}

// All returns a snapshot; later mutations never show through it.
func (s *Store) All() []model.Event {
	result := make([]model.Event, len(s.events))
	copy(result, s.events)
	return result
}

func (s *Store) Len() int {
	return len(s.events)
}

func (s *Store) indexOf(id int64) int {
	for i, event := range s.events {
		if event.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) notify(change Change) {
	for _, observer := range s.observers {
		observer(change)
	}
}

func validateEvent(event model.Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if event.End.Before(event.Start) {
		return fmt.Errorf("%w: end is before start", ErrValidation)
	}
	if !SameDay(event.Start, event.End) {
		return fmt.Errorf("%w: start and end must fall on the same day", ErrValidation)
	}
	return nil
}
