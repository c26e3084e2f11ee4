package calendar

import (
	"time"

	"github.com/Joseda-hg/lazycal/internal/model"
)

// Project derives the visible events for mode. Order is preserved and the
// input is never modified.
func Project(events []model.Event, mode model.FilterMode, now time.Time) []model.Event {
	var keep func(model.Event, time.Time) bool
	switch mode {
	case model.FilterPast:
		keep = IsPast
	case model.FilterUpcoming:
		keep = IsUpcoming
	default:
		result := make([]model.Event, len(events))
		copy(result, events)
		return result
	}

	result := make([]model.Event, 0, len(events))
	for _, event := range events {
		if keep(event, now) {
			result = append(result, event)
		}
	}
	return result
}
