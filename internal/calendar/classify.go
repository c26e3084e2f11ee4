package calendar

import (
	"time"

	"github.com/Joseda-hg/lazycal/internal/model"
)

const DateLayout = "2006-01-02"

func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
}

// DayBounds returns the full-day interval used for new events on date.
func DayBounds(date time.Time) (time.Time, time.Time) {
	return StartOfDay(date), EndOfDay(date)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsPast reports whether the event ended before now's calendar day began.
// A missing End falls back to Start.
func IsPast(event model.Event, now time.Time) bool {
	ref := event.End
	if ref.IsZero() {
		ref = event.Start
	}
	return ref.Before(StartOfDay(now))
}

// IsUpcoming reports whether the event starts on or after now's calendar day,
// so an event held today is upcoming and never past.
func IsUpcoming(event model.Event, now time.Time) bool {
	return !event.Start.Before(StartOfDay(now))
}

func StyleFor(event model.Event, now time.Time) model.Style {
	if IsUpcoming(event, now) {
		return model.StyleUpcoming
	}
	return model.StylePast
}
