// Package ics renders events as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/model"
)

const productID = "-//lazycal//lazycal//EN"

func UID(id int64) string {
	return fmt.Sprintf("%d@lazycal", id)
}

// Build returns the events as all-day VEVENTs. DTEND is the following day,
// since iCalendar treats it as exclusive.
func Build(events []model.Event, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, event := range events {
		vevent := cal.AddEvent(UID(event.ID))
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(event.Title)
		if event.Location != "" {
			vevent.SetLocation(event.Location)
		}
		day := calendar.StartOfDay(event.Start)
		vevent.SetAllDayStartAt(day)
		vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
	}
	return cal
}

func Write(w io.Writer, events []model.Event, stamp time.Time) error {
	_, err := io.WriteString(w, Build(events, stamp).Serialize())
	return err
}

func WriteFile(path string, events []model.Event, stamp time.Time) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(file, events, stamp); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
