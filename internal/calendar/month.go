package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazycal/internal/model"
)

const MonthLayout = "2006-01"

type Day struct {
	Date    time.Time
	InMonth bool
	Today   bool
	Events  []model.Event
}

type Month struct {
	First time.Time
	Weeks [][]Day
}

// FirstOfMonth returns midnight on the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func ParseMonth(value string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation(MonthLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", value, err)
	}
	return parsed, nil
}

func ParseWeekStart(value string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(value), "monday") {
		return time.Monday
	}
	return time.Sunday
}

// BuildMonth lays out the weeks covering first's month, padding with days of
// the neighbouring months so every week has seven cells.
func BuildMonth(first time.Time, weekStart time.Weekday, events []model.Event, now time.Time) Month {
	first = FirstOfMonth(first)
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	daysInMonth := first.AddDate(0, 1, -1).Day()
	weekCount := (offset + daysInMonth + 6) / 7

	byDay := make(map[string][]model.Event, len(events))
	for _, event := range events {
		key := event.Start.Format(DateLayout)
		byDay[key] = append(byDay[key], event)
	}

	gridStart := first.AddDate(0, 0, -offset)
	weeks := make([][]Day, 0, weekCount)
	for w := 0; w < weekCount; w++ {
		week := make([]Day, 0, 7)
		for d := 0; d < 7; d++ {
			date := gridStart.AddDate(0, 0, w*7+d)
			week = append(week, Day{
				Date:    date,
				InMonth: date.Month() == first.Month(),
				Today:   SameDay(date, now),
				Events:  byDay[date.Format(DateLayout)],
			})
		}
		weeks = append(weeks, week)
	}

	return Month{First: first, Weeks: weeks}
}

func (m Month) Title() string {
	return m.First.Format("January 2006")
}

// Find returns the week and weekday index of date, or ok=false when the date
// is outside the grid.
func (m Month) Find(date time.Time) (int, int, bool) {
	for w, week := range m.Weeks {
		for d, day := range week {
			if SameDay(day.Date, date) {
				return w, d, true
			}
		}
	}
	return 0, 0, false
}

func WeekdayHeaders(weekStart time.Weekday) []string {
	headers := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		headers = append(headers, time.Weekday((int(weekStart)+i)%7).String()[:3])
	}
	return headers
}
