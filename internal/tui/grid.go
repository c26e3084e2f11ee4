package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazycal/internal/calendar"
	"github.com/Joseda-hg/lazycal/internal/model"
)

const (
	ansiReset   = "\x1b[0m"
	ansiReverse = "\x1b[7m"
	ansiDim     = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
)

type styleFunc func(model.Event) model.Style

// gridMetrics is the cell size used for the last render, kept so mouse
// clicks can be mapped back to a day.
type gridMetrics struct {
	cellWidth  int
	cellHeight int
}

func computeGridMetrics(width, height, weeks int) gridMetrics {
	if weeks <= 0 {
		weeks = 1
	}
	return gridMetrics{
		cellWidth:  max(width/7, 4),
		cellHeight: max((height-1)/weeks, 2),
	}
}

// formatMonth renders the grid as text lines: one header row, then
// cellHeight lines per week holding the day number and event titles.
func formatMonth(grid calendar.Month, cursor time.Time, metrics gridMetrics, weekStart time.Weekday, style styleFunc) []string {
	lines := make([]string, 0, 1+len(grid.Weeks)*metrics.cellHeight)

	var header strings.Builder
	for _, name := range calendar.WeekdayHeaders(weekStart) {
		header.WriteString(pad(name, metrics.cellWidth))
	}
	lines = append(lines, header.String())

	for _, week := range grid.Weeks {
		for row := 0; row < metrics.cellHeight; row++ {
			var line strings.Builder
			for _, day := range week {
				line.WriteString(formatCellRow(day, row, cursor, metrics, style))
			}
			lines = append(lines, line.String())
		}
	}
	return lines
}

func formatCellRow(day calendar.Day, row int, cursor time.Time, metrics gridMetrics, style styleFunc) string {
	width := metrics.cellWidth
	if row == 0 {
		label := fmt.Sprintf("%2d", day.Date.Day())
		if day.Today {
			label += "*"
		}
		text := pad(label, width-1)
		switch {
		case calendar.SameDay(day.Date, cursor):
			text = ansiReverse + text + ansiReset
		case !day.InMonth:
			text = ansiDim + text + ansiReset
		}
		return text + " "
	}

	index := row - 1
	if index >= len(day.Events) {
		return pad("", width)
	}
	if row == metrics.cellHeight-1 && len(day.Events) > metrics.cellHeight-1 {
		more := len(day.Events) - index
		return pad(fmt.Sprintf("+%d more", more), width)
	}
	event := day.Events[index]
	return colorize(pad(event.Title, width-1), style(event)) + " "
}

func formatEventSummary(event model.Event) string {
	location := event.Location
	if location == "" {
		location = "no location"
	}
	return fmt.Sprintf("%s | %s", event.Title, location)
}

func eventsOn(events []model.Event, date time.Time) []model.Event {
	result := make([]model.Event, 0)
	for _, event := range events {
		if calendar.SameDay(event.Start, date) {
			result = append(result, event)
		}
	}
	return result
}

func colorize(text string, style model.Style) string {
	if style == model.StyleUpcoming {
		return ansiGreen + text + ansiReset
	}
	return ansiRed + text + ansiReset
}

// pad truncates or right-pads text to exactly width runes.
func pad(text string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) > width {
		if width == 1 {
			return string(runes[:1])
		}
		return string(runes[:width-1]) + "~"
	}
	return text + strings.Repeat(" ", width-len(runes))
}
