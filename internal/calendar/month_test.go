package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/lazycal/internal/model"
)

func TestBuildMonthSundayStart(t *testing.T) {
	// March 2023 starts on a Wednesday and has 31 days.
	first := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.Local)
	standup := dayEvent("Standup", time.Date(2023, time.March, 15, 0, 0, 0, 0, time.Local))

	month := BuildMonth(first, time.Sunday, []model.Event{standup}, fixedNow)

	require.Len(t, month.Weeks, 5)
	for _, week := range month.Weeks {
		require.Len(t, week, 7)
	}
	assert.Equal(t, time.Date(2023, time.February, 26, 0, 0, 0, 0, time.Local), month.Weeks[0][0].Date)
	assert.False(t, month.Weeks[0][0].InMonth)
	assert.True(t, month.Weeks[0][3].InMonth)
	assert.Equal(t, 1, month.Weeks[0][3].Date.Day())
	assert.Equal(t, "March 2023", month.Title())

	w, d, ok := month.Find(standup.Start)
	require.True(t, ok)
	assert.Equal(t, []model.Event{standup}, month.Weeks[w][d].Events)
	assert.True(t, month.Weeks[w][d].Today)
}

func TestBuildMonthMondayStart(t *testing.T) {
	first := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.Local)

	month := BuildMonth(first, time.Monday, nil, fixedNow)

	assert.Equal(t, time.Monday, month.Weeks[0][0].Date.Weekday())
	assert.Equal(t, time.Date(2023, time.February, 27, 0, 0, 0, 0, time.Local), month.Weeks[0][0].Date)
	last := month.Weeks[len(month.Weeks)-1]
	assert.Equal(t, time.Date(2023, time.April, 2, 0, 0, 0, 0, time.Local), last[6].Date)
}

func TestWeekdayHeaders(t *testing.T) {
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, WeekdayHeaders(time.Sunday))
	assert.Equal(t, "Mon", WeekdayHeaders(time.Monday)[0])
	assert.Equal(t, "Sun", WeekdayHeaders(time.Monday)[6])
}

func TestParseMonthAndWeekStart(t *testing.T) {
	parsed, err := ParseMonth("2023-03", time.Local)
	require.NoError(t, err)
	assert.Equal(t, time.March, parsed.Month())

	_, err = ParseMonth("March", time.Local)
	assert.Error(t, err)

	assert.Equal(t, time.Monday, ParseWeekStart("Monday"))
	assert.Equal(t, time.Sunday, ParseWeekStart(""))
}
