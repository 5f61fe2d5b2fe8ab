package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2024, time.March, time.UTC)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), end)

	assert.False(t, inRange(time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC), start, end))
	assert.True(t, inRange(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start, end))
	assert.True(t, inRange(time.Date(2024, 3, 31, 23, 59, 59, 500000000, time.UTC), start, end))
	assert.False(t, inRange(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), start, end))
}

func TestMonthRange_February(t *testing.T) {
	_, end := MonthRange(2024, time.February, time.UTC)
	assert.Equal(t, 29, end.Day())

	_, end = MonthRange(2023, time.February, time.UTC)
	assert.Equal(t, 28, end.Day())
}

func TestMonthRange_December(t *testing.T) {
	start, end := MonthRange(2024, time.December, time.UTC)
	assert.Equal(t, 2024, start.Year())
	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC), end)
}

func TestWindowsAt(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, ist)

	w := WindowsAt(now, ist)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, ist), w.Today)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, ist), w.ThisMonth)
	// January rolls back into the previous year
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, ist), w.LastMonth)
}

func TestStartOfDay_ConvertsToLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, ist), StartOfDay(instant, ist))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), StartOfDay(instant, time.UTC))
}
