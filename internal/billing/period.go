package billing

import "time"

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfMonth returns the first instant of t's month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// MonthRange returns the first and last instant of a calendar month.
// The end is inclusive and has nanosecond precision so a bill stamped
// 23:59:59.5 on the last day still falls inside.
func MonthRange(year int, month time.Month, loc *time.Location) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// DashboardWindows are the boundaries used for dashboard revenue figures.
type DashboardWindows struct {
	Today     time.Time
	ThisMonth time.Time
	LastMonth time.Time
}

// WindowsAt computes the dashboard boundaries for the instant now.
func WindowsAt(now time.Time, loc *time.Location) DashboardWindows {
	thisMonth := StartOfMonth(now, loc)
	return DashboardWindows{
		Today:     StartOfDay(now, loc),
		ThisMonth: thisMonth,
		LastMonth: thisMonth.AddDate(0, -1, 0),
	}
}
