/**
 * @description
 * Calendar helpers shared by schedule generation and the daily recompute.
 * Everything works on whole calendar days; time-of-day and timezone offsets
 * are discarded before comparing.
 */
package calc

import (
	"time"

	"github.com/rentfolio/finance-service/internal/domain"
)

// truncateToDay strips the time-of-day component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(truncateToDay(b).Sub(truncateToDay(a)).Hours() / 24)
}

// lastDayOfMonth returns the number of days in the month containing t.
func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// dueDateInMonth places dueDay inside the month containing ref, clamping down
// to the month's last actual day (due day 31 in February becomes Feb 28/29).
func dueDateInMonth(ref time.Time, dueDay int) time.Time {
	day := dueDay
	if last := lastDayOfMonth(ref); day > last {
		day = last
	}
	return time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC)
}

// WithinContract reports whether date falls inside the contract's start and
// end dates, inclusive on both ends.
func WithinContract(c domain.RentalContract, date time.Time) bool {
	d := truncateToDay(date)
	return !d.Before(truncateToDay(c.StartDate)) && !d.After(truncateToDay(c.EndDate))
}

// NextDueDate returns the contract's first due date on or after ref, rolling
// into the next month when this month's due date has already passed.
func NextDueDate(c domain.RentalContract, ref time.Time) time.Time {
	due := dueDateInMonth(ref, c.DueDay)
	if due.Before(truncateToDay(ref)) {
		nextMonth := time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		due = dueDateInMonth(nextMonth, c.DueDay)
	}
	return due
}
