package common

import "time"

// CloseDatePolicy picks the trading date whose close prices value current holdings.
type CloseDatePolicy interface {
	LastClose(now time.Time) time.Time
}

// WeekendShiftPolicy approximates the previous US trading day without a holiday
// calendar: Saturday and Tuesday..Friday go back one day, Sunday two, Monday three.
type WeekendShiftPolicy struct{}

// LastClose returns the calendar date (midnight UTC) of the most recent close.
func (WeekendShiftPolicy) LastClose(now time.Time) time.Time {
	back := 1
	switch now.Weekday() {
	case time.Sunday:
		back = 2
	case time.Monday:
		back = 3
	}
	y, m, d := now.AddDate(0, 0, -back).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LastCloseDate applies WeekendShiftPolicy to now.
func LastCloseDate(now time.Time) time.Time {
	return WeekendShiftPolicy{}.LastClose(now)
}
