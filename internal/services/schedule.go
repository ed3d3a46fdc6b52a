package services

import "time"

// MaxScheduledPayments caps the installments generated for one lease.
const MaxScheduledPayments = 12

// PaymentSchedule returns monthly due dates starting at start and not after
// end. Each date is computed from start, so a lease starting on the 31st
// falls due on the last day of shorter months and returns to the 31st after.
func PaymentSchedule(start, end time.Time) []time.Time {
	var dues []time.Time
	for i := 0; i < MaxScheduledPayments; i++ {
		due := AddMonths(start, i)
		if due.After(end) {
			break
		}
		dues = append(dues, due)
	}
	return dues
}

// AddMonths adds n calendar months to t, clamping the day to the last day
// of the resulting month.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
