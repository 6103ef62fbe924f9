package rules

import (
	"time"

	"bouncehub/internal/model"
)

// ReferenceDates supplies the anchor dates a scheduling rule can offset from.
// DeliveryDate is nil when the order has no separate delivery day.
type ReferenceDates struct {
	EventDate    time.Time
	DeliveryDate *time.Time
}

// BusinessHours is the window used to flag tasks for manual review. The
// resolver itself never clamps into the window; enforcement is the caller's
// call.
type BusinessHours struct {
	OpenHour  int
	CloseHour int
}

// DefaultBusinessHours covers the delivery crew's working day.
var DefaultBusinessHours = BusinessHours{OpenHour: 8, CloseHour: 18}

// ResolveScheduledAt computes the concrete timestamp for a scheduling rule.
// Manual rules return nil: the task is created unscheduled and an admin
// picks the slot. Otherwise the named reference date shifts by OffsetDays
// calendar days and takes DefaultTime as its wall-clock time. A malformed
// DefaultTime degrades to midnight.
func ResolveScheduledAt(rule model.SchedulingRule, refs ReferenceDates) *time.Time {
	var anchor time.Time
	switch rule.RelativeTo {
	case model.RelativeToManual:
		return nil
	case model.RelativeToDeliveryDate:
		if refs.DeliveryDate == nil {
			// No delivery day booked; the event date is the best anchor left.
			anchor = refs.EventDate
		} else {
			anchor = *refs.DeliveryDate
		}
	default:
		anchor = refs.EventDate
	}

	if anchor.IsZero() {
		return nil
	}

	hour, minute := parseClock(rule.DefaultTime)
	shifted := anchor.AddDate(0, 0, rule.OffsetDays)
	resolved := time.Date(shifted.Year(), shifted.Month(), shifted.Day(), hour, minute, 0, 0, anchor.Location())
	return &resolved
}

// WithinBusinessHours reports whether t falls inside the window. Used by the
// task generator to mark out-of-window tasks as needing review when the
// rule's BusinessHoursOnly flag is set.
func WithinBusinessHours(t time.Time, window BusinessHours) bool {
	return t.Hour() >= window.OpenHour && t.Hour() < window.CloseHour
}

// parseClock reads an "HH:MM" 24-hour string, falling back to 00:00 on any
// malformed input.
func parseClock(s string) (hour, minute int) {
	parsed, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0
	}
	return parsed.Hour(), parsed.Minute()
}
