// Package schedule resolves user-entered delivery slots into instants in the
// platform's fixed operating timezone.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

var timeLayouts = []string{"15:04", "3:04 PM", "03:04 PM", "3:04PM", "03:04PM"}

// ParseSlot parses a scheduled time in 24-hour "HH:MM" or 12-hour
// "HH:MM AM/PM" form and returns the hour and minute.
func ParseSlot(raw string) (hour, minute int, err error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return 0, 0, fmt.Errorf("empty scheduled time")
	}
	for _, layout := range timeLayouts {
		if parsed, parseErr := time.Parse(layout, trimmed); parseErr == nil {
			return parsed.Hour(), parsed.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("unparsable scheduled time %q", raw)
}

// Normalize renders a parsed slot as zero-padded 24-hour "HH:MM", the form the
// digest uses for its lexical ascending sort.
func Normalize(raw string) (string, error) {
	hour, minute, err := ParseSlot(raw)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// DeliveryInstant combines the scheduled calendar date with the parsed slot in
// the supplied location.
func DeliveryInstant(date time.Time, slot string, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseSlot(slot)
	if err != nil {
		return time.Time{}, err
	}
	d := date.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc), nil
}

// DayBounds returns [start-of-day, start-of-next-day) for the instant's
// calendar date in the supplied location.
func DayBounds(at time.Time, loc *time.Location) (time.Time, time.Time) {
	local := at.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// NextDailyOccurrence returns the next wall-clock occurrence of "HH:MM" in loc
// strictly after the given instant.
func NextDailyOccurrence(after time.Time, slot string, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseSlot(slot)
	if err != nil {
		return time.Time{}, err
	}
	local := after.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
