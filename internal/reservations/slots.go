package reservations

import (
	"errors"
	"fmt"
	"time"
)

// Typed failures surfaced to the orchestrator. Slot conflicts and invalid
// slots become user-facing chat messages, not system errors.
var (
	ErrInvalidSlot       = errors.New("reservations: requested slot is not offered")
	ErrInvalidDate       = errors.New("reservations: invalid date, use YYYY-MM-DD")
	ErrSlotAlreadyBooked = errors.New("reservations: slot already booked")
)

const (
	// Daily bookable window: first start at 09:00, last start strictly
	// before 16:00.
	openingHour = 9
	closingHour = 16

	slotLayout = "2006-01-02 15:04"
	dateLayout = "2006-01-02"

	// SlotDuration is the length of one bookable slot.
	SlotDuration = time.Hour

	// DefaultLeadTime drops slots starting less than this far in the
	// future at the moment of generation.
	DefaultLeadTime = 10 * time.Minute
)

// GenerateSlots produces the canonical ordered hourly slot identifiers for
// the given day, skipping slots that start less than the lead time after
// now. The result is only valid for the instant of the call.
func GenerateSlots(day time.Time, now time.Time, lead time.Duration) []string {
	var slots []string
	cutoff := now.Add(lead)
	for hour := openingHour; hour < closingHour; hour++ {
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
		if start.Before(cutoff) {
			continue
		}
		slots = append(slots, start.Format(slotLayout))
	}
	return slots
}

// ParseSlot validates a slot identifier and returns its start instant.
func ParseSlot(slot string) (time.Time, error) {
	start, err := time.ParseInLocation(slotLayout, slot, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	if start.Minute() != 0 || start.Hour() < openingHour || start.Hour() >= closingHour {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return start, nil
}

// ParseDate validates a calendar date in ISO form.
func ParseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day, nil
}

// SlotDate extracts the calendar-date component of a slot identifier.
func SlotDate(slot string) (string, error) {
	start, err := ParseSlot(slot)
	if err != nil {
		return "", err
	}
	return start.Format(dateLayout), nil
}
