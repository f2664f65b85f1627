package booking

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format of booking dates.
const DateLayout = "2006-01-02"

// Slot identifies one bookable unit: a room on a date during a named time slot.
// At most one booking may occupy a slot.
type Slot struct {
	RoomNumber string
	Date       string
	TimeSlot   string
}

// NewSlot trims every component.
func NewSlot(roomNumber, date, timeSlot string) Slot {
	return Slot{
		RoomNumber: strings.TrimSpace(roomNumber),
		Date:       strings.TrimSpace(date),
		TimeSlot:   strings.TrimSpace(timeSlot),
	}
}

// Complete reports whether every component is non-empty.
func (s Slot) Complete() bool {
	return s.RoomNumber != "" && s.Date != "" && s.TimeSlot != ""
}

// Key renders the slot as a stable string, e.g. for log attributes.
func (s Slot) Key() string {
	return s.RoomNumber + "|" + s.Date + "|" + s.TimeSlot
}

// ValidDate reports whether date is a real calendar day in DateLayout.
func ValidDate(date string) bool {
	parsed, err := time.Parse(DateLayout, date)
	return err == nil && parsed.Format(DateLayout) == date
}
