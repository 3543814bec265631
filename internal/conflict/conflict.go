// Package conflict holds the pure overlap and duplicate checks shared by
// timeslot templates (wall-clock "HH:MM" ranges scoped to one weekday) and
// event scheduling (absolute instants scoped to one facility). It has no
// state and touches no store.
package conflict

import (
	"fmt"
	"time"

	"courtside/pkg/model"
)

type Reason string

const (
	ReasonDuplicate Reason = "duplicate"
	ReasonOverlap   Reason = "overlap"
)

// Conflict reports which existing range a candidate collided with.
type Conflict struct {
	Reason Reason
	Start  string
	End    string
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("%s with existing range %s - %s", c.Reason, c.Start, c.End)
}

// BadRange rejects a malformed candidate before any overlap comparison.
type BadRange struct {
	Start string
	End   string
	Cause string
}

func (e *BadRange) Error() string {
	return fmt.Sprintf("invalid range %s - %s: %s", e.Start, e.End, e.Cause)
}

const clockLayout = "15:04"

// ValidateClockRange checks that both endpoints parse as "HH:MM" and that
// the range is non-empty.
func ValidateClockRange(start, end string) error {
	if _, err := time.Parse(clockLayout, start); err != nil {
		return &BadRange{Start: start, End: end, Cause: "start is not a valid HH:MM time"}
	}
	if _, err := time.Parse(clockLayout, end); err != nil {
		return &BadRange{Start: start, End: end, Cause: "end is not a valid HH:MM time"}
	}
	if start >= end {
		return &BadRange{Start: start, End: end, Cause: "start must be before end"}
	}
	return nil
}

// Overlaps reports half-open interval overlap on "HH:MM" strings. The
// strings compare lexicographically because every comparison is scoped to a
// single weekday. Touching boundaries are not an overlap.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// CheckSlot validates a candidate against the existing ranges of the same
// weekday. A byte-identical range is a duplicate; any intersection is an
// overlap; adjacency passes.
func CheckSlot(existing []model.TimeSlot, candidate model.TimeSlot) error {
	if err := ValidateClockRange(candidate.Start, candidate.End); err != nil {
		return err
	}

	for _, slot := range existing {
		if slot.Start == candidate.Start && slot.End == candidate.End {
			return &Conflict{Reason: ReasonDuplicate, Start: slot.Start, End: slot.End}
		}
		if Overlaps(candidate.Start, candidate.End, slot.Start, slot.End) {
			return &Conflict{Reason: ReasonOverlap, Start: slot.Start, End: slot.End}
		}
	}
	return nil
}

// CheckDaySlots validates a whole day's list pairwise, the all-or-nothing
// precondition for template writes.
func CheckDaySlots(slots []model.TimeSlot) error {
	for i, candidate := range slots {
		if err := CheckSlot(slots[:i], candidate); err != nil {
			return err
		}
	}
	return nil
}

// Interval is an absolute [start, end) range, used for events.
type Interval struct {
	Start time.Time
	End   time.Time
}

// ValidateInterval rejects zero or inverted instant ranges.
func ValidateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &BadRange{
			Start: start.Format(time.RFC3339),
			End:   end.Format(time.RFC3339),
			Cause: "start and end are required",
		}
	}
	if !start.Before(end) {
		return &BadRange{
			Start: start.Format(time.RFC3339),
			End:   end.Format(time.RFC3339),
			Cause: "start must be before end",
		}
	}
	return nil
}

// InstantsOverlap is the instant form of Overlaps, same half-open
// semantics.
func InstantsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// CheckInterval validates a candidate interval against existing ones on the
// same facility.
func CheckInterval(existing []Interval, candidate Interval) error {
	if err := ValidateInterval(candidate.Start, candidate.End); err != nil {
		return err
	}

	for _, iv := range existing {
		if iv.Start.Equal(candidate.Start) && iv.End.Equal(candidate.End) {
			return &Conflict{
				Reason: ReasonDuplicate,
				Start:  iv.Start.Format(time.RFC3339),
				End:    iv.End.Format(time.RFC3339),
			}
		}
		if InstantsOverlap(candidate.Start, candidate.End, iv.Start, iv.End) {
			return &Conflict{
				Reason: ReasonOverlap,
				Start:  iv.Start.Format(time.RFC3339),
				End:    iv.End.Format(time.RFC3339),
			}
		}
	}
	return nil
}
