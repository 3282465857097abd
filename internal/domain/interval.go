package domain

import "errors"

var ErrInvalidTimeRange = errors.New("end time must be after start time")

// Interval is a half-open time-of-day range [Start, End).
type Interval struct {
	Start ClockTime
	End   ClockTime
}

func NewInterval(start, end ClockTime) (Interval, error) {
	if !start.Valid() || !end.Valid() || end <= start {
		return Interval{}, ErrInvalidTimeRange
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
// Ranges that only touch at a boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd ClockTime) bool {
	return aStart < bEnd && bStart < aEnd
}

func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

func (i Interval) DurationMinutes() int {
	return int(i.End - i.Start)
}
