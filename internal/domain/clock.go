package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

// ClockTime is a time of day in minutes since midnight. 1440 is accepted as an
// end-of-day marker so a shift may run until midnight.
type ClockTime int

var ErrInvalidClockTime = errors.New("invalid clock time")

// ParseClockTime accepts "HH:MM" or "HH:MM:SS".
func ParseClockTime(in string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(in), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, in)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, in)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, in)
	}

	c := ClockTime(h*60 + m)
	if h < 0 || m < 0 || m > 59 || !c.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClockTime, in)
	}
	return c, nil
}

func (c ClockTime) Valid() bool {
	return c >= 0 && c <= MinutesPerDay
}

func (c ClockTime) Minutes() int {
	return int(c)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	v, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Scan reads minute-of-day integer columns.
func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*c = ClockTime(v)
	case int32:
		*c = ClockTime(v)
	case int:
		*c = ClockTime(v)
	case []byte:
		return c.UnmarshalText(v)
	case string:
		return c.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("scan clock time: unsupported type %T", src)
	}

	if !c.Valid() {
		return fmt.Errorf("scan clock time: %w: %d", ErrInvalidClockTime, int(*c))
	}
	return nil
}

func (c ClockTime) Value() (driver.Value, error) {
	return int64(c), nil
}
