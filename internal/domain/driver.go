package domain

import (
	"errors"
	"strings"
	"time"
)

type DriverType string

const (
	DriverInternal DriverType = "internal"
	Driver3PL      DriverType = "3pl"
)

type Driver struct {
	DriverID   int
	Name       string
	EmployeeID string
	DriverType DriverType
	Phone      string
	Lifecycle  Lifecycle
}

// ScheduleStatus is a driver's availability on one date.
type ScheduleStatus string

const (
	ScheduleWorking ScheduleStatus = "working"
	ScheduleOff     ScheduleStatus = "off"
	ScheduleHoliday ScheduleStatus = "holiday"
	ScheduleFloat   ScheduleStatus = "float"
)

var ErrInvalidScheduleStatus = errors.New("invalid driver schedule status")

func ParseScheduleStatus(in string) (ScheduleStatus, error) {
	s := ScheduleStatus(strings.ToLower(strings.TrimSpace(in)))
	switch s {
	case ScheduleWorking, ScheduleOff, ScheduleHoliday, ScheduleFloat:
		return s, nil
	default:
		return "", ErrInvalidScheduleStatus
	}
}

type DriverSchedule struct {
	DriverID int
	Date     time.Time
	Status   ScheduleStatus
}
