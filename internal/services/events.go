package services

import (
	"context"
	"tanker-dispatch-service/internal/platform/logger"
	"tanker-dispatch-service/internal/ports"
	"time"
)

const (
	EventAssignmentCreated = "assignments.created"
	EventAssignmentRemoved = "assignments.removed"
	EventWeekAutoAssigned  = "assignments.auto_assigned"
	EventWeekCleared       = "assignments.week_cleared"
	EventTripAssigned      = "trips.assigned"
)

type AssignmentEvent struct {
	AssignmentID int       `json:"assignment_id,omitempty"`
	TripGroupID  int       `json:"trip_group_id,omitempty"`
	DriverID     int       `json:"driver_id,omitempty"`
	WeekStart    string    `json:"week_start"`
	Count        int       `json:"count,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type TripAssignedEvent struct {
	TripID       int       `json:"trip_id"`
	TankerID     int       `json:"tanker_id"`
	DriverID     *int      `json:"driver_id,omitempty"`
	ScheduleDate string    `json:"schedule_date"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// notifier publishes after commit. A failed publish is logged and never
// undoes the committed change.
type notifier struct {
	pub ports.EventPublisher
	log *logger.Logger
}

func (n notifier) publish(ctx context.Context, routingKey string, payload any) {
	if n.pub == nil {
		return
	}
	if err := n.pub.Publish(ctx, routingKey, payload); err != nil {
		n.log.Error(ctx, "event_publish_failed", "Failed to publish event", err, map[string]any{"routing_key": routingKey})
	}
}
