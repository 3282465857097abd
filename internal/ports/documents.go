package ports

import (
	"tanker-dispatch-service/internal/domain"
	"time"
)

// Port: renders the weekly driver roster as a printable document.
type RosterRenderer interface {
	RenderRoster(weekStart time.Time, assignments []*domain.WeeklyDriverAssignment) ([]byte, error)
	ContentType() string
}
