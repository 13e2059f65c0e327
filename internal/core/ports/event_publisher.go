package ports

import (
	"context"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// EventPublisher delivers appointment events to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.AppointmentEvent) error
	Close() error
}

// EventNotifier accepts events for asynchronous publication. Services use it
// so a slow broker never delays a response.
type EventNotifier interface {
	Enqueue(event domain.AppointmentEvent)
}
