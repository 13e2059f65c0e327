package messaging

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// LogPublisher writes events to the structured log. It is used when no
// broker is configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev domain.AppointmentEvent) error {
	p.log.Info().
		Str("event", string(ev.Type)).
		Str("appointment_id", ev.AppointmentID).
		Str("psychologist_id", ev.PsychologistID).
		Str("status", string(ev.Status)).
		Str("actor_id", ev.ActorID).
		Time("appointment_date", ev.AppointmentDate).
		Msg("appointment event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
