package domain

import "time"

type AppointmentEventType string

const (
	EventAppointmentCreated AppointmentEventType = "appointment.created"
	EventAppointmentUpdated AppointmentEventType = "appointment.updated"
	EventAppointmentDeleted AppointmentEventType = "appointment.deleted"
)

// AppointmentEvent is published after an appointment write succeeds.
type AppointmentEvent struct {
	Type            AppointmentEventType `json:"type"`
	AppointmentID   string               `json:"appointmentId"`
	PatientID       string               `json:"patientId"`
	PsychologistID  string               `json:"psychologistId"`
	AppointmentDate time.Time            `json:"appointmentDate"`
	Status          AppointmentStatus    `json:"status"`
	ActorID         string               `json:"actorId,omitempty"`
	OccurredAt      time.Time            `json:"occurredAt"`
}
