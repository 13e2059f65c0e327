package ports

import (
	"context"
	"time"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// AppointmentInput is the DTO passed from the transport layer to AppointmentService.
type AppointmentInput struct {
	PatientID       string
	PsychologistID  string
	AppointmentDate time.Time
	Duration        int
	Type            domain.AppointmentType
	// Status defaults to Scheduled when empty.
	Status        domain.AppointmentStatus
	Notes         string
	Symptoms      []string
	TreatmentPlan *domain.TreatmentPlan
}

// AppointmentDetail is an appointment with its patient resolved. Patient is
// nil when the referenced record no longer exists.
type AppointmentDetail struct {
	*domain.Appointment
	Patient *domain.Patient
}

// AppointmentService defines use-case operations for appointments.
type AppointmentService interface {
	List(ctx context.Context, actor *domain.Actor) ([]AppointmentDetail, error)
	Get(ctx context.Context, actor *domain.Actor, id string) (*AppointmentDetail, error)
	ListByPatient(ctx context.Context, actor *domain.Actor, patientID string) ([]AppointmentDetail, error)
	Create(ctx context.Context, actor *domain.Actor, in AppointmentInput) (*AppointmentDetail, error)
	Update(ctx context.Context, actor *domain.Actor, id string, in AppointmentInput) (*AppointmentDetail, error)
	Delete(ctx context.Context, actor *domain.Actor, id string) error
}

// SlotResult is the answer of the scheduling-conflict check.
type SlotResult struct {
	Available bool
	Conflict  *domain.Appointment
}
