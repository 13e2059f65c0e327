package ports

import (
	"context"
	"time"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// AppointmentRepository persists appointments.
//
// Create and Update must reject a write that would give a clinician two
// non-cancelled appointments at the same instant with domain.ErrSlotTaken,
// even when the caller's own conflict check raced another writer.
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	FindByID(ctx context.Context, id string) (*domain.Appointment, error)
	List(ctx context.Context) ([]*domain.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	Delete(ctx context.Context, id string) error
	// FindActiveAtSlot returns a non-cancelled appointment of psychologistID at
	// exactly at, skipping excludeID, or nil when the slot is free.
	FindActiveAtSlot(ctx context.Context, psychologistID string, at time.Time, excludeID string) (*domain.Appointment, error)
}
