package service

import (
	"context"
	"fmt"
	"time"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

// ConflictChecker guards the one-appointment-per-clinician-per-instant
// invariant at create and update time.
//
// Only exact instant equality counts as a conflict; overlapping appointments
// that start at different times are not detected.
type ConflictChecker struct {
	repo ports.AppointmentRepository
}

func NewConflictChecker(repo ports.AppointmentRepository) *ConflictChecker {
	return &ConflictChecker{repo: repo}
}

// Check reports whether psychologistID is free at at. excludeID is the
// appointment being updated, which never conflicts with itself.
func (c *ConflictChecker) Check(ctx context.Context, psychologistID string, at time.Time, excludeID string) (ports.SlotResult, error) {
	existing, err := c.repo.FindActiveAtSlot(ctx, psychologistID, domain.NormalizeSlotTime(at), excludeID)
	if err != nil {
		return ports.SlotResult{}, fmt.Errorf("check slot: %w", err)
	}

	probe := &domain.Appointment{
		ID:              excludeID,
		PsychologistID:  psychologistID,
		AppointmentDate: at,
		Status:          domain.StatusScheduled,
	}
	if existing == nil || !probe.ConflictsWith(existing) {
		return ports.SlotResult{Available: true}, nil
	}
	return ports.SlotResult{Conflict: existing}, nil
}

// Ensure is Check turned into an error: a ConflictError naming the
// appointment that holds the slot.
func (c *ConflictChecker) Ensure(ctx context.Context, psychologistID string, at time.Time, excludeID string) error {
	res, err := c.Check(ctx, psychologistID, at, excludeID)
	if err != nil {
		return err
	}
	if !res.Available {
		return domain.NewSlotConflict(res.Conflict.ID)
	}
	return nil
}
