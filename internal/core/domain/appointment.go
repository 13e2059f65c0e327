package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "Scheduled"
	StatusCompleted   AppointmentStatus = "Completed"
	StatusCancelled   AppointmentStatus = "Cancelled"
	StatusNoShow      AppointmentStatus = "No-show"
	StatusRescheduled AppointmentStatus = "Rescheduled"
)

type AppointmentType string

const (
	TypeInitialConsultation AppointmentType = "Initial Consultation"
	TypeTherapySession      AppointmentType = "Therapy Session"
	TypeFollowUp            AppointmentType = "Follow-up"
	TypeCrisisIntervention  AppointmentType = "Crisis Intervention"
	TypeAssessment          AppointmentType = "Assessment"
)

const (
	MinDurationMinutes = 30
	MaxDurationMinutes = 120
)

type TreatmentPlan struct {
	Diagnosis string   `json:"diagnosis,omitempty"`
	Goals     []string `json:"goals,omitempty"`
	NextSteps string   `json:"nextSteps,omitempty"`
}

// Appointment books a clinician for a patient at a given instant.
type Appointment struct {
	ID              string
	PatientID       string
	PsychologistID  string
	AppointmentDate time.Time
	Duration        int
	Type            AppointmentType
	Status          AppointmentStatus
	Notes           string
	Symptoms        []string
	TreatmentPlan   *TreatmentPlan
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HoldsSlot reports whether the appointment occupies its clinician's slot.
func (a *Appointment) HoldsSlot() bool {
	return a.Status != StatusCancelled
}

// ConflictsWith reports whether a and b violate the scheduling invariant:
// same clinician, same instant, both holding their slot. An appointment
// never conflicts with itself.
func (a *Appointment) ConflictsWith(b *Appointment) bool {
	if a == nil || b == nil {
		return false
	}
	if a.ID != "" && a.ID == b.ID {
		return false
	}
	if !a.HoldsSlot() || !b.HoldsSlot() {
		return false
	}
	return a.PsychologistID == b.PsychologistID &&
		NormalizeSlotTime(a.AppointmentDate).Equal(NormalizeSlotTime(b.AppointmentDate))
}

// NormalizeSlotTime truncates t to the precision the store keeps (milliseconds, UTC).
func NormalizeSlotTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// SlotKey identifies a clinician's slot. Two active appointments must never share one.
func SlotKey(psychologistID string, at time.Time) string {
	return fmt.Sprintf("%s|%d", psychologistID, NormalizeSlotTime(at).UnixMilli())
}
