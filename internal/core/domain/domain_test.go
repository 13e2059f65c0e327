package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestError_IsMatchesKindAndMessage(t *testing.T) {
	err := fmt.Errorf("get patient: %w", ErrPatientNotFound)

	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected kind match against ErrNotFound")
	}
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatal("expected exact match against ErrPatientNotFound")
	}
	if errors.Is(err, ErrAppointmentNotFound) {
		t.Fatal("different message must not match")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("different kind must not match")
	}
}

func TestError_SlotConflictCarriesReference(t *testing.T) {
	err := NewSlotConflict("abc")

	if !errors.Is(err, ErrSlotTaken) {
		t.Fatal("slot conflict must match ErrSlotTaken")
	}
	de, ok := AsError(fmt.Errorf("wrap: %w", err))
	if !ok {
		t.Fatal("expected domain error")
	}
	if de.ConflictID != "abc" || de.Field != "appointmentDate" {
		t.Fatalf("unexpected conflict payload: %+v", de)
	}
}

func TestError_ValidationMessageListsDetails(t *testing.T) {
	err := NewValidationError("email must be a valid email address", "phone is required")
	want := "validation failed: email must be a valid email address; phone is required"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestError_Retryable(t *testing.T) {
	if !NewUnavailableError("store unavailable", errors.New("i/o timeout")).Retryable() {
		t.Fatal("infrastructure errors are retryable")
	}
	if NewConflictError("email", "duplicate").Retryable() {
		t.Fatal("conflicts are not retryable")
	}
}

func TestAppointment_ConflictsWith(t *testing.T) {
	at := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	base := Appointment{ID: "a", PsychologistID: "c1", AppointmentDate: at, Status: StatusScheduled}

	tests := []struct {
		name  string
		other Appointment
		want  bool
	}{
		{"same clinician same time", Appointment{ID: "b", PsychologistID: "c1", AppointmentDate: at, Status: StatusScheduled}, true},
		{"same instant other zone", Appointment{ID: "b", PsychologistID: "c1", AppointmentDate: at.In(time.FixedZone("X", 3600)), Status: StatusCompleted}, true},
		{"sub-millisecond difference", Appointment{ID: "b", PsychologistID: "c1", AppointmentDate: at.Add(500 * time.Microsecond), Status: StatusScheduled}, true},
		{"other cancelled", Appointment{ID: "b", PsychologistID: "c1", AppointmentDate: at, Status: StatusCancelled}, false},
		{"other clinician", Appointment{ID: "b", PsychologistID: "c2", AppointmentDate: at, Status: StatusScheduled}, false},
		{"overlapping but not identical", Appointment{ID: "b", PsychologistID: "c1", AppointmentDate: at.Add(15 * time.Minute), Status: StatusScheduled}, false},
		{"itself", Appointment{ID: "a", PsychologistID: "c1", AppointmentDate: at, Status: StatusScheduled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := tt.other
			if got := base.ConflictsWith(&other); got != tt.want {
				t.Fatalf("ConflictsWith = %v, want %v", got, tt.want)
			}
		})
	}

	cancelled := base
	cancelled.Status = StatusCancelled
	if cancelled.ConflictsWith(&Appointment{ID: "b", PsychologistID: "c1", AppointmentDate: at, Status: StatusScheduled}) {
		t.Fatal("a cancelled appointment never conflicts")
	}
}

func TestSlotKey_NormalizesZone(t *testing.T) {
	at := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	if SlotKey("c1", at) != SlotKey("c1", at.In(time.FixedZone("Y", -7200))) {
		t.Fatal("slot key must not depend on the time zone")
	}
	if SlotKey("c1", at) == SlotKey("c2", at) {
		t.Fatal("slot key must depend on the clinician")
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	if Role("client").Valid() {
		t.Fatal("unknown role must be invalid")
	}
}
