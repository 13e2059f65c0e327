package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

func duplicateKey(index string) error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
		Code:    11000,
		Message: fmt.Sprintf("E11000 duplicate key error collection: clinic.x index: %s dup key: { : \"v\" }", index),
	}}}
}

func TestTranslate_DuplicateKeys(t *testing.T) {
	tests := []struct {
		index     string
		wantField string
	}{
		{"email_1", "email"},
		{"github_id_1", "githubId"},
		{slotIndexName, "appointmentDate"},
	}
	for _, tt := range tests {
		t.Run(tt.index, func(t *testing.T) {
			err := translate(duplicateKey(tt.index), "thing")
			de, ok := domain.AsError(err)
			if !ok || de.Kind != domain.KindConflict {
				t.Fatalf("expected conflict, got %v", err)
			}
			if de.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, de.Field)
			}
		})
	}
}

func TestTranslate_Unavailable(t *testing.T) {
	err := translate(fmt.Errorf("find: %w", context.DeadlineExceeded), "patient")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if de, _ := domain.AsError(err); !de.Retryable() {
		t.Fatalf("expected retryable error")
	}
}

func TestTranslate_PassesDomainErrors(t *testing.T) {
	if err := translate(domain.ErrPatientNotFound, "patient"); err != domain.ErrPatientNotFound {
		t.Fatalf("expected domain error unchanged, got %v", err)
	}
	if translate(nil, "patient") != nil {
		t.Fatalf("expected nil")
	}
}

func TestObjectID_Invalid(t *testing.T) {
	if _, err := objectID("not-an-id"); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected invalid id, got %v", err)
	}
	ids := objectIDs([]string{"bad", primitive.NewObjectID().Hex()})
	if len(ids) != 1 {
		t.Fatalf("expected malformed ids skipped, got %d", len(ids))
	}
}

func TestAppointmentDoc_SlotKeyOnlyWhileHoldingSlot(t *testing.T) {
	at := time.Date(2030, 5, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	a := &domain.Appointment{
		PatientID:       primitive.NewObjectID().Hex(),
		PsychologistID:  "psy-1",
		AppointmentDate: at,
		Status:          domain.StatusScheduled,
	}

	doc, err := toAppointmentDoc(a)
	if err != nil {
		t.Fatalf("toAppointmentDoc returned error: %v", err)
	}
	if doc.SlotKey != domain.SlotKey("psy-1", at) {
		t.Fatalf("unexpected slot key %q", doc.SlotKey)
	}
	if doc.AppointmentDate.Location() != time.UTC || doc.AppointmentDate.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("appointment date not normalized: %v", doc.AppointmentDate)
	}

	a.Status = domain.StatusCancelled
	doc, _ = toAppointmentDoc(a)
	if doc.SlotKey != "" {
		t.Fatalf("cancelled appointment must not carry a slot key")
	}

	a.PatientID = "nope"
	if _, err := toAppointmentDoc(a); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected invalid id for malformed patient id, got %v", err)
	}
}

func TestPatientDoc_RoundTripOwner(t *testing.T) {
	owner := primitive.NewObjectID().Hex()
	doc := toPatientDoc(&domain.Patient{Email: "a@example.com", UserID: owner})
	if doc.UserID == nil || doc.toDomain().UserID != owner {
		t.Fatalf("owner not preserved")
	}
	if toPatientDoc(&domain.Patient{}).UserID != nil {
		t.Fatalf("unlinked patient should have no owner")
	}
}
