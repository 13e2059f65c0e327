package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

func patientInput(email string) ports.PatientInput {
	return ports.PatientInput{
		FirstName:   "Ana",
		LastName:    "Lopez",
		Email:       email,
		Phone:       "555-0100",
		DateOfBirth: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		Gender:      domain.GenderFemale,
	}
}

func TestPatientService_Create_PatientOwnsRecord(t *testing.T) {
	svc := NewPatientService(newStubPatientRepo(), discardLogger)

	in := patientInput("  Ana@Example.com ")
	in.UserID = "someone-else"
	p, err := svc.Create(context.Background(), patientActor, in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.UserID != patientActor.ID {
		t.Fatalf("expected owner %q, got %q", patientActor.ID, p.UserID)
	}
	if p.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", p.Email)
	}
}

func TestPatientService_Create_DuplicateEmail(t *testing.T) {
	svc := NewPatientService(newStubPatientRepo(), discardLogger)
	ctx := context.Background()

	if _, err := svc.Create(ctx, psychologistActor, patientInput("ana@example.com")); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	_, err := svc.Create(ctx, psychologistActor, patientInput("ANA@example.com"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	de, _ := domain.AsError(err)
	if de.Field != "email" {
		t.Fatalf("expected conflict on email, got %q", de.Field)
	}
}

func TestPatientService_Access(t *testing.T) {
	svc := NewPatientService(newStubPatientRepo(), discardLogger)
	ctx := context.Background()

	owned, err := svc.Create(ctx, patientActor, patientInput("ana@example.com"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	stranger := &domain.Actor{ID: "user-other", Role: domain.RolePatient}

	tests := []struct {
		name    string
		actor   *domain.Actor
		wantErr error
	}{
		{"anonymous", nil, domain.ErrUnauthenticated},
		{"owner", patientActor, nil},
		{"other patient", stranger, domain.ErrForbidden},
		{"psychologist", psychologistActor, nil},
		{"admin", adminActor, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Get(ctx, tt.actor, owned.ID)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Get returned error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := svc.Update(ctx, stranger, owned.ID, patientInput("x@example.com")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden update, got %v", err)
	}
}

func TestPatientService_Update_OnlyAdminRelinks(t *testing.T) {
	svc := NewPatientService(newStubPatientRepo(), discardLogger)
	ctx := context.Background()

	p, err := svc.Create(ctx, patientActor, patientInput("ana@example.com"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	in := patientInput("ana@example.com")
	in.Phone = "555-0199"
	in.UserID = "hijack"
	updated, err := svc.Update(ctx, patientActor, p.ID, in)
	if err != nil {
		t.Fatalf("owner Update returned error: %v", err)
	}
	if updated.UserID != patientActor.ID || updated.Phone != "555-0199" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	in.UserID = "user-new"
	updated, err = svc.Update(ctx, adminActor, p.ID, in)
	if err != nil {
		t.Fatalf("admin Update returned error: %v", err)
	}
	if updated.UserID != "user-new" {
		t.Fatalf("admin relink ignored, got %q", updated.UserID)
	}
}

func TestPatientService_Delete_RoleGate(t *testing.T) {
	svc := NewPatientService(newStubPatientRepo(), discardLogger)
	ctx := context.Background()

	p, err := svc.Create(ctx, patientActor, patientInput("ana@example.com"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	for _, actor := range []*domain.Actor{patientActor, psychologistActor} {
		if err := svc.Delete(ctx, actor, p.ID); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected forbidden, got %v", actor.Role, err)
		}
	}
	if err := svc.Delete(ctx, adminActor, p.ID); err != nil {
		t.Fatalf("admin Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, adminActor, p.ID); !errors.Is(err, domain.ErrPatientNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestPatientService_List_RequiresAuthentication(t *testing.T) {
	svc := NewPatientService(newStubPatientRepo(), discardLogger)

	if _, err := svc.List(context.Background(), nil); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	list, err := svc.List(context.Background(), patientActor)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v, %v", list, err)
	}
}
