package policy

import (
	"errors"
	"testing"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

var (
	admin        = &domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
	psychologist = &domain.Actor{ID: "psy-1", Role: domain.RolePsychologist}
	patient      = &domain.Actor{ID: "pat-1", Role: domain.RolePatient}
	otherPatient = &domain.Actor{ID: "pat-2", Role: domain.RolePatient}
)

func TestEvaluate_Table(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want Outcome
	}{
		{"anonymous public read", Request{Operation: OpRead, Public: true}, Allow},
		{"anonymous protected read", Request{Operation: OpRead}, RejectUnauthenticated},
		{"anonymous owned write", Request{Operation: OpWrite, Target: TargetOwned, OwnerID: "pat-1"}, RejectUnauthenticated},
		{"patient collection read", Request{Actor: patient, Operation: OpRead}, Allow},
		{"owner read", Request{Actor: patient, Operation: OpRead, Target: TargetOwned, OwnerID: "pat-1"}, Allow},
		{"owner write", Request{Actor: patient, Operation: OpWrite, Target: TargetOwned, OwnerID: "pat-1"}, Allow},
		{"owner delete", Request{Actor: patient, Operation: OpDelete, Target: TargetOwned, OwnerID: "pat-1"}, RejectForbidden},
		{"non-owner read", Request{Actor: otherPatient, Operation: OpRead, Target: TargetOwned, OwnerID: "pat-1"}, RejectForbidden},
		{"unowned resource read by patient", Request{Actor: patient, Operation: OpRead, Target: TargetOwned}, RejectForbidden},
		{"psychologist reads any patient", Request{Actor: psychologist, Operation: OpRead, Target: TargetOwned, OwnerID: "pat-1"}, Allow},
		{"psychologist writes any patient", Request{Actor: psychologist, Operation: OpWrite, Target: TargetOwned, OwnerID: "pat-1"}, Allow},
		{"psychologist delete owned", Request{Actor: psychologist, Operation: OpDelete, Target: TargetOwned, OwnerID: "pat-1"}, RejectForbidden},
		{"role gate rejects owner", Request{Actor: patient, Operation: OpDelete, Target: TargetOwned, OwnerID: "pat-1", AllowedRoles: []domain.Role{domain.RoleAdmin}}, RejectForbidden},
		{"role gate admits member", Request{Actor: psychologist, Operation: OpRead, AllowedRoles: []domain.Role{domain.RolePsychologist}}, Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.req)
			if got.Outcome != tt.want {
				t.Fatalf("Evaluate = %s (%s), want %s", got.Outcome, got.Reason, tt.want)
			}
		})
	}
}

func TestEvaluate_AdminAlwaysAllowed(t *testing.T) {
	for _, op := range []Operation{OpRead, OpWrite, OpDelete} {
		for _, target := range []Target{TargetCollection, TargetOwned} {
			req := Request{
				Actor:        admin,
				Operation:    op,
				Target:       target,
				OwnerID:      "someone-else",
				AllowedRoles: []domain.Role{domain.RolePsychologist},
			}
			if d := Evaluate(req); !d.Allowed() {
				t.Fatalf("admin rejected for %s on target %d: %s", op, target, d.Reason)
			}
		}
	}
}

func TestEvaluate_PatientCannotDeletePatientRecords(t *testing.T) {
	for _, owner := range []string{"pat-1", "pat-2", ""} {
		d := Evaluate(Request{
			Actor:        patient,
			Operation:    OpDelete,
			Target:       TargetOwned,
			OwnerID:      owner,
			AllowedRoles: []domain.Role{domain.RoleAdmin},
		})
		if d.Allowed() {
			t.Fatalf("patient allowed to delete record owned by %q", owner)
		}
	}
}

func TestDecision_Err(t *testing.T) {
	if Evaluate(Request{Operation: OpRead}).Err() == nil {
		t.Fatal("expected error for anonymous")
	}
	if err := Evaluate(Request{Operation: OpRead}).Err(); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	err := Evaluate(Request{Actor: otherPatient, Target: TargetOwned, OwnerID: "pat-1"}).Err()
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := Evaluate(Request{Actor: patient}).Err(); err != nil {
		t.Fatalf("expected nil on allow, got %v", err)
	}
}
