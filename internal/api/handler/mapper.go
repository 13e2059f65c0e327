package handler

import (
	"time"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

func toPatientInput(req patientRequest) ports.PatientInput {
	// dateOfBirth was validated by the "date" tag.
	dob, _ := parseDate(req.DateOfBirth)
	in := ports.PatientInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: dob.UTC(),
		Gender:      domain.Gender(req.Gender),
		UserID:      req.UserID,
	}
	if a := req.Address; a != nil {
		in.Address = &domain.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country}
	}
	if ec := req.EmergencyContact; ec != nil {
		in.EmergencyContact = &domain.EmergencyContact{Name: ec.Name, Phone: ec.Phone, Relationship: ec.Relationship}
	}
	if ii := req.InsuranceInfo; ii != nil {
		in.InsuranceInfo = &domain.InsuranceInfo{Provider: ii.Provider, PolicyNumber: ii.PolicyNumber}
	}
	return in
}

func toPatientResponse(p *domain.Patient) patientResponse {
	return patientResponse{
		ID:               p.ID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		Phone:            p.Phone,
		DateOfBirth:      p.DateOfBirth.UTC().Format(time.DateOnly),
		Gender:           string(p.Gender),
		Address:          p.Address,
		EmergencyContact: p.EmergencyContact,
		InsuranceInfo:    p.InsuranceInfo,
		UserID:           p.UserID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toPatientResponses(patients []*domain.Patient) []patientResponse {
	out := make([]patientResponse, len(patients))
	for i, p := range patients {
		out[i] = toPatientResponse(p)
	}
	return out
}

func toAppointmentInput(req appointmentRequest) ports.AppointmentInput {
	// appointmentDate was validated by the "rfc3339" tag.
	at, _ := time.Parse(time.RFC3339, req.AppointmentDate)
	in := ports.AppointmentInput{
		PatientID:       req.PatientID,
		PsychologistID:  req.PsychologistID,
		AppointmentDate: at,
		Duration:        req.Duration,
		Type:            domain.AppointmentType(req.AppointmentType),
		Status:          domain.AppointmentStatus(req.Status),
		Notes:           req.Notes,
		Symptoms:        req.Symptoms,
	}
	if tp := req.TreatmentPlan; tp != nil {
		in.TreatmentPlan = &domain.TreatmentPlan{Diagnosis: tp.Diagnosis, Goals: tp.Goals, NextSteps: tp.NextSteps}
	}
	return in
}

func toAppointmentResponse(d ports.AppointmentDetail) appointmentResponse {
	a := d.Appointment
	resp := appointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		PsychologistID:  a.PsychologistID,
		AppointmentDate: a.AppointmentDate.UTC(),
		Duration:        a.Duration,
		AppointmentType: string(a.Type),
		Status:          string(a.Status),
		Notes:           a.Notes,
		Symptoms:        a.Symptoms,
		TreatmentPlan:   a.TreatmentPlan,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
	if resp.Symptoms == nil {
		resp.Symptoms = []string{}
	}
	if p := d.Patient; p != nil {
		resp.Patient = &patientSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email, Phone: p.Phone}
	}
	return resp
}

func toAppointmentResponses(details []ports.AppointmentDetail) []appointmentResponse {
	out := make([]appointmentResponse, len(details))
	for i, d := range details {
		out[i] = toAppointmentResponse(d)
	}
	return out
}

func toUserSummary(u *domain.Identity) userSummary {
	return userSummary{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Role: string(u.Role)}
}

func toProfileUser(u *domain.Identity) profileUser {
	return profileUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Role:        string(u.Role),
		AvatarURL:   u.AvatarURL,
		ProfileURL:  u.ProfileURL,
		CreatedAt:   u.CreatedAt,
	}
}
