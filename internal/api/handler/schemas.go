package handler

import (
	"time"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	Details    []string `json:"details,omitempty"`
	Field      string   `json:"field,omitempty"`
	ConflictID string   `json:"conflictId,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Patients ---

type addressRequest struct {
	Street  string `json:"street"  validate:"max=100"`
	City    string `json:"city"    validate:"max=50"`
	State   string `json:"state"   validate:"max=50"`
	ZipCode string `json:"zipCode" validate:"max=20"`
	Country string `json:"country" validate:"max=50"`
}

type emergencyContactRequest struct {
	Name         string `json:"name"         validate:"max=100"`
	Phone        string `json:"phone"        validate:"omitempty,min=10"`
	Relationship string `json:"relationship" validate:"max=50"`
}

type insuranceInfoRequest struct {
	Provider     string `json:"provider"     validate:"max=100"`
	PolicyNumber string `json:"policyNumber" validate:"max=50"`
}

type patientRequest struct {
	FirstName        string                   `json:"firstName"        validate:"required,max=50"`
	LastName         string                   `json:"lastName"         validate:"required,max=50"`
	Email            string                   `json:"email"            validate:"required,email,max=100"`
	Phone            string                   `json:"phone"            validate:"required,min=10"`
	DateOfBirth      string                   `json:"dateOfBirth"      validate:"required,date"`
	Gender           string                   `json:"gender"           validate:"required,oneof=Male Female Other 'Prefer not to say'"`
	Address          *addressRequest          `json:"address"`
	EmergencyContact *emergencyContactRequest `json:"emergencyContact"`
	InsuranceInfo    *insuranceInfoRequest    `json:"insuranceInfo"`
	UserID           string                   `json:"userId"           validate:"omitempty,objectid"`
}

type patientResponse struct {
	ID               string                   `json:"id"`
	FirstName        string                   `json:"firstName"`
	LastName         string                   `json:"lastName"`
	Email            string                   `json:"email"`
	Phone            string                   `json:"phone"`
	DateOfBirth      string                   `json:"dateOfBirth"`
	Gender           string                   `json:"gender"`
	Address          *domain.Address          `json:"address,omitempty"`
	EmergencyContact *domain.EmergencyContact `json:"emergencyContact,omitempty"`
	InsuranceInfo    *domain.InsuranceInfo    `json:"insuranceInfo,omitempty"`
	UserID           string                   `json:"userId,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// --- Appointments ---

type treatmentPlanRequest struct {
	Diagnosis string   `json:"diagnosis" validate:"max=500"`
	Goals     []string `json:"goals"     validate:"omitempty,dive,max=200"`
	NextSteps string   `json:"nextSteps" validate:"max=1000"`
}

type appointmentRequest struct {
	PatientID       string                `json:"patientId"       validate:"required,objectid"`
	PsychologistID  string                `json:"psychologistId"  validate:"required,objectid"`
	AppointmentDate string                `json:"appointmentDate" validate:"required,rfc3339"`
	Duration        int                   `json:"duration"        validate:"required,min=30,max=120"`
	AppointmentType string                `json:"appointmentType" validate:"required,oneof='Initial Consultation' 'Therapy Session' Follow-up 'Crisis Intervention' Assessment"`
	Status          string                `json:"status"          validate:"omitempty,oneof=Scheduled Completed Cancelled No-show Rescheduled"`
	Notes           string                `json:"notes"           validate:"max=1000"`
	Symptoms        []string              `json:"symptoms"        validate:"omitempty,dive,max=100"`
	TreatmentPlan   *treatmentPlanRequest `json:"treatmentPlan"`
}

// patientSummary is the patient embedded in appointment responses.
type patientSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type appointmentResponse struct {
	ID              string                `json:"id"`
	PatientID       string                `json:"patientId"`
	Patient         *patientSummary       `json:"patient"`
	PsychologistID  string                `json:"psychologistId"`
	AppointmentDate time.Time             `json:"appointmentDate"`
	Duration        int                   `json:"duration"`
	AppointmentType string                `json:"appointmentType"`
	Status          string                `json:"status"`
	Notes           string                `json:"notes,omitempty"`
	Symptoms        []string              `json:"symptoms"`
	TreatmentPlan   *domain.TreatmentPlan `json:"treatmentPlan,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// --- Auth ---

type registerRequest struct {
	Username    string `json:"username"    validate:"required,min=3,max=30"`
	Email       string `json:"email"       validate:"required,email,max=100"`
	Password    string `json:"password"    validate:"required,min=6,max=72" sanitize:"-"`
	DisplayName string `json:"displayName" validate:"max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required" sanitize:"-"`
}

type userSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type loginResponse struct {
	Message string      `json:"message"`
	User    userSummary `json:"user"`
}

type statusResponse struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *userSummary `json:"user"`
}

type profileUser struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	ProfileURL  string    `json:"profileUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type profileResponse struct {
	User profileUser `json:"user"`
}

// --- Users ---

type roleRequest struct {
	Role string `json:"role" validate:"required,oneof=patient psychologist admin"`
}
