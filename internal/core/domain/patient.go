package domain

import "time"

type Gender string

const (
	GenderMale           Gender = "Male"
	GenderFemale         Gender = "Female"
	GenderOther          Gender = "Other"
	GenderPreferNotToSay Gender = "Prefer not to say"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

type InsuranceInfo struct {
	Provider     string `json:"provider,omitempty"`
	PolicyNumber string `json:"policyNumber,omitempty"`
}

// Patient holds the demographic record of a clinic patient.
type Patient struct {
	ID               string
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	DateOfBirth      time.Time
	Gender           Gender
	Address          *Address
	EmergencyContact *EmergencyContact
	InsuranceInfo    *InsuranceInfo
	// UserID is the owning identity, empty when the record is not linked to an account.
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
