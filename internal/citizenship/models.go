package citizenship

import (
	"time"
)

// Status represents the application status lifecycle.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// FormFields carries the raw answers from the application form. Values are
// trimmed and length-checked by Lifecycle.Submit before a record is created.
type FormFields struct {
	DisplayName    string
	RobloxUsername string
	Reason         string
	CriminalRecord string
	AdditionalInfo string
}

// Application is one citizenship application, keyed by ApplicantID. At most
// one record exists per applicant; a re-application after a terminal decision
// supersedes the old record.
type Application struct {
	ID             string     `json:"id"`
	ApplicantID    string     `json:"applicant_id"`
	DisplayName    string     `json:"display_name"`
	RobloxUsername string     `json:"roblox_username"`
	Reason         string     `json:"reason"`
	CriminalRecord string     `json:"criminal_record"`
	AdditionalInfo string     `json:"additional_info,omitempty"`
	Status         Status     `json:"status"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy     string     `json:"reviewed_by,omitempty"`
	DeclineReason  string     `json:"decline_reason,omitempty"`
}

// Actor identifies who is performing an operation and which guild roles they
// hold. Capability is derived from RoleIDs per request, never stored.
type Actor struct {
	ID      string
	RoleIDs []string
}
