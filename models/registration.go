// models/registration.go - Team registration rows
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationVerified RegistrationStatus = "verified"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationVerified, RegistrationRejected:
		return true
	}
	return false
}

// CanTransition reports whether an admin may move a registration from s to next.
// Only pending registrations can be decided; verified and rejected are terminal.
func (s RegistrationStatus) CanTransition(next RegistrationStatus) bool {
	return s == RegistrationPending && (next == RegistrationVerified || next == RegistrationRejected)
}

// Registration is one team's entry for the tournament
type Registration struct {
	ID           string                      `json:"id" gorm:"primaryKey;size:36"`
	TeamName     string                      `json:"team_name" gorm:"not null;size:120"`
	College      string                      `json:"college" gorm:"not null;size:200"`
	CaptainName  string                      `json:"captain_name" gorm:"not null;size:120"`
	CaptainUID   string                      `json:"captain_uid" gorm:"size:64"`
	CaptainEmail string                      `json:"captain_email" gorm:"not null;size:200"`
	CaptainPhone string                      `json:"captain_phone" gorm:"not null;size:40"`
	TeamMembers  datatypes.JSONSlice[string] `json:"team_members"`
	Status       RegistrationStatus          `json:"status" gorm:"not null;size:20;default:'pending';index"`
	Notes        *string                     `json:"notes"`
	CollegeIDURL *string                     `json:"college_id_url" gorm:"column:college_id_url;size:255"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (Registration) TableName() string {
	return "registrations"
}

// BeforeCreate assigns a UUID and the default status
func (r *Registration) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = RegistrationPending
	}
	if r.TeamMembers == nil {
		r.TeamMembers = datatypes.JSONSlice[string]{}
	}
	return nil
}

// Actions lists what the back-office may do with the registration next.
func (r *Registration) Actions() []string {
	if r.Status == RegistrationPending {
		return []string{"verify", "reject"}
	}
	return []string{"delete"}
}

// RegistrationView is the JSON shape returned to the admin panels.
type RegistrationView struct {
	Registration
	Actions []string `json:"actions"`
}

func (r Registration) View() RegistrationView {
	return RegistrationView{Registration: r, Actions: r.Actions()}
}

// RegistrationStats counts registrations per status
type RegistrationStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Verified int64 `json:"verified"`
	Rejected int64 `json:"rejected"`
}
