// models/notification.go - Broadcast notifications
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationGeneral      NotificationType = "general"
	NotificationTournament   NotificationType = "tournament"
	NotificationRegistration NotificationType = "registration"
	NotificationUrgent       NotificationType = "urgent"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationGeneral, NotificationTournament, NotificationRegistration, NotificationUrgent:
		return true
	}
	return false
}

type Audience string

const (
	AudienceAll        Audience = "all"
	AudienceRegistered Audience = "registered"
	AudiencePending    Audience = "pending"
	AudienceVerified   Audience = "verified"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceRegistered, AudiencePending, AudienceVerified:
		return true
	}
	return false
}

// Label is the human readable name shown in the back-office
func (a Audience) Label() string {
	switch a {
	case AudienceAll:
		return "All Users"
	case AudienceRegistered:
		return "Registered Teams"
	case AudiencePending:
		return "Pending Teams"
	case AudienceVerified:
		return "Verified Teams"
	}
	return string(a)
}

type NotificationStatus string

const (
	NotificationDraft     NotificationStatus = "draft"
	NotificationScheduled NotificationStatus = "scheduled"
	NotificationSent      NotificationStatus = "sent"
)

// CanSend reports whether the notification may still be sent. Sent is terminal.
func (s NotificationStatus) CanSend() bool {
	return s == NotificationDraft || s == NotificationScheduled
}

type Notification struct {
	ID             string             `json:"id" gorm:"primaryKey;size:36"`
	Title          string             `json:"title" gorm:"not null;size:200"`
	Message        string             `json:"message" gorm:"not null;type:text"`
	Type           NotificationType   `json:"type" gorm:"not null;size:20;default:'general'"`
	TargetAudience Audience           `json:"target_audience" gorm:"not null;size:20;default:'all'"`
	Status         NotificationStatus `json:"status" gorm:"not null;size:20;default:'draft';index"`
	ScheduledAt    *time.Time         `json:"scheduled_at"`
	SentAt         *time.Time         `json:"sent_at"`
	SentCount      int                `json:"sent_count" gorm:"default:0"`
	CreatedAt      time.Time          `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = NotificationGeneral
	}
	if n.TargetAudience == "" {
		n.TargetAudience = AudienceAll
	}
	if n.Status == "" {
		n.Status = NotificationDraft
	}
	return nil
}

func (n *Notification) Actions() []string {
	if n.Status.CanSend() {
		return []string{"send", "delete"}
	}
	return []string{"delete"}
}

type NotificationView struct {
	Notification
	AudienceLabel string   `json:"audience_label"`
	Actions       []string `json:"actions"`
}

func (n Notification) View() NotificationView {
	return NotificationView{
		Notification:  n,
		AudienceLabel: n.TargetAudience.Label(),
		Actions:       n.Actions(),
	}
}

type NotificationStats struct {
	Total     int64 `json:"total"`
	Sent      int64 `json:"sent"`
	Scheduled int64 `json:"scheduled"`
	Drafts    int64 `json:"drafts"`
}
