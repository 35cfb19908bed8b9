// services/dashboard_service.go - Back-office overview
package services

import (
	"context"

	"lanarena/models"
)

const dashboardRecent = 5

// Dashboard is the landing view of the admin panel.
type Dashboard struct {
	Registrations       models.RegistrationStats  `json:"registrations"`
	Notifications       models.NotificationStats  `json:"notifications"`
	RecentRegistrations []models.RegistrationView `json:"recent_registrations"`
	RecentNotifications []models.NotificationView `json:"recent_notifications"`
}

type DashboardService struct {
	registrations *RegistrationService
	notifications *NotificationService
}

func NewDashboardService(registrations *RegistrationService, notifications *NotificationService) *DashboardService {
	return &DashboardService{registrations: registrations, notifications: notifications}
}

func (s *DashboardService) Load(ctx context.Context) (*Dashboard, error) {
	regStats, err := s.registrations.Counts(ctx)
	if err != nil {
		return nil, err
	}
	noteStats, err := s.notifications.Stats(ctx)
	if err != nil {
		return nil, err
	}
	regs, err := s.registrations.Recent(ctx, dashboardRecent)
	if err != nil {
		return nil, err
	}
	notes, err := s.notifications.Latest(ctx, dashboardRecent)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Registrations:       regStats,
		Notifications:       noteStats,
		RecentRegistrations: make([]models.RegistrationView, 0, len(regs)),
		RecentNotifications: make([]models.NotificationView, 0, len(notes)),
	}
	for _, r := range regs {
		d.RecentRegistrations = append(d.RecentRegistrations, r.View())
	}
	for _, n := range notes {
		d.RecentNotifications = append(d.RecentNotifications, n.View())
	}
	return d, nil
}
