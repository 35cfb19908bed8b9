// services/notification_service.go - Notification broadcast business logic
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lanarena/models"
	"lanarena/realtime"

	"gorm.io/gorm"
)

// AudienceCounter sizes the audience of a notification at send time.
type AudienceCounter interface {
	CountAudience(ctx context.Context, audience models.Audience) (int64, error)
}

type NotificationService struct {
	db       *gorm.DB
	broker   realtime.Broker
	audience AudienceCounter
	now      func() time.Time
}

func NewNotificationService(db *gorm.DB, broker realtime.Broker, audience AudienceCounter) *NotificationService {
	return &NotificationService{db: db, broker: broker, audience: audience, now: time.Now}
}

// NotificationInput is the create form of the back-office.
type NotificationInput struct {
	Title          string `json:"title"`
	Message        string `json:"message"`
	Type           string `json:"type"`
	TargetAudience string `json:"target_audience"`
	ScheduledAt    string `json:"scheduled_at"`
}

// Create stores a draft, or a scheduled notification when ScheduledAt is set.
func (s *NotificationService) Create(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	errs := FieldErrors{}
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" {
		errs["title"] = "Title is required"
	}
	if message == "" {
		errs["message"] = "Message is required"
	}

	typ := models.NotificationType(strings.TrimSpace(in.Type))
	if typ == "" {
		typ = models.NotificationGeneral
	} else if !typ.Valid() {
		errs["type"] = "Unknown notification type"
	}

	audience := models.Audience(strings.TrimSpace(in.TargetAudience))
	if audience == "" {
		audience = models.AudienceAll
	} else if !audience.Valid() {
		errs["target_audience"] = "Unknown target audience"
	}

	var scheduledAt *time.Time
	if raw := strings.TrimSpace(in.ScheduledAt); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errs["scheduled_at"] = "Scheduled time must be an RFC 3339 timestamp"
		} else {
			t = t.UTC()
			scheduledAt = &t
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	n := &models.Notification{
		Title:          title,
		Message:        message,
		Type:           typ,
		TargetAudience: audience,
		Status:         models.NotificationDraft,
		ScheduledAt:    scheduledAt,
	}
	if scheduledAt != nil {
		n.Status = models.NotificationScheduled
	}

	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	publish(ctx, s.broker, realtime.TableNotifications, realtime.Insert, n, nil)
	return n, nil
}

// List returns every notification, newest first
func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	return s.Latest(ctx, 0)
}

// Latest returns the newest n notifications (all of them when n <= 0).
func (s *NotificationService) Latest(ctx context.Context, n int) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if n > 0 {
		q = q.Limit(n)
	}
	var out []models.Notification
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationService) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return &n, nil
}

// Stats counts notifications per status
func (s *NotificationService) Stats(ctx context.Context) (models.NotificationStats, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return models.NotificationStats{}, fmt.Errorf("count notifications: %w", err)
	}

	var stats models.NotificationStats
	for _, r := range rows {
		stats.Total += r.Count
		switch models.NotificationStatus(r.Status) {
		case models.NotificationSent:
			stats.Sent = r.Count
		case models.NotificationScheduled:
			stats.Scheduled = r.Count
		case models.NotificationDraft:
			stats.Drafts = r.Count
		}
	}
	return stats, nil
}

// Send marks a draft or scheduled notification as sent and records how many
// registrations its audience covers. Nothing is delivered anywhere.
func (s *NotificationService) Send(ctx context.Context, id string) (*models.Notification, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.Status.CanSend() {
		return nil, ErrAlreadySent
	}

	var count int64
	if s.audience != nil {
		count, err = s.audience.CountAudience(ctx, n.TargetAudience)
		if err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND status <> ?", id, string(models.NotificationSent)).
		Updates(map[string]any{
			"status":     string(models.NotificationSent),
			"sent_at":    now,
			"sent_count": count,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("send notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadySent
	}

	n.Status = models.NotificationSent
	n.SentAt = &now
	n.SentCount = int(count)
	n.UpdatedAt = now
	publish(ctx, s.broker, realtime.TableNotifications, realtime.Update, n, map[string]any{"id": n.ID})
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Notification{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	publishDelete(ctx, s.broker, realtime.TableNotifications, id)
	return nil
}
