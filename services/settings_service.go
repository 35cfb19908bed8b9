// services/settings_service.go - Home page settings and countdown
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
	"gorm.io/gorm/clause"
)

type SettingsService struct {
	db       *gorm.DB
	broker   realtime.Broker
	fallback time.Time
	now      func() time.Time
}

// NewSettingsService takes the countdown target used while no event date is set.
func NewSettingsService(db *gorm.DB, broker realtime.Broker, fallbackEventDate time.Time) *SettingsService {
	return &SettingsService{db: db, broker: broker, fallback: fallbackEventDate, now: time.Now}
}

// Get returns the main settings row, or the defaults when it does not exist yet.
func (s *SettingsService) Get(ctx context.Context) (models.SiteSettings, error) {
	var settings models.SiteSettings
	err := s.db.WithContext(ctx).Where("id = ?", models.MainSettingsID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSiteSettings(), nil
	}
	if err != nil {
		return models.SiteSettings{}, fmt.Errorf("load site settings: %w", err)
	}
	if strings.TrimSpace(settings.CountdownLabel) == "" {
		settings.CountdownLabel = models.DefaultCountdownLabel
	}
	return settings, nil
}

// SettingsInput is the admin edit form
type SettingsInput struct {
	HeroTitle      string `json:"hero_title"`
	HeroSubtitle   string `json:"hero_subtitle"`
	EventDate      string `json:"event_date"`
	CountdownLabel string `json:"countdown_label"`
}

// Save upserts the main row. The id is always "main".
func (s *SettingsService) Save(ctx context.Context, in SettingsInput) (models.SiteSettings, error) {
	errs := FieldErrors{}
	if strings.TrimSpace(in.HeroTitle) == "" {
		errs["hero_title"] = "Hero title is required"
	}
	var eventDate *time.Time
	if raw := strings.TrimSpace(in.EventDate); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errs["event_date"] = "Event date must be an RFC 3339 timestamp"
		} else {
			t = t.UTC()
			eventDate = &t
		}
	}
	if len(errs) > 0 {
		return models.SiteSettings{}, errs
	}

	settings := models.SiteSettings{
		ID:             models.MainSettingsID,
		HeroTitle:      strings.TrimSpace(in.HeroTitle),
		HeroSubtitle:   strings.TrimSpace(in.HeroSubtitle),
		EventDate:      eventDate,
		CountdownLabel: strings.TrimSpace(in.CountdownLabel),
		UpdatedAt:      s.now().UTC(),
	}
	if settings.CountdownLabel == "" {
		settings.CountdownLabel = models.DefaultCountdownLabel
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"hero_title", "hero_subtitle", "event_date", "countdown_label", "updated_at"}),
	}).Create(&settings).Error
	if err != nil {
		return models.SiteSettings{}, fmt.Errorf("save site settings: %w", err)
	}

	publish(ctx, s.broker, realtime.TableSiteSettings, realtime.Update, settings, map[string]any{"id": settings.ID})
	return settings, nil
}

// Countdown is the time left until the event, split the way the home page shows it.
type Countdown struct {
	Label   string    `json:"label"`
	Target  time.Time `json:"target"`
	Days    int64     `json:"days"`
	Hours   int64     `json:"hours"`
	Minutes int64     `json:"minutes"`
	Seconds int64     `json:"seconds"`
	Started bool      `json:"started"`
}

// ComputeCountdown splits target-now into days, hours, minutes and seconds.
// A target in the past yields zeros and Started.
func ComputeCountdown(target, now time.Time) Countdown {
	c := Countdown{Target: target.UTC()}
	distance := target.Sub(now)
	if distance <= 0 {
		c.Started = true
		return c
	}
	secs := int64(distance / time.Second)
	c.Days = secs / 86400
	c.Hours = (secs % 86400) / 3600
	c.Minutes = (secs % 3600) / 60
	c.Seconds = secs % 60
	return c
}

// Countdown returns the countdown for the configured event date.
func (s *SettingsService) Countdown(ctx context.Context) (Countdown, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return Countdown{}, err
	}
	target := s.fallback
	if settings.EventDate != nil {
		target = *settings.EventDate
	}
	c := ComputeCountdown(target, s.now())
	c.Label = settings.CountdownLabel
	return c, nil
}
