// services/registration_service.go - Registration business logic
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"lanarena/models"
	"lanarena/realtime"
	"lanarena/storage"

	"gorm.io/gorm"
)

type RegistrationService struct {
	db        *gorm.DB
	store     storage.Store
	broker    realtime.Broker
	signer    *storage.Signer
	urlTTL    time.Duration
	maxUpload int64
}

type RegistrationServiceConfig struct {
	Signer         *storage.Signer
	SignedURLTTL   time.Duration
	UploadMaxBytes int64
}

func NewRegistrationService(db *gorm.DB, store storage.Store, broker realtime.Broker, cfg RegistrationServiceConfig) *RegistrationService {
	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RegistrationService{
		db:        db,
		store:     store,
		broker:    broker,
		signer:    cfg.Signer,
		urlTTL:    ttl,
		maxUpload: cfg.UploadMaxBytes,
	}
}

// RegistrationFilter narrows the admin list and the CSV export.
type RegistrationFilter struct {
	Search string
	Status string // "", "all" or a RegistrationStatus
}

// AdminRegistrationInput is a registration typed in by an admin.
type AdminRegistrationInput struct {
	TeamName     string   `json:"team_name"`
	College      string   `json:"college"`
	CaptainName  string   `json:"captain_name"`
	CaptainEmail string   `json:"captain_email"`
	CaptainPhone string   `json:"captain_phone"`
	TeamMembers  []string `json:"team_members"`
	Notes        string   `json:"notes"`
}

// ================== SUBMISSION ==================

// Submit stores the college ID and then inserts the pending registration.
// When the insert fails the upload is removed on a best-effort basis.
func (s *RegistrationService) Submit(ctx context.Context, form RegistrationForm, upload *Upload, body io.Reader) (*models.Registration, error) {
	if errs := form.Validate(upload != nil && body != nil); errs != nil {
		return nil, errs
	}
	if err := CheckUpload(*upload, s.maxUpload); err != nil {
		return nil, err
	}

	key := storage.NewObjectKey(storage.CollegeIDPrefix, upload.Filename)
	if err := s.store.Put(ctx, key, body, uploadContentType(*upload)); err != nil {
		return nil, fmt.Errorf("upload college ID: %w", err)
	}

	reg := &models.Registration{
		TeamName:     strings.TrimSpace(form.TeamName),
		College:      strings.TrimSpace(form.College),
		CaptainName:  strings.TrimSpace(form.CaptainName),
		CaptainUID:   strings.TrimSpace(form.CaptainUID),
		CaptainEmail: strings.TrimSpace(form.CaptainEmail),
		CaptainPhone: strings.TrimSpace(form.CaptainPhone),
		TeamMembers:  form.TeamMembers(),
		Status:       models.RegistrationPending,
		CollegeIDURL: &key,
	}

	if err := s.db.WithContext(ctx).Create(reg).Error; err != nil {
		if derr := s.store.Delete(context.WithoutCancel(ctx), key); derr != nil {
			log.Printf("⚠️ could not remove orphaned upload %s: %v", key, derr)
		}
		return nil, fmt.Errorf("save registration: %w", err)
	}

	publish(ctx, s.broker, realtime.TableRegistrations, realtime.Insert, reg, nil)
	return reg, nil
}

// Create inserts a registration entered by an admin (no upload).
func (s *RegistrationService) Create(ctx context.Context, in AdminRegistrationInput) (*models.Registration, error) {
	errs := FieldErrors{}
	if strings.TrimSpace(in.TeamName) == "" {
		errs["team_name"] = "Team name is required"
	}
	if strings.TrimSpace(in.College) == "" {
		errs["college"] = "College name is required"
	}
	if strings.TrimSpace(in.CaptainName) == "" {
		errs["captain_name"] = "Captain name is required"
	}
	if email := strings.TrimSpace(in.CaptainEmail); email != "" && !emailPattern.MatchString(email) {
		errs["captain_email"] = "Invalid email format"
	}
	if len(errs) > 0 {
		return nil, errs
	}

	members := []string{}
	for _, m := range in.TeamMembers {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}

	reg := &models.Registration{
		TeamName:     strings.TrimSpace(in.TeamName),
		College:      strings.TrimSpace(in.College),
		CaptainName:  strings.TrimSpace(in.CaptainName),
		CaptainEmail: strings.TrimSpace(in.CaptainEmail),
		CaptainPhone: strings.TrimSpace(in.CaptainPhone),
		TeamMembers:  members,
		Status:       models.RegistrationPending,
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		reg.Notes = &notes
	}

	if err := s.db.WithContext(ctx).Create(reg).Error; err != nil {
		return nil, fmt.Errorf("create registration: %w", err)
	}
	publish(ctx, s.broker, realtime.TableRegistrations, realtime.Insert, reg, nil)
	return reg, nil
}

// ================== QUERIES ==================

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *RegistrationService) filtered(ctx context.Context, f RegistrationFilter) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Model(&models.Registration{})

	switch status := strings.ToLower(strings.TrimSpace(f.Status)); status {
	case "", "all":
	default:
		if !models.RegistrationStatus(status).Valid() {
			return nil, ErrInvalidStatus
		}
		q = q.Where("status = ?", status)
	}

	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		like := "%" + likeEscaper.Replace(search) + "%"
		q = q.Where(`LOWER(team_name) LIKE ? ESCAPE '\' OR LOWER(college) LIKE ? ESCAPE '\' OR LOWER(captain_name) LIKE ? ESCAPE '\'`, like, like, like)
	}
	return q, nil
}

// List returns the matching registrations, newest first.
func (s *RegistrationService) List(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	q, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	var regs []models.Registration
	if err := q.Order("created_at DESC").Find(&regs).Error; err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// Recent returns the latest n registrations
func (s *RegistrationService) Recent(ctx context.Context, n int) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(n).Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("recent registrations: %w", err)
	}
	return regs, nil
}

func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

// Counts returns per-status totals over the whole table.
func (s *RegistrationService) Counts(ctx context.Context) (models.RegistrationStats, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Registration{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return models.RegistrationStats{}, fmt.Errorf("count registrations: %w", err)
	}

	var stats models.RegistrationStats
	for _, r := range rows {
		stats.Total += r.Count
		switch models.RegistrationStatus(r.Status) {
		case models.RegistrationPending:
			stats.Pending = r.Count
		case models.RegistrationVerified:
			stats.Verified = r.Count
		case models.RegistrationRejected:
			stats.Rejected = r.Count
		}
	}
	return stats, nil
}

// ================== WORKFLOW ==================

// UpdateStatus decides a pending registration. Verified and rejected are final.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id string, next models.RegistrationStatus) (*models.Registration, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reg.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, reg.Status, next)
	}

	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Registration{}).
		Where("id = ? AND status = ?", id, string(reg.Status)).
		Updates(map[string]any{"status": string(next), "updated_at": now})
	if res.Error != nil {
		return nil, fmt.Errorf("update registration status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// another admin decided it first
		return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
	}

	reg.Status = next
	reg.UpdatedAt = now
	publish(ctx, s.broker, realtime.TableRegistrations, realtime.Update, reg, map[string]any{"id": reg.ID})
	return reg, nil
}

// Delete removes the row and then, best effort, its college ID upload.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Registration{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	publishDelete(ctx, s.broker, realtime.TableRegistrations, id)

	if reg.CollegeIDURL != nil && *reg.CollegeIDURL != "" {
		if err := s.store.Delete(ctx, *reg.CollegeIDURL); err != nil {
			log.Printf("⚠️ storage remove failed for %s: %v", *reg.CollegeIDURL, err)
		}
	}
	return nil
}

// CollegeIDLink returns a signed, expiring URL to the registration's upload.
func (s *RegistrationService) CollegeIDLink(ctx context.Context, id string) (string, time.Time, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if reg.CollegeIDURL == nil || *reg.CollegeIDURL == "" {
		return "", time.Time{}, ErrNoCollegeID
	}
	if s.signer == nil {
		return "", time.Time{}, errors.New("url signer not configured")
	}
	return s.signer.SignedURL(*reg.CollegeIDURL, s.urlTTL)
}

// ReferencedUploads returns every storage key still pointed at by a registration.
func (s *RegistrationService) ReferencedUploads(ctx context.Context) (map[string]struct{}, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&models.Registration{}).
		Where("college_id_url IS NOT NULL AND college_id_url <> ''").
		Pluck("college_id_url", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("list referenced uploads: %w", err)
	}
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out, nil
}

// CountAudience returns how many registrations a notification audience reaches.
func (s *RegistrationService) CountAudience(ctx context.Context, audience models.Audience) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Registration{})
	switch audience {
	case models.AudienceAll, models.AudienceRegistered:
	case models.AudiencePending:
		q = q.Where("status = ?", models.RegistrationPending)
	case models.AudienceVerified:
		q = q.Where("status = ?", models.RegistrationVerified)
	default:
		return 0, fmt.Errorf("unknown audience %q", audience)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count audience: %w", err)
	}
	return n, nil
}
