package services

import (
	"context"
	"log"
	"sync"
	"time"

	"lanarena/storage"
)

// UploadReferences lists the storage keys that rows still point at.
type UploadReferences interface {
	ReferencedUploads(ctx context.Context) (map[string]struct{}, error)
}

// CleanupReport describes one sweep.
type CleanupReport struct {
	Scanned    int       `json:"scanned"`
	Referenced int       `json:"referenced"`
	Removed    int       `json:"removed"`
	Failed     int       `json:"failed"`
	RanAt      time.Time `json:"ran_at"`
}

// CleanupStats is the last report plus running totals.
type CleanupStats struct {
	Last         *CleanupReport `json:"last"`
	Runs         int            `json:"runs"`
	TotalRemoved int            `json:"total_removed"`
	Interval     string         `json:"interval"`
	Grace        string         `json:"grace"`
}

// CleanupService removes college ID uploads that no registration references,
// left behind by failed submissions.
type CleanupService struct {
	store    storage.Store
	refs     UploadReferences
	interval time.Duration
	grace    time.Duration
	now      func() time.Time

	mu     sync.Mutex
	last   *CleanupReport
	runs   int
	total  int
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCleanupService(store storage.Store, refs UploadReferences, interval, grace time.Duration) *CleanupService {
	return &CleanupService{store: store, refs: refs, interval: interval, grace: grace, now: time.Now}
}

// Start runs a sweep every interval until Stop.
func (s *CleanupService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil || s.interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	log.Printf("🧹 Upload cleanup running every %s (grace %s)", s.interval, s.grace)
}

func (s *CleanupService) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				log.Printf("❌ Upload cleanup failed: %v", err)
			}
		}
	}
}

// Stop ends the ticker goroutine and waits for a running sweep to finish.
func (s *CleanupService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Sweep deletes unreferenced uploads older than the grace period.
func (s *CleanupService) Sweep(ctx context.Context) (CleanupReport, error) {
	report := CleanupReport{RanAt: s.now().UTC()}

	objects, err := s.store.List(ctx, storage.CollegeIDPrefix)
	if err != nil {
		return report, err
	}
	refs, err := s.refs.ReferencedUploads(ctx)
	if err != nil {
		return report, err
	}

	cutoff := report.RanAt.Add(-s.grace)
	for _, obj := range objects {
		report.Scanned++
		if _, ok := refs[obj.Key]; ok {
			report.Referenced++
			continue
		}
		if obj.CreatedAt.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, obj.Key); err != nil {
			log.Printf("❌ Failed to remove orphan upload %s: %v", obj.Key, err)
			report.Failed++
			continue
		}
		report.Removed++
	}

	s.mu.Lock()
	s.last = &report
	s.runs++
	s.total += report.Removed
	s.mu.Unlock()

	if report.Removed > 0 || report.Failed > 0 {
		log.Printf("✅ Cleaned up %d orphan uploads (%d failed, %d scanned)", report.Removed, report.Failed, report.Scanned)
	}
	return report, nil
}

func (s *CleanupService) Stats() CleanupStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := CleanupStats{
		Runs:         s.runs,
		TotalRemoved: s.total,
		Interval:     s.interval.String(),
		Grace:        s.grace.String(),
	}
	if s.last != nil {
		last := *s.last
		stats.Last = &last
	}
	return stats
}
