package services

import (
	"context"
	"testing"
	"time"

	"lanarena/models"
	"lanarena/realtime"
)

func TestComputeCountdown(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		target time.Time
		want   Countdown
	}{
		{
			name:   "days hours minutes seconds",
			target: now.Add(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second),
			want:   Countdown{Days: 2, Hours: 3, Minutes: 4, Seconds: 5},
		},
		{
			name:   "sub second rounds down",
			target: now.Add(1500 * time.Millisecond),
			want:   Countdown{Seconds: 1},
		},
		{
			name:   "exactly now",
			target: now,
			want:   Countdown{Started: true},
		},
		{
			name:   "past clamps to zero",
			target: now.Add(-time.Hour),
			want:   Countdown{Started: true},
		},
	}
	for _, tt := range tests {
		got := ComputeCountdown(tt.target, now)
		tt.want.Target = tt.target.UTC()
		if got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, got, tt.want)
		}
	}
}

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	db := openTestDB(t)
	fallback := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	svc := NewSettingsService(db, nil, fallback)
	svc.now = func() time.Time { return fallback.Add(-26 * time.Hour) }

	settings, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings.HeroTitle != models.DefaultHeroTitle || settings.CountdownLabel != models.DefaultCountdownLabel {
		t.Fatalf("settings = %+v", settings)
	}

	c, err := svc.Countdown(context.Background())
	if err != nil {
		t.Fatalf("Countdown: %v", err)
	}
	if c.Days != 1 || c.Hours != 2 || !c.Target.Equal(fallback) || c.Label != models.DefaultCountdownLabel {
		t.Fatalf("countdown = %+v", c)
	}
}

func TestSaveSettingsUpsertsMainRow(t *testing.T) {
	db := openTestDB(t)
	broker := realtime.NewMemoryBroker()
	defer broker.Close()
	svc := NewSettingsService(db, broker, time.Time{})
	ctx := context.Background()
	sub := broker.Subscribe(realtime.TableSiteSettings)
	defer sub.Close()

	if _, err := svc.Save(ctx, SettingsInput{HeroTitle: "Winter Cup", EventDate: "2025-12-20T09:00:00+05:30"}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := svc.Save(ctx, SettingsInput{HeroTitle: "Winter Cup II", HeroSubtitle: "Delhi", CountdownLabel: "Doors open in:"}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var rows []models.SiteSettings
	db.Find(&rows)
	if len(rows) != 1 || rows[0].ID != models.MainSettingsID {
		t.Fatalf("rows = %+v", rows)
	}
	got, _ := svc.Get(ctx)
	if got.HeroTitle != "Winter Cup II" || got.EventDate != nil || got.CountdownLabel != "Doors open in:" {
		t.Fatalf("settings = %+v", got)
	}
	if ev := nextEvent(t, sub); ev.Type != realtime.Update || ev.RowID() != models.MainSettingsID {
		t.Fatalf("event = %s %s", ev.Type, ev.RowID())
	}

	_, err := svc.Save(ctx, SettingsInput{EventDate: "next friday"})
	fe, ok := AsFieldErrors(err)
	if !ok || fe["hero_title"] == "" || fe["event_date"] == "" {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveSettingsStoresEventDateInUTC(t *testing.T) {
	db := openTestDB(t)
	svc := NewSettingsService(db, nil, time.Time{})
	saved, err := svc.Save(context.Background(), SettingsInput{HeroTitle: "Cup", EventDate: "2025-12-20T09:00:00+05:30"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := time.Date(2025, 12, 20, 3, 30, 0, 0, time.UTC)
	if saved.EventDate == nil || !saved.EventDate.Equal(want) || saved.EventDate.Location() != time.UTC {
		t.Fatalf("event date = %v, want %v", saved.EventDate, want)
	}
}
