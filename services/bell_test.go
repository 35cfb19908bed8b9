package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lanarena/models"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBellFollowsNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.notifications.Create(ctx, NotificationInput{Title: "first", Message: "m"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bell := NewBell(f.notifications, f.broker)
	if err := bell.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer bell.Stop()

	if feed := bell.Feed(); len(feed.Notifications) != 1 || feed.Unread != 1 {
		t.Fatalf("initial feed = %+v", feed)
	}

	second, _ := f.notifications.Create(ctx, NotificationInput{Title: "second", Message: "m"})
	waitFor(t, func() bool { return len(bell.Feed().Notifications) == 2 })
	if feed := bell.Feed(); feed.Notifications[0].ID != second.ID {
		t.Fatalf("newest first violated: %+v", feed.Notifications)
	}

	if _, err := f.notifications.Send(ctx, first.ID); err != nil {
		t.Fatalf("Send: %v", err)
	}
	waitFor(t, func() bool { return bell.Feed().Unread == 1 })
	feed := bell.Feed()
	if !feed.Notifications[1].IsRead || feed.Notifications[1].Status != models.NotificationSent {
		t.Fatalf("sent notification not marked read: %+v", feed.Notifications[1])
	}

	if err := f.notifications.Delete(ctx, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	waitFor(t, func() bool { return len(bell.Feed().Notifications) == 1 })
}

func TestBellKeepsTenNewest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bell := NewBell(f.notifications, f.broker)
	if err := bell.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer bell.Stop()

	var last *models.Notification
	for i := 0; i < BellSize+3; i++ {
		n, err := f.notifications.Create(ctx, NotificationInput{Title: fmt.Sprintf("n%d", i), Message: "m"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		last = n
	}
	waitFor(t, func() bool {
		items := bell.Feed().Notifications
		return len(items) > 0 && items[0].ID == last.ID
	})
	if got := len(bell.Feed().Notifications); got != BellSize {
		t.Fatalf("bell holds %d, want %d", got, BellSize)
	}
}
