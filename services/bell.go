// services/bell.go - Live feed behind the public notification bell
package services

import (
	"context"
	"log"
	"sync"

	"lanarena/models"
	"lanarena/realtime"
)

// BellSize is how many notifications the bell keeps.
const BellSize = 10

// BellItem is a notification as the bell shows it.
type BellItem struct {
	models.Notification
	IsRead bool `json:"is_read"`
}

// BellFeed is the bell's current contents.
type BellFeed struct {
	Notifications []BellItem `json:"notifications"`
	Unread        int        `json:"unread"`
}

// Bell mirrors the newest notifications through the change feed.
type Bell struct {
	notifications *NotificationService
	broker        realtime.Broker
	list          *realtime.List[models.Notification]

	mu   sync.Mutex
	sub  *realtime.Subscription
	done chan struct{}
}

func NewBell(notifications *NotificationService, broker realtime.Broker) *Bell {
	return &Bell{
		notifications: notifications,
		broker:        broker,
		list:          realtime.NewList(func(n models.Notification) string { return n.ID }, BellSize),
	}
}

// Start subscribes first and then seeds the list, so nothing published in
// between is missed. Replayed inserts are idempotent.
func (b *Bell) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return nil
	}

	sub := b.broker.Subscribe(realtime.TableNotifications)
	rows, err := b.notifications.Latest(ctx, BellSize)
	if err != nil {
		sub.Close()
		return err
	}
	b.list.Reset(rows)

	b.sub = sub
	b.done = make(chan struct{})
	go b.run(sub, b.done)
	log.Printf("🔔 Bell feed started with %d notifications", len(rows))
	return nil
}

func (b *Bell) run(sub *realtime.Subscription, done chan struct{}) {
	defer close(done)
	for ev := range sub.C {
		if err := b.list.Apply(ev); err != nil {
			log.Printf("❌ Bell feed: %v", err)
		}
	}
}

// Stop closes the subscription and waits for the reconcile loop to exit.
func (b *Bell) Stop() {
	b.mu.Lock()
	sub, done := b.sub, b.done
	b.sub, b.done = nil, nil
	b.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

// Feed returns the bell contents. A notification reads as read once sent.
func (b *Bell) Feed() BellFeed {
	items := b.list.Items()
	feed := BellFeed{Notifications: make([]BellItem, 0, len(items))}
	for _, n := range items {
		item := BellItem{Notification: n, IsRead: n.Status == models.NotificationSent}
		if !item.IsRead {
			feed.Unread++
		}
		feed.Notifications = append(feed.Notifications, item)
	}
	return feed
}
