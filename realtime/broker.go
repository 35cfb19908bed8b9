package realtime

import (
	"context"
	"log"
	"sync"
)

const subscriptionBuffer = 64

// Broker fans change events out to subscribers.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(table string) *Subscription
	Close() error
}

// Subscription receives the events of one table (or all of them) until closed.
type Subscription struct {
	C     <-chan Event
	table string
	ch    chan Event
	once  sync.Once
	drop  func(*Subscription)
}

// Close detaches the subscription and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.drop(s)
	})
}

// MemoryBroker delivers events to subscribers in this process.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[*Subscription]struct{})}
}

func (b *MemoryBroker) Subscribe(table string) *Subscription {
	ch := make(chan Event, subscriptionBuffer)
	sub := &Subscription{C: ch, table: table, ch: ch, drop: b.remove}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		sub.once.Do(func() {})
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

func (b *MemoryBroker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// Publish never blocks: a subscriber whose buffer is full misses the event.
func (b *MemoryBroker) Publish(ctx context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if sub.table != AllTables && sub.table != ev.Table {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			log.Printf("⚠️ realtime subscriber on %q is full, dropping %s event", sub.table, ev.Type)
		}
	}
	return nil
}

// Close ends every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
	return nil
}

// Subscribers is the number of open subscriptions
func (b *MemoryBroker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
