package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
)

// List mirrors a table as an ordered mapping keyed by row id, newest first.
// It is seeded with Reset from an initial fetch and kept current with Apply.
// Applying the same event twice leaves the list unchanged.
type List[T any] struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]T
	id    func(T) string
	limit int
}

// NewList returns an empty list. id extracts the key of a row; limit caps the
// number of rows kept (0 means unlimited), dropping the oldest.
func NewList[T any](id func(T) string, limit int) *List[T] {
	return &List[T]{rows: make(map[string]T), id: id, limit: limit}
}

// Reset replaces the contents with rows, which must already be newest first.
func (l *List[T]) Reset(rows []T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.order = l.order[:0]
	l.rows = make(map[string]T, len(rows))
	for _, row := range rows {
		key := l.id(row)
		if _, dup := l.rows[key]; dup {
			continue
		}
		l.order = append(l.order, key)
		l.rows[key] = row
	}
	l.trim()
}

// Apply reconciles one change event into the list.
// INSERT prepends (or replaces a row already present), UPDATE merges the changed
// fields into the row with the same id, DELETE drops it. Events about rows the
// list does not hold are ignored for UPDATE and DELETE.
func (l *List[T]) Apply(ev Event) error {
	switch ev.Type {
	case Insert:
		var row T
		if err := json.Unmarshal(ev.New, &row); err != nil {
			return fmt.Errorf("decode inserted row: %w", err)
		}
		l.upsert(row)
	case Update:
		return l.merge(ev)
	case Delete:
		l.remove(ev.RowID())
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

func (l *List[T]) upsert(row T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := l.id(row)
	if _, ok := l.rows[key]; ok {
		l.rows[key] = row
		return
	}
	l.order = append([]string{key}, l.order...)
	l.rows[key] = row
	l.trim()
}

func (l *List[T]) merge(ev Event) error {
	key := ev.RowID()

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.rows[key]
	if !ok {
		return nil
	}

	fields := map[string]json.RawMessage{}
	base, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode current row: %w", err)
	}
	if err := json.Unmarshal(base, &fields); err != nil {
		return fmt.Errorf("decode current row: %w", err)
	}
	changed := map[string]json.RawMessage{}
	if err := json.Unmarshal(ev.New, &changed); err != nil {
		return fmt.Errorf("decode updated row: %w", err)
	}
	for k, v := range changed {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	var row T
	if err := json.Unmarshal(merged, &row); err != nil {
		return fmt.Errorf("decode merged row: %w", err)
	}
	l.rows[key] = row
	return nil
}

func (l *List[T]) remove(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.rows[key]; !ok {
		return
	}
	delete(l.rows, key)
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// trim drops the oldest rows beyond the limit. Callers hold the lock.
func (l *List[T]) trim() {
	if l.limit <= 0 || len(l.order) <= l.limit {
		return
	}
	for _, key := range l.order[l.limit:] {
		delete(l.rows, key)
	}
	l.order = l.order[:l.limit]
}

// Items returns a copy of the rows, newest first.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]T, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.rows[key])
	}
	return out
}

func (l *List[T]) Get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	row, ok := l.rows[id]
	return row, ok
}

func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}
