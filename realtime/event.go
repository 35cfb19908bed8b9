// Package realtime carries row-level change events from the services that write
// tables to whoever is watching them: websocket clients, the bell feed and lanwatch.
package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

// AllTables subscribes to every table
const AllTables = "*"

const (
	TableRegistrations = "registrations"
	TableNotifications = "notifications"
	TableSiteSettings  = "site_settings"
)

// KnownTable reports whether name is a table (or the wildcard) that can be watched.
func KnownTable(name string) bool {
	switch name {
	case TableRegistrations, TableNotifications, TableSiteSettings, AllTables:
		return true
	}
	return false
}

// Event is one change to one row. New holds the row after INSERT/UPDATE,
// Old holds at least the id for UPDATE/DELETE.
type Event struct {
	Table string          `json:"table"`
	Type  EventType       `json:"type"`
	New   json.RawMessage `json:"new,omitempty"`
	Old   json.RawMessage `json:"old,omitempty"`
	At    time.Time       `json:"at"`
}

type idOnly struct {
	ID string `json:"id"`
}

// NewEvent marshals the rows of a change. Pass nil for the side that does not apply.
func NewEvent(table string, typ EventType, newRow, oldRow any) (Event, error) {
	ev := Event{Table: table, Type: typ, At: time.Now().UTC()}
	if newRow != nil {
		b, err := json.Marshal(newRow)
		if err != nil {
			return Event{}, fmt.Errorf("marshal new row: %w", err)
		}
		ev.New = b
	}
	if oldRow != nil {
		b, err := json.Marshal(oldRow)
		if err != nil {
			return Event{}, fmt.Errorf("marshal old row: %w", err)
		}
		ev.Old = b
	}
	return ev, nil
}

// Deleted builds a DELETE event that only carries the id of the removed row.
func Deleted(table, id string) Event {
	old, _ := json.Marshal(idOnly{ID: id})
	return Event{Table: table, Type: Delete, Old: old, At: time.Now().UTC()}
}

// RowID returns the id the event refers to, preferring the new row.
func (e Event) RowID() string {
	for _, raw := range []json.RawMessage{e.New, e.Old} {
		if len(raw) == 0 {
			continue
		}
		var row idOnly
		if err := json.Unmarshal(raw, &row); err == nil && row.ID != "" {
			return row.ID
		}
	}
	return ""
}
