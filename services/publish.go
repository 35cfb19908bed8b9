package services

import (
	"context"
	"log"

	"lanarena/realtime"
)

// publish sends a change event. Failures are logged, never returned: the write
// already happened and subscribers catch up on their next fetch.
func publish(ctx context.Context, broker realtime.Broker, table string, typ realtime.EventType, newRow, oldRow any) {
	if broker == nil {
		return
	}
	ev, err := realtime.NewEvent(table, typ, newRow, oldRow)
	if err != nil {
		log.Printf("❌ realtime: build %s %s event: %v", table, typ, err)
		return
	}
	if err := broker.Publish(ctx, ev); err != nil {
		log.Printf("❌ realtime: publish %s %s event: %v", table, typ, err)
	}
}

func publishDelete(ctx context.Context, broker realtime.Broker, table, id string) {
	if broker == nil {
		return
	}
	if err := broker.Publish(ctx, realtime.Deleted(table, id)); err != nil {
		log.Printf("❌ realtime: publish %s DELETE event: %v", table, err)
	}
}
