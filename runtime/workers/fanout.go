package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bridge-chat/contract"
	"bridge-chat/domain/event"
)

// EventFanout broadcasts store events to in-process consumers: the
// per-participant subscriptions registered for the event's room, plus
// permanent sinks (search index, telemetry, local projections).
//
// It provides best-effort fan-out with no durability or retries: the
// message log itself is the durable record; a sink missing an event can
// always rebuild from a snapshot query. EventFanout is not a broker.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	events         chan event.DomainEvent
	permanentSinks []contract.EventSink
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	events chan event.DomainEvent, permanentSinks []contract.EventSink,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		registry:       registry,
		events:         events,
		permanentSinks: permanentSinks,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		}
	}
}

// Fanout delivers the event to every sink, each under its own timeout
// so one stuck consumer cannot stall the others behind it.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := append(w.permanentSinks, w.registry.GetSinksForRoom(evt.RoomID())...)
	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn(fmt.Sprintf("Sink failed to consume event: %v", err))
		}
		cancel()
	}
}
