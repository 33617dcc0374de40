package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/fleetops/transport-fleet/internal/api/metrics"
	"github.com/fleetops/transport-fleet/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Consumer processes one committed security event off a worker channel.
type Consumer interface {
	Consume(ctx context.Context, event domain.SecurityAuditLog)
}

// Dispatcher fans committed security audit events out to a fixed set of
// workers using consistent hashing on the subject email, guaranteeing
// per-subject event ordering. It is a secondary sink: the synchronous audit
// write in the session orchestrator remains the record of truth.
type Dispatcher struct {
	workers  []chan domain.SecurityAuditLog
	consumer Consumer
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, consumer Consumer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.SecurityAuditLog, numWorkers),
		consumer: consumer,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SecurityAuditLog, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, ch := range d.workers {
		go d.runWorker(ctx, ch)
	}
}

// Notify implements ports.SecurityEventSink. It never blocks the session
// flows: when the responsible worker channel is full the event is dropped and
// counted.
func (d *Dispatcher) Notify(event domain.SecurityAuditLog) {
	select {
	case d.workers[d.shardIndex(event.Email)] <- event:
	default:
		metrics.SecurityEventsDroppedTotal.Inc()
		d.log.Warn().
			Str("event", event.EventType).
			Str("email", event.Email).
			Msg("security event dropped: worker channel full")
	}
}

// shardIndex maps a subject email deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, ch <-chan domain.SecurityAuditLog) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.consumer.Consume(ctx, event)
		}
	}
}
