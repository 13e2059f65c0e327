package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Dispatcher routes appointment events to a fixed set of workers using
// consistent hashing on the appointment id, so events of one appointment are
// published in the order they were enqueued.
type Dispatcher struct {
	mu        sync.RWMutex
	closed    bool
	workers   []chan domain.AppointmentEvent
	publisher ports.EventPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup
	// OnDrop, when set, is called for every event discarded because its worker was full.
	OnDrop func(domain.AppointmentEvent)
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.EventPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.AppointmentEvent, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AppointmentEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit once Stop has closed
// their channel and the backlog is drained.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its appointment. It
// never blocks: when the worker is backed up the event is dropped and logged.
func (d *Dispatcher) Enqueue(event domain.AppointmentEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.workers[d.shardIndex(event.AppointmentID)] <- event:
	default:
		d.log.Warn().
			Str("event", string(event.Type)).
			Str("appointment_id", event.AppointmentID).
			Msg("event queue full, dropping event")
		if d.OnDrop != nil {
			d.OnDrop(event)
		}
	}
}

// Stop closes the worker channels and waits until queued events are published.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps an appointment id deterministically to a worker index.
func (d *Dispatcher) shardIndex(appointmentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(appointmentID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AppointmentEvent) {
	defer d.wg.Done()
	for event := range ch {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		err := d.publisher.Publish(pubCtx, event)
		cancel()
		if err != nil {
			d.log.Error().Err(err).
				Str("event", string(event.Type)).
				Str("appointment_id", event.AppointmentID).
				Int("worker_id", id).
				Msg("event publish failed")
		}
	}
}
