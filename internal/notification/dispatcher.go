package notification

import (
	"context"
	"sync"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// DispatcherOptions size the worker pool.
type DispatcherOptions struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

type job struct {
	name string
	run  func(ctx context.Context)
}

// Dispatcher queues notifications for a fixed pool of workers.
// Enqueueing never blocks: when the queue is full the notification is dropped.
type Dispatcher struct {
	handler Handler
	opts    DispatcherOptions
	queue   chan job
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Call Start before enqueueing.
func NewDispatcher(handler Handler, opts DispatcherOptions, m *metrics.Metrics, logger zerolog.Logger) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Dispatcher{
		handler: handler,
		opts:    opts,
		queue:   make(chan job, opts.QueueSize),
		metrics: m,
		logger:  logger.With().Str("component", "notification_dispatcher").Logger(),
	}
}

// Start launches the workers. It is a no-op when already started.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info().Int("workers", d.opts.Workers).Int("queue_size", d.opts.QueueSize).Msg("notification dispatcher started")
}

// Stop rejects new work, lets the workers drain the queue and waits for them.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info().Msg("notification dispatcher stopped")
}

// NotifyNewOrder queues the new-order notifications.
func (d *Dispatcher) NotifyNewOrder(order model.Order, items []model.OrderItem) {
	d.enqueue(job{
		name: EventOrderCreatedCustomer,
		run: func(ctx context.Context) {
			d.handler.OrderCreated(ctx, order, items)
		},
	})
}

// NotifyStatusChanged queues the status change notification.
func (d *Dispatcher) NotifyStatusChanged(order model.Order, previous, next model.OrderStatus) {
	d.enqueue(job{
		name: EventOrderStatusChanged,
		run: func(ctx context.Context) {
			d.handler.StatusChanged(ctx, order, previous, next)
		},
	})
}

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn().Str("job", j.name).Msg("dispatcher stopped, notification dropped")
		return
	}

	select {
	case d.queue <- j:
		d.metrics.SetNotificationQueueDepth(len(d.queue))
	default:
		d.metrics.RecordNotification("queue", "dropped")
		d.logger.Warn().Str("job", j.name).Msg("notification queue full, notification dropped")
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for j := range d.queue {
		d.metrics.SetNotificationQueueDepth(len(d.queue))
		d.runJob(id, j)
	}
}

func (d *Dispatcher) runJob(id int, j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Int("worker", id).Str("job", j.name).Interface("panic", r).Msg("notification job panicked")
		}
	}()

	j.run(ctx)
}
