package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Config controls dispatcher buffering and the fields stamped on every event.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// Frontend is copied into Event.Frontend when the event leaves it empty.
	Frontend string
	// Now stamps Event.Timestamp when it is zero. Defaults to time.Now in UTC.
	Now func() time.Time
}

// Dispatcher hands audit events to a Sink on its own goroutine.
type Dispatcher struct {
	cfg    Config
	sink   Sink
	logger *zap.Logger

	// mu guards closed and the send side of events; Close takes it for
	// writing so no Emit can race with close(events).
	mu     sync.RWMutex
	closed bool
	events chan Event
	idle   chan struct{}

	dropped atomic.Uint64
	dropMu  sync.Mutex
	perType map[string]uint64
}

// NewDispatcher starts a dispatcher. It returns nil when auditing is
// disabled; a nil *Dispatcher is safe to use.
func NewDispatcher(cfg Config, sink Sink, logger *zap.Logger) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Dispatcher{
		cfg:     cfg,
		sink:    sink,
		logger:  logger,
		events:  make(chan Event, cfg.BufferSize),
		idle:    make(chan struct{}),
		perType: make(map[string]uint64),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.idle)
	for event := range d.events {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("audit sink panicked", zap.String("event_type", event.EventType), zap.Any("panic", r))
		}
	}()
	d.sink.Emit(context.Background(), event)
}

// Emit stamps event and queues it. With DropIfFull a full buffer drops the
// event; otherwise Emit waits for room or for ctx.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.cfg.Now()
	}
	if event.Frontend == "" {
		event.Frontend = d.cfg.Frontend
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.cfg.DropIfFull {
		select {
		case d.events <- event:
		default:
			d.drop(event.EventType)
		}
		return
	}
	select {
	case d.events <- event:
	case <-ctx.Done():
		d.drop(event.EventType)
	}
}

func (d *Dispatcher) drop(eventType string) {
	if d.dropped.Add(1) == 1 {
		d.logger.Warn("audit buffer full, dropping events", zap.Int("buffer", d.cfg.BufferSize))
	}
	d.dropMu.Lock()
	d.perType[eventType]++
	d.dropMu.Unlock()
}

// Close stops accepting events, delivers what is buffered and waits for the
// sink. It is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()
	<-d.idle
}

// Dropped reports how many events were discarded.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// DroppedByType returns the discarded count per event type.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	out := map[string]uint64{}
	if d == nil {
		return out
	}
	d.dropMu.Lock()
	defer d.dropMu.Unlock()
	for k, v := range d.perType {
		out[k] = v
	}
	return out
}
