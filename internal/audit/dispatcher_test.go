package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	got     []Event
}

func (s *blockingSink) Emit(_ context.Context, e Event) {
	<-s.release
	s.mu.Lock()
	s.got = append(s.got, e)
	s.mu.Unlock()
}

type panicSink struct{}

func (panicSink) Emit(context.Context, Event) { panic("boom") }

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{}, nil, nil)
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher dropped events")
	}
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink, nil)

	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), Event{EventType: "login_success"})
	}
	d.Close()
	d.Close()

	if len(sink.Events()) != 3 {
		t.Fatalf("expected 3 delivered events, got %d", len(sink.Events()))
	}
	d.Emit(context.Background(), Event{EventType: "late"})
	if len(sink.Events()) != 3 {
		t.Fatal("emit after close must be ignored")
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink, zap.New(core))

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "forbidden"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events with a blocked sink")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected a single drop warning, got %d", logs.Len())
	}
	close(sink.release)
	d.Close()
}

func TestDispatcherSurvivesSinkPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 2}, panicSink{}, zap.New(core))
	d.Emit(context.Background(), Event{EventType: "logout"})
	d.Emit(context.Background(), Event{EventType: "logout"})
	d.Close()
	if logs.Len() != 2 {
		t.Fatalf("expected 2 panic logs, got %d", logs.Len())
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONWriterSink(&buf)
	s.Emit(context.Background(), Event{EventType: "session_expired", Username: "alice", Status: 401, Timestamp: time.Unix(0, 0).UTC()})

	line := strings.TrimSpace(buf.String())
	var decoded map[string]any
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("invalid json line: %v", err)
	}
	if decoded["event_type"] != "session_expired" || decoded["status"] != float64(401) {
		t.Fatalf("unexpected event %v", decoded)
	}
}

func TestZapSink(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewZapSink(zap.New(core))
	s.Emit(context.Background(), Event{EventType: "login_failure", Username: "bob", Error: "bad"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != "login_failure" || fields["username"] != "bob" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestDispatcherStampsEvents(t *testing.T) {
	sink := NewChannelSink(4)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4, Frontend: "store", Now: func() time.Time { return fixed }}, sink, nil)

	d.Emit(context.Background(), Event{EventType: "logout"})
	d.Emit(context.Background(), Event{EventType: "login_success", Frontend: "admin", Timestamp: fixed.Add(time.Hour)})
	d.Close()

	first, second := <-sink.Events(), <-sink.Events()
	if first.Frontend != "store" || !first.Timestamp.Equal(fixed) {
		t.Fatalf("unstamped event not filled in: %+v", first)
	}
	if second.Frontend != "admin" || !second.Timestamp.Equal(fixed.Add(time.Hour)) {
		t.Fatalf("preset fields overwritten: %+v", second)
	}
}

func TestDispatcherCountsDropsPerType(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1}, sink, nil)

	d.Emit(context.Background(), Event{EventType: "login_success"})
	d.Emit(context.Background(), Event{EventType: "login_success"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Emit(ctx, Event{EventType: "session_expired"})
	d.Emit(ctx, Event{EventType: "session_expired"})

	if got := d.DroppedByType()["session_expired"]; got == 0 {
		t.Fatalf("expected session_expired drops, got %v", d.DroppedByType())
	}
	if got := d.DroppedByType()["login_success"]; got != 0 {
		t.Fatalf("blocking emits with a live context must not drop, got %d", got)
	}
	close(sink.release)
	d.Close()
	if d.Dropped() != d.DroppedByType()["session_expired"] {
		t.Fatalf("total %d does not match per-type %v", d.Dropped(), d.DroppedByType())
	}
}
