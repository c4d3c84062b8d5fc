package goNebula

import (
	"sync"
	"sync/atomic"
)

// Progress is a global activity indicator. Start is called once per request
// before it is sent; the returned func is called exactly once when the
// request finishes, whatever the outcome.
type Progress interface {
	Start() (done func())
}

// NoopProgress ignores activity.
type NoopProgress struct{}

func (NoopProgress) Start() func() { return func() {} }

// CountingProgress tracks in-flight and total requests. It is safe for
// concurrent use and is what tests and the CLI spinner observe.
type CountingProgress struct {
	inFlight atomic.Int64
	started  atomic.Uint64
	finished atomic.Uint64
}

func (p *CountingProgress) Start() func() {
	p.inFlight.Add(1)
	p.started.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.inFlight.Add(-1)
			p.finished.Add(1)
		})
	}
}

// InFlight returns the number of started but unfinished requests.
func (p *CountingProgress) InFlight() int64 { return p.inFlight.Load() }

// Started returns how many requests have started.
func (p *CountingProgress) Started() uint64 { return p.started.Load() }

// Finished returns how many requests have finished.
func (p *CountingProgress) Finished() uint64 { return p.finished.Load() }
