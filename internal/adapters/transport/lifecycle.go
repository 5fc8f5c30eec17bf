// Package transport holds what the gRPC, HTTP and stdio servers share:
// idle shutdown, server status and the mapping between errors and status codes.
package transport

import (
	"fmt"
	"sync"
	"time"
)

// Lifecycle tracks the calls served by a tool server and shuts it down after
// a period without any. A zero timeout disables the idle timer.
// All methods are safe on a nil Lifecycle, which never shuts down.
type Lifecycle struct {
	mu       sync.Mutex
	timer    *time.Timer
	started  time.Time
	lastCall time.Time
	calls    int64
	idle     time.Duration
	done     chan struct{}
	once     sync.Once
}

// Status is a point-in-time view of a serving process.
type Status struct {
	Uptime        time.Duration
	IdleRemaining time.Duration
	Calls         int64
}

func (s Status) String() string {
	return fmt.Sprintf("uptime=%s calls=%d", s.Uptime.Truncate(time.Second), s.Calls)
}

// NewLifecycle starts the idle timer.
func NewLifecycle(idle time.Duration) *Lifecycle {
	now := time.Now()
	l := &Lifecycle{
		started:  now,
		lastCall: now,
		idle:     idle,
		done:     make(chan struct{}),
	}
	if idle > 0 {
		l.timer = time.AfterFunc(idle, l.close)
	}
	return l
}

// Touch counts a call and restarts the idle timer.
func (l *Lifecycle) Touch() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastCall = time.Now()
	l.calls++
	if l.timer != nil {
		l.timer.Reset(l.idle)
	}
}

// Status reports uptime, calls served and the time left before an idle
// shutdown. IdleRemaining is 0 when the timer is disabled.
func (l *Lifecycle) Status() Status {
	if l == nil {
		return Status{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	st := Status{Uptime: time.Since(l.started), Calls: l.calls}
	if l.idle > 0 {
		st.IdleRemaining = max(l.idle-time.Since(l.lastCall), 0)
	}
	return st
}

// Done closes when the server should stop.
func (l *Lifecycle) Done() <-chan struct{} {
	if l == nil {
		return nil
	}
	return l.done
}

// Stop releases the idle timer and closes Done. It is idempotent.
func (l *Lifecycle) Stop() {
	if l == nil {
		return
	}
	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
	}
	l.mu.Unlock()
	l.close()
}

func (l *Lifecycle) close() {
	l.once.Do(func() { close(l.done) })
}
