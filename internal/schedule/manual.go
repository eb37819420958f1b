package schedule

import (
	"context"
	"sync"
	"time"
)

// Manual is a Scheduler driven by Advance instead of wall time.
// Callbacks run on the goroutine calling Advance, in due-time order.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	at      time.Duration
	every   time.Duration
	seq     int
	ctx     context.Context
	f       func()
	stopped bool
}

type manualTimer struct {
	m *Manual
	t *manualTask
}

func (t manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.t.stopped {
		return false
	}
	t.t.stopped = true
	return true
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.addLocked(d, 0, nil, f)
	return manualTimer{m: m, t: t}
}

func (m *Manual) Every(ctx context.Context, d time.Duration, f func()) {
	if d <= 0 {
		d = time.Millisecond
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addLocked(d, d, ctx, f)
}

func (m *Manual) addLocked(d, every time.Duration, ctx context.Context, f func()) *manualTask {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTask{at: m.now + d, every: every, seq: m.seq, ctx: ctx, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Now reports the virtual time elapsed since the scheduler was created.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending counts tasks that may still fire.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped && (t.ctx == nil || t.ctx.Err() == nil) {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, firing everything that comes due,
// including tasks scheduled by callbacks inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		t := m.nextDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = t.at
		if t.every > 0 {
			t.at += t.every
		} else {
			t.stopped = true
		}
		m.mu.Unlock()
		t.f()
	}
}

func (m *Manual) nextDueLocked(target time.Duration) *manualTask {
	live := m.tasks[:0]
	var next *manualTask
	for _, t := range m.tasks {
		if t.stopped || (t.ctx != nil && t.ctx.Err() != nil) {
			continue
		}
		live = append(live, t)
		if t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	m.tasks = live
	return next
}
