package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually-advanced Clock for deterministic tests.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	timers  []*fakeTimer
	tickers []*fakeTicker
}

// NewFake returns a Fake clock starting at t0.
func NewFake(t0 time.Time) *Fake {
	return &Fake{now: t0}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, cb func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{fire: f.now.Add(d), cb: cb, active: true}
	f.timers = append(f.timers, t)
	return t
}

func (f *Fake) Ticker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{period: d, next: f.now.Add(d), ch: make(chan time.Time, 64), active: true}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance moves the fake clock forward by d, firing any timers/tickers
// whose deadline falls within the new window, in discovery order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	var due []func()
	for _, t := range f.timers {
		if t.active && !t.fire.After(target) {
			t.active = false
			due = append(due, t.cb)
		}
	}
	for _, t := range f.tickers {
		for t.active && !t.next.After(target) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return false }) // preserve discovery order
	f.now = target
	f.mu.Unlock()

	for _, cb := range due {
		cb()
	}
}

type fakeTimer struct {
	fire   time.Time
	cb     func()
	active bool
}

func (t *fakeTimer) Stop() bool {
	was := t.active
	t.active = false
	return was
}

type fakeTicker struct {
	period time.Duration
	next   time.Time
	ch     chan time.Time
	active bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               { t.active = false }
