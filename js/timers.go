package js

import (
	"sync"
	"time"

	"github.com/dop251/goja"
)

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// timer is one scheduled setTimeout or setInterval entry.
type timer struct {
	id       int
	callback goja.Callable
	args     []goja.Value
	dueTime  time.Time
	interval time.Duration // 0 for one-shot
	cleared  bool
}

// timerManager owns the timer table for one runtime.
type timerManager struct {
	mu     sync.Mutex
	timers map[int]*timer
	nextID int
}

func newTimerManager() *timerManager {
	return &timerManager{
		timers: make(map[int]*timer),
		nextID: 1,
	}
}

func (tm *timerManager) setTimeout(callback goja.Callable, delay time.Duration, args []goja.Value) int {
	return tm.schedule(callback, delay, 0, args)
}

func (tm *timerManager) setInterval(callback goja.Callable, interval time.Duration, args []goja.Value) int {
	return tm.schedule(callback, interval, interval, args)
}

func (tm *timerManager) schedule(callback goja.Callable, delay, interval time.Duration, args []goja.Value) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	id := tm.nextID
	tm.nextID++
	tm.timers[id] = &timer{
		id:       id,
		callback: callback,
		args:     args,
		dueTime:  time.Now().Add(delay),
		interval: interval,
	}
	return id
}

func (tm *timerManager) clearTimer(id int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if t, ok := tm.timers[id]; ok {
		t.cleared = true
		delete(tm.timers, id)
	}
}

// process runs every due timer. Callbacks execute outside the lock so they
// may schedule or clear timers themselves.
func (tm *timerManager) process() {
	tm.mu.Lock()
	now := time.Now()
	var due []*timer
	for _, t := range tm.timers {
		if !t.cleared && !t.dueTime.After(now) {
			due = append(due, t)
		}
	}
	tm.mu.Unlock()

	for _, t := range due {
		if t.cleared {
			continue
		}
		_, _ = t.callback(goja.Undefined(), t.args...)

		tm.mu.Lock()
		if t.interval > 0 && !t.cleared {
			t.dueTime = time.Now().Add(t.interval)
		} else {
			delete(tm.timers, t.id)
		}
		tm.mu.Unlock()
	}
}

func (tm *timerManager) hasPending() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.timers) > 0
}
