package game

import (
	"reflect"
	"sync"
	"time"
)

// State is the run state of a game.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Lifecycle implements the Idle -> Running -> Finished state machine and the
// listener list shared by every game. Games embed it and call Begin from Start
// and Finish from their terminal condition or from Stop.
type Lifecycle struct {
	mu        sync.Mutex
	state     State
	run       uint64
	startedAt time.Time
	listeners []Listener

	// Now is used for snapshot timestamps. Defaults to time.Now.
	Now func() time.Time
}

func (l *Lifecycle) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Begin moves the game to Running. It returns false if the game is already
// running, in which case the caller must not start its loop a second time.
// A finished game may be started again for another run.
func (l *Lifecycle) Begin() bool {
	_, ok := l.BeginRun()
	return ok
}

// BeginRun is Begin that also returns a token identifying the new run, for
// games whose loop may outlive the run it was started for. See FinishRun.
func (l *Lifecycle) BeginRun() (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == StateRunning {
		return l.run, false
	}
	l.run++
	l.state = StateRunning
	l.startedAt = l.now()
	return l.run, true
}

// Finish ends the current run and notifies listeners in the order they were
// added. Only the first call per run has an effect; later calls and calls on an
// idle game return false.
func (l *Lifecycle) Finish(name string, stats map[string]any) (GameStats, bool) {
	return l.finish(0, name, stats)
}

// FinishRun is Finish restricted to the run identified by run. A loop left
// over from an earlier run cannot end a later one.
func (l *Lifecycle) FinishRun(run uint64, name string, stats map[string]any) (GameStats, bool) {
	if run == 0 {
		return GameStats{}, false
	}
	return l.finish(run, name, stats)
}

func (l *Lifecycle) finish(run uint64, name string, stats map[string]any) (GameStats, bool) {
	l.mu.Lock()
	if l.state != StateRunning || (run != 0 && run != l.run) {
		l.mu.Unlock()
		return GameStats{}, false
	}
	l.state = StateFinished
	snapshot := NewGameStats(name, stats, l.now())
	listeners := make([]Listener, len(l.listeners))
	copy(listeners, l.listeners)
	l.mu.Unlock()

	for _, li := range listeners {
		li.OnGameFinished(snapshot)
	}
	return snapshot, true
}

// State returns the current run state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// StartedAt returns when the current or last run began.
func (l *Lifecycle) StartedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startedAt
}

// AddListener attaches li. Adding the same listener twice keeps one entry.
func (l *Lifecycle) AddListener(li Listener) {
	if li == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.listeners {
		if sameListener(existing, li) {
			return
		}
	}
	l.listeners = append(l.listeners, li)
}

func (l *Lifecycle) RemoveListener(li Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, existing := range l.listeners {
		if sameListener(existing, li) {
			l.listeners = append(l.listeners[:i], l.listeners[i+1:]...)
			return
		}
	}
}

// ListenerCount reports how many listeners are attached.
func (l *Lifecycle) ListenerCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.listeners)
}

// sameListener compares listeners by identity without panicking on
// uncomparable dynamic types.
func sameListener(a, b Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}
