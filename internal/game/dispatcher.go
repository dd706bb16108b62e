package game

import (
	"fmt"
	"log/slog"
	"sync"
)

type delivery struct {
	listener Listener
	stats    GameStats
}

// Dispatcher delivers finish notifications on its own goroutine so the
// notifying game never waits for a slow listener. The queue is unbounded and
// delivered in FIFO order.
type Dispatcher struct {
	logger *slog.Logger

	mu       sync.Mutex
	idle     *sync.Cond
	queue    []delivery
	inflight int
	closed   bool

	signal chan struct{}
	done   chan struct{}
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		logger: logger.With("component", "dispatcher"),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	d.idle = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// Enqueue schedules a delivery and returns immediately. Deliveries enqueued
// after Close are dropped.
func (d *Dispatcher) Enqueue(l Listener, stats GameStats) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dropping notification after close", "game", stats.GameName)
		return
	}
	d.queue = append(d.queue, delivery{listener: l, stats: stats})
	d.inflight++
	select {
	case d.signal <- struct{}{}:
	default:
	}
	d.mu.Unlock()
}

// Wait blocks until every enqueued delivery has been made.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.inflight > 0 {
		d.idle.Wait()
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.signal)
	d.mu.Unlock()

	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		d.drain()
		if _, ok := <-d.signal; !ok {
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		next := d.queue[0]
		d.queue[0] = delivery{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.deliver(next)

		d.mu.Lock()
		d.inflight--
		if d.inflight == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}
}

func (d *Dispatcher) deliver(next delivery) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("listener panicked",
				"game", next.stats.GameName,
				"error", fmt.Sprint(r))
		}
	}()
	next.listener.OnGameFinished(next.stats)
}

// queued hands notifications to the dispatcher instead of calling the
// target directly. One adapter exists per global listener so that plugins
// see a stable identity across starts.
type queued struct {
	target     Listener
	dispatcher *Dispatcher
}

func (q *queued) OnGameFinished(stats GameStats) {
	q.dispatcher.Enqueue(q.target, stats)
}
