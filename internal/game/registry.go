package game

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/exp/maps"
)

const subscriberBuffer = 32

// Registry is the table of loaded games. It allows one instance per name and
// tracks the single game considered current.
type Registry struct {
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu        sync.Mutex
	games     map[string]Game
	current   string
	listeners []Listener
	relays    map[string]*finishRelay

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSub     int
}

func NewRegistry(dispatcher *Dispatcher, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dispatcher:  dispatcher,
		logger:      logger.With("component", "registry"),
		games:       make(map[string]Game),
		relays:      make(map[string]*finishRelay),
		subscribers: make(map[int]chan Event),
	}
}

// Register inserts or replaces the game stored under name.
func (r *Registry) Register(name string, g Game) {
	r.mu.Lock()
	_, replaced := r.games[name]
	r.games[name] = g
	r.mu.Unlock()

	r.logger.Debug("game registered", "name", name, "version", g.Version(), "replaced", replaced)
	r.emitEvent(EventTypeGameRegistered, name, map[string]any{
		"version":  g.Version(),
		"replaced": replaced,
	})
}

// Start attaches the global listeners to the named game, marks it current and
// starts it. A game that is already current is not stopped first; callers
// that switch games call StopCurrent beforehand. The listeners stay attached
// for one run and are detached when it finishes.
func (r *Registry) Start(name string) (*Handle, error) {
	r.mu.Lock()
	g, ok := r.games[name]
	if !ok {
		r.mu.Unlock()
		return nil, &NotFoundError{Name: name}
	}
	r.attach(name, g)
	r.current = name
	r.mu.Unlock()

	g.Start()

	// The previous run's finish may have detached the listeners after they
	// were attached above.
	r.mu.Lock()
	if !hasFinished(g) {
		r.attach(name, g)
	}
	r.mu.Unlock()

	r.logger.Info("game started", "name", name, "version", g.Version())
	r.emitEvent(EventTypeGameStarted, name, map[string]any{"version": g.Version()})

	handle := &Handle{Name: name, Game: g}
	if p, ok := g.(Presenter); ok {
		handle.View = p.View()
	}
	return handle, nil
}

// StopCurrent stops the current game, if any, and clears it.
func (r *Registry) StopCurrent() (string, bool) {
	r.mu.Lock()
	name := r.current
	g, ok := r.games[name]
	r.current = ""
	r.mu.Unlock()

	if name == "" || !ok {
		return "", false
	}
	g.Stop()
	r.emitEvent(EventTypeGameStopped, name, nil)
	return name, true
}

// AddListener registers a listener for every game started from now on.
// Notifications reach it through the dispatcher, never on the game's own
// goroutine.
func (r *Registry) AddListener(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.listeners {
		if q, ok := existing.(*queued); ok && sameListener(q.target, l) {
			return
		}
	}
	r.listeners = append(r.listeners, &queued{target: l, dispatcher: r.dispatcher})
}

// ListAvailable returns the registered names in sorted order.
func (r *Registry) ListAvailable() []string {
	r.mu.Lock()
	names := maps.Keys(r.games)
	slices.Sort(names)
	r.mu.Unlock()
	return names
}

func (r *Registry) Get(name string) (Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[name]
	return g, ok
}

// Current returns the name of the current game.
func (r *Registry) Current() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.current != ""
}

// Subscribe returns a channel of registry events. Events are dropped for
// subscribers that fall behind. The returned function unsubscribes.
func (r *Registry) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = ch
	r.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subscribers, id)
			r.subMu.Unlock()
			close(ch)
		})
	}
}

// attach must be called with r.mu held.
func (r *Registry) attach(name string, g Game) {
	for _, l := range r.listeners {
		g.AddListener(l)
	}
	g.AddListener(r.relayFor(name, g))
}

// relayFor must be called with r.mu held.
func (r *Registry) relayFor(name string, g Game) *finishRelay {
	if l, ok := r.relays[name]; ok && l.game == g {
		return l
	}
	l := &finishRelay{registry: r, name: name, game: g}
	r.relays[name] = l
	return l
}

func (r *Registry) finished(relay *finishRelay, stats GameStats) {
	name, g := relay.name, relay.game

	r.mu.Lock()
	if r.current == name && r.games[name] == g {
		r.current = ""
	}
	// A game shared with other registries, such as a plugin singleton, must not
	// keep notifying this one after the run. A run that has already begun
	// again keeps its listeners.
	if !isRunning(g) {
		for _, l := range r.listeners {
			g.RemoveListener(l)
		}
		g.RemoveListener(relay)
	}
	r.mu.Unlock()

	r.emitEvent(EventTypeGameFinished, name, map[string]any{
		"run_id": stats.RunID.String(),
		"stats":  stats.Stats,
	})
}

func (r *Registry) emitEvent(eventType EventType, name string, payload map[string]any) {
	event := Event{
		Type:      eventType,
		GameName:  name,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subscribers {
		select {
		case ch <- event:
		default:
			r.logger.Warn("subscriber lagging, event dropped", "subscriber", id, "type", eventType)
		}
	}
}

type stateful interface {
	State() State
}

// isRunning reports false for games that do not expose their state.
func isRunning(g Game) bool {
	st, ok := g.(stateful)
	return ok && st.State() == StateRunning
}

func hasFinished(g Game) bool {
	st, ok := g.(stateful)
	return ok && st.State() == StateFinished
}

type finishRelay struct {
	registry *Registry
	name     string
	game     Game
}

func (f *finishRelay) OnGameFinished(stats GameStats) {
	f.registry.finished(f, stats)
}
