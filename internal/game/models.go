package game

import (
	"time"

	"github.com/google/uuid"
)

// Game is the capability set every loadable plugin must expose.
type Game interface {
	Start()
	Stop()
	Name() string
	Version() string
	Stats() map[string]any
	AddListener(l Listener)
	RemoveListener(l Listener)
}

// Presenter is implemented by games that hand the host something to display.
// Terminal games return a tea.Model; the runtime never looks inside.
type Presenter interface {
	View() any
}

// Listener is notified once per finished run.
type Listener interface {
	OnGameFinished(stats GameStats)
}

type listenerFunc struct {
	fn func(GameStats)
}

func (l *listenerFunc) OnGameFinished(stats GameStats) { l.fn(stats) }

// NewListener adapts fn to a Listener. Each call returns a distinct listener.
func NewListener(fn func(GameStats)) Listener {
	return &listenerFunc{fn: fn}
}

// GameStats is the snapshot taken when a run finishes.
type GameStats struct {
	GameName  string         `json:"game_name"`
	Stats     map[string]any `json:"stats"`
	Timestamp time.Time      `json:"timestamp"`
	RunID     uuid.UUID      `json:"run_id"`
}

// NewGameStats copies stats so the snapshot cannot change after construction.
func NewGameStats(name string, stats map[string]any, at time.Time) GameStats {
	copied := make(map[string]any, len(stats))
	for k, v := range stats {
		copied[k] = v
	}
	return GameStats{
		GameName:  name,
		Stats:     copied,
		Timestamp: at,
		RunID:     uuid.New(),
	}
}

// Score returns the raw "score" entry, if any.
func (s GameStats) Score() (any, bool) {
	v, ok := s.Stats["score"]
	return v, ok
}

// EventType represents the registry events observers can subscribe to
type EventType string

const (
	EventTypeGameRegistered EventType = "game_registered"
	EventTypeGameStarted    EventType = "game_started"
	EventTypeGameFinished   EventType = "game_finished"
	EventTypeGameStopped    EventType = "game_stopped"
)

// Event is broadcast by the registry to its subscribers.
type Event struct {
	Type      EventType      `json:"type"`
	GameName  string         `json:"game_name"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Handle is returned by Registry.Start.
type Handle struct {
	Name string
	Game Game
	// View is the presenter handle, nil when the game has none.
	View any
}
