// Package api serves the arcade over HTTP: game listing, rankings, score
// history, remote start and stop, and a websocket stream of registry events.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"arcade-go/internal/auth"
	"arcade-go/internal/game"
	"arcade-go/internal/game/ranking"
	"arcade-go/internal/stats"
)

const dateLayout = "2006-01-02"

// Games is the part of the registry the API drives.
type Games interface {
	ListAvailable() []string
	Get(name string) (game.Game, bool)
	Current() (string, bool)
	Start(name string) (*game.Handle, error)
	StopCurrent() (string, bool)
	Subscribe() (<-chan game.Event, func())
}

type Handler struct {
	games       Games
	store       stats.StatsStore
	auth        *auth.Service
	rankingSize int
	location    *time.Location
	logger      *slog.Logger
	upgrader    websocket.Upgrader

	closeOnce sync.Once
	done      chan struct{}
}

type Options struct {
	RankingSize int
	Location    *time.Location
	Logger      *slog.Logger
	// CheckOrigin overrides the websocket origin check, which by default
	// only accepts same-host origins.
	CheckOrigin func(r *http.Request) bool
}

func NewHandler(games Games, store stats.StatsStore, authService *auth.Service, opts Options) *Handler {
	if opts.RankingSize <= 0 {
		opts.RankingSize = 3
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		games:       games,
		store:       store,
		auth:        authService,
		rankingSize: opts.RankingSize,
		location:    opts.Location,
		logger:      opts.Logger.With("component", "api"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		done: make(chan struct{}),
	}
}

// Close ends every open event stream.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

type GameResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Running   bool     `json:"running"`
	HighScore *float64 `json:"high_score"`
}

type StandingResponse struct {
	Position   int       `json:"position"`
	Medal      string    `json:"medal"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}

type ScoreResponse struct {
	ID         int64     `json:"id"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	current, _ := h.games.Current()
	names := h.games.ListAvailable()

	out := make([]GameResponse, 0, len(names))
	for _, name := range names {
		g, ok := h.games.Get(name)
		if !ok {
			continue
		}
		high, err := h.store.HighScore(r.Context(), name)
		if err != nil {
			h.serverError(w, err)
			return
		}
		out = append(out, GameResponse{
			Name:      name,
			Version:   g.Version(),
			Running:   name == current,
			HighScore: optionalScore(high),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Rankings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, ok := h.limit(w, r)
	if !ok {
		return
	}
	all, err := h.store.TopNAllGames(r.Context(), n)
	if err != nil {
		h.serverError(w, err)
		return
	}

	out := make(map[string][]StandingResponse, len(all))
	for name, records := range all {
		out[name] = standings(records)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GameRankings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, ok := h.limit(w, r)
	if !ok {
		return
	}
	records, err := h.store.TopN(r.Context(), ps.ByName("name"), n)
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings(records))
}

// GameScores returns the full history, or the runs of the calendar days
// between from and to when both are given.
func (h *Handler) GameScores(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	query := r.URL.Query()
	fromValue, toValue := query.Get("from"), query.Get("to")

	var (
		records []stats.ScoreRecord
		err     error
	)
	switch {
	case fromValue == "" && toValue == "":
		records, err = h.store.AllScores(r.Context(), name)
	case fromValue == "" || toValue == "":
		http.Error(w, "from and to must be given together", http.StatusBadRequest)
		return
	default:
		from, perr := time.ParseInLocation(dateLayout, fromValue, h.location)
		if perr != nil {
			http.Error(w, "invalid from date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to, perr := time.ParseInLocation(dateLayout, toValue, h.location)
		if perr != nil {
			http.Error(w, "invalid to date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		records, err = h.store.ScoresInRange(r.Context(), name, from, to)
	}
	if err != nil {
		h.serverError(w, err)
		return
	}

	out := make([]ScoreResponse, len(records))
	for i, rec := range records {
		out[i] = ScoreResponse{ID: rec.ID, Score: rec.Score, RecordedAt: rec.RecordedAt.In(h.location)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) HighScore(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	high, err := h.store.HighScore(r.Context(), name)
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game":       name,
		"high_score": optionalScore(high),
	})
}

// StartGame stops whatever is running and starts the named game.
func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	if _, ok := h.games.Get(name); !ok {
		http.Error(w, (&game.NotFoundError{Name: name}).Error(), http.StatusNotFound)
		return
	}

	h.games.StopCurrent()
	handle, err := h.games.Start(name)
	if err != nil {
		if errors.Is(err, game.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.serverError(w, err)
		return
	}

	h.logger.Info("game started remotely", "game", name, "operator", operatorSubject(r))
	writeJSON(w, http.StatusAccepted, map[string]string{
		"name":    handle.Name,
		"version": handle.Game.Version(),
	})
}

func (h *Handler) StopGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name, ok := h.games.StopCurrent()
	if !ok {
		http.Error(w, "no game is running", http.StatusConflict)
		return
	}
	h.logger.Info("game stopped remotely", "game", name, "operator", operatorSubject(r))
	writeJSON(w, http.StatusOK, map[string]string{"stopped": name})
}

func (h *Handler) DeleteScores(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	n, err := h.store.DeleteHistory(r.Context(), name)
	if err != nil {
		h.serverError(w, err)
		return
	}
	h.logger.Info("history reset remotely", "game", name, "count", n, "operator", operatorSubject(r))
	writeJSON(w, http.StatusOK, map[string]any{"game": name, "deleted": n})
}

// SubscribeToEvents streams registry events as JSON messages until the client
// disconnects or the handler is closed.
func (h *Handler) SubscribeToEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	// Subscribe first so no event is missed between upgrade and loop.
	events, cancel := h.games.Subscribe()
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are seen.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-gone:
			return
		case <-h.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return
		}
	}
}

// Routes registers every endpoint. Mutating routes require a bearer token.
func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.GET("/games", h.ListGames)
	router.GET("/rankings", h.Rankings)
	router.GET("/games/:name/rankings", h.GameRankings)
	router.GET("/games/:name/scores", h.GameScores)
	router.GET("/games/:name/highscore", h.HighScore)
	router.GET("/events", h.SubscribeToEvents)

	router.POST("/games/:name/start", auth.RequireAuth(h.StartGame))
	router.POST("/stop", auth.RequireAuth(h.StopGame))
	router.DELETE("/games/:name/scores", auth.RequireAuth(h.DeleteScores))

	auth.NewHandler(h.auth).RegisterRoutes(router)

	return accessLog(h.logger, h.auth.Middleware(router))
}

func (h *Handler) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	value := r.URL.Query().Get("n")
	if value == "" {
		return h.rankingSize, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		http.Error(w, "n must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func standings(records []stats.ScoreRecord) []StandingResponse {
	scores := make([]float64, len(records))
	for i, rec := range records {
		scores[i] = rec.Score
	}
	out := make([]StandingResponse, len(records))
	for i, s := range ranking.Standings(scores) {
		out[i] = StandingResponse{
			Position:   s.Position,
			Medal:      s.Medal,
			Score:      s.Score,
			RecordedAt: records[i].RecordedAt,
		}
	}
	return out
}

func optionalScore(score float64) *float64 {
	if score == stats.NoScore {
		return nil
	}
	return &score
}

func operatorSubject(r *http.Request) string {
	if op := auth.GetOperator(r.Context()); op != nil {
		return op.Subject
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
