// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/encore/internal/adapters/watch"
	"github.com/okian/encore/internal/domain/catalog"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/ranking"
	"github.com/okian/encore/internal/domain/rooms"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Catalog() *catalog.Catalog

	CreateRoom(ctx context.Context, creator string) (model.Room, error)
	JoinRoom(ctx context.Context, roomID, judge string) (model.Room, error)
	GetRoom(ctx context.Context, roomID string) (model.Room, error)
	AddJudge(ctx context.Context, roomID, judge string) (model.Room, error)
	RemoveJudge(ctx context.Context, roomID, judge string) (model.Room, error)

	SubmitScore(ctx context.Context, roomID string, set model.ScoreSet) (model.Room, bool, error)
	ResetScores(ctx context.Context, roomID string) (model.Room, error)

	Leaderboard(ctx context.Context, roomID string) ([]ranking.Standing, error)
	ShareSummary(ctx context.Context, roomID string) (string, error)

	Watch(ctx context.Context, roomID string, fn func(watch.Event)) (func(), error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	catalogHandler     *CatalogHandler
	roomsHandler       *RoomsHandler
	judgesHandler      *JudgesHandler
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	watchHandler       *WatchHandler
	dashboardHandler   *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		catalogHandler:     NewCatalogHandler(deps),
		roomsHandler:       NewRoomsHandler(deps),
		judgesHandler:      NewJudgesHandler(deps),
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		watchHandler:       NewWatchHandler(deps),
		dashboardHandler:   newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /catalog", MetricsMiddleware(s.catalogHandler.HandleGetCatalog, "catalog"))

	mux.HandleFunc("POST /rooms", MetricsMiddleware(s.roomsHandler.HandleCreateRoom, "rooms"))
	mux.HandleFunc("GET /rooms/{id}", MetricsMiddleware(s.roomsHandler.HandleGetRoom, "room"))
	mux.HandleFunc("POST /rooms/{id}/join", MetricsMiddleware(s.roomsHandler.HandleJoinRoom, "join"))

	mux.HandleFunc("POST /rooms/{id}/judges", MetricsMiddleware(s.judgesHandler.HandleAddJudge, "judges"))
	mux.HandleFunc("DELETE /rooms/{id}/judges/{name}", MetricsMiddleware(s.judgesHandler.HandleRemoveJudge, "judges"))

	mux.HandleFunc("POST /rooms/{id}/scores", MetricsMiddleware(s.scoresHandler.HandleSubmitScore, "scores"))
	mux.HandleFunc("DELETE /rooms/{id}/scores", MetricsMiddleware(s.scoresHandler.HandleResetScores, "scores"))

	mux.HandleFunc("GET /rooms/{id}/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rooms/{id}/share", MetricsMiddleware(s.leaderboardHandler.HandleGetShare, "share"))

	mux.HandleFunc("GET /rooms/{id}/watch", s.watchHandler.HandleWatch)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain sentinel kinds to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room_not_found", err)
	case errors.Is(err, rooms.ErrDuplicateJudge):
		writeError(w, http.StatusConflict, "duplicate_judge", err)
	case errors.Is(err, rooms.ErrUnknownJudge):
		writeError(w, http.StatusForbidden, "unknown_judge", err)
	case errors.Is(err, rooms.ErrInvalidJudgeName),
		errors.Is(err, rooms.ErrUnknownContestant),
		errors.Is(err, rooms.ErrUnknownRound),
		errors.Is(err, rooms.ErrUnknownCriterion):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, rooms.ErrNoFreeCode):
		writeError(w, http.StatusServiceUnavailable, "no_free_code", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
