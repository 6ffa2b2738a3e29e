// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/encore/internal/adapters/storage"
	"github.com/okian/encore/internal/adapters/watch"
	"github.com/okian/encore/internal/domain/catalog"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/ranking"
	"github.com/okian/encore/internal/domain/rooms"
	"github.com/okian/encore/pkg/logger"
	"github.com/okian/encore/pkg/metrics"
)

// Service wires storage, rooms and sync into the API surface.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   storage.Store
	rooms   *rooms.Service
	watcher *watch.Watcher
	catalog *catalog.Catalog

	// Configuration
	redisAddr      string
	redisPassword  string
	redisPrefix    string
	pollInterval   time.Duration
	codeDigits     int
	createAttempts int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog replaces the built-in competition catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Service) {
		if cat != nil {
			s.catalog = cat
		}
	}
}

// WithStore injects a pre-built store. Mostly useful in tests.
func WithStore(store storage.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRedis points storage at Redis instead of the in-process store.
func WithRedis(addr, password, prefix string) Option {
	return func(s *Service) {
		s.redisAddr = addr
		s.redisPassword = password
		s.redisPrefix = prefix
	}
}

// WithPollInterval sets the sync fallback polling cadence.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithRoomCodeDigits sets the length of generated room codes.
func WithRoomCodeDigits(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.codeDigits = n
		}
	}
}

// WithCreateAttempts bounds code-collision retries on room creation.
func WithCreateAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.createAttempts = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:        catalog.Default(),
		pollInterval:   2 * time.Second,
		codeDigits:     4,
		createAttempts: 16,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	s.logger.Info(ctx, "starting scoring service...")

	if s.store == nil {
		if s.redisAddr != "" {
			store, err := storage.NewRedisStore(ctx, s.redisAddr, s.redisPassword, s.redisPrefix)
			if err != nil {
				return err
			}
			s.store = store
			s.logger.Info(ctx, "using redis store", logger.String("addr", s.redisAddr))
		} else {
			s.store = storage.NewMemoryStore()
			s.logger.Info(ctx, "using in-memory store")
		}
	}

	s.rooms = rooms.New(s.store, s.catalog,
		rooms.WithCodeDigits(s.codeDigits),
		rooms.WithCreateAttempts(s.createAttempts),
		rooms.WithLogger(s.logger.Named("rooms")),
	)
	s.watcher = watch.New(s.store,
		watch.WithInterval(s.pollInterval),
		watch.WithLogger(s.logger.Named("watch")),
	)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("contestants", len(s.catalog.Contestants)),
		logger.Int("rounds", len(s.catalog.Rounds)),
		logger.Duration("pollInterval", s.pollInterval),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping scoring service...")

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// Catalog returns the active competition catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// CreateRoom creates a room with a fresh code and the creator as the
// first judge.
func (s *Service) CreateRoom(ctx context.Context, creator string) (model.Room, error) {
	return s.rooms.Create(ctx, creator)
}

// JoinRoom registers the judge in the room. Joining under a name that is
// already a member is a no-op.
func (s *Service) JoinRoom(ctx context.Context, roomID, judge string) (model.Room, error) {
	return s.rooms.Join(ctx, roomID, judge)
}

// GetRoom returns the current room snapshot.
func (s *Service) GetRoom(ctx context.Context, roomID string) (model.Room, error) {
	return s.rooms.Get(ctx, roomID)
}

// AddJudge adds a judge to the room roster.
func (s *Service) AddJudge(ctx context.Context, roomID, judge string) (model.Room, error) {
	return s.rooms.AddJudge(ctx, roomID, judge)
}

// RemoveJudge drops a judge from the roster. Submitted scores stay.
func (s *Service) RemoveJudge(ctx context.Context, roomID, judge string) (model.Room, error) {
	return s.rooms.RemoveJudge(ctx, roomID, judge)
}

// SubmitScore records a judge's score set, replacing any earlier
// submission for the same contestant and round. The returned flag
// reports whether an earlier submission was replaced.
func (s *Service) SubmitScore(ctx context.Context, roomID string, set model.ScoreSet) (model.Room, bool, error) {
	return s.rooms.Submit(ctx, roomID, set)
}

// ResetScores clears every score in the room and keeps the roster.
func (s *Service) ResetScores(ctx context.Context, roomID string) (model.Room, error) {
	return s.rooms.ResetScores(ctx, roomID)
}

// DeleteRoom removes the room entirely.
func (s *Service) DeleteRoom(ctx context.Context, roomID string) error {
	return s.rooms.Delete(ctx, roomID)
}

// Leaderboard ranks the room's contestants from its current scores.
func (s *Service) Leaderboard(ctx context.Context, roomID string) ([]ranking.Standing, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return ranking.Rank(s.catalog, room.Scores, len(room.Judges)), nil
}

// ShareSummary renders the room's standings as shareable text.
func (s *Service) ShareSummary(ctx context.Context, roomID string) (string, error) {
	standings, err := s.Leaderboard(ctx, roomID)
	if err != nil {
		return "", err
	}
	return ranking.ShareText(standings), nil
}

// Watch subscribes fn to the room's change stream. The first event
// carries the current state; the returned stop function ends delivery.
func (s *Service) Watch(ctx context.Context, roomID string, fn func(watch.Event)) (func(), error) {
	return s.watcher.Watch(ctx, roomID, fn)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"contestants":    len(s.catalog.Contestants),
		"rounds":         len(s.catalog.Rounds),
		"pollIntervalMS": s.pollInterval.Milliseconds(),
	}

	if s.started {
		total := s.rooms.Count(context.Background())
		stats["totalRooms"] = total
		metrics.UpdateTotalRooms(total)
	}

	return stats
}
