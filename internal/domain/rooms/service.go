// Package rooms manages room lifecycle and membership on top of the shared
// key-value namespace: creation with collision-checked short codes,
// idempotent joins, judge registration, and score submission with the
// replace-by-identity-key rule.
package rooms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/okian/encore/internal/adapters/storage"
	"github.com/okian/encore/internal/domain/catalog"
	"github.com/okian/encore/internal/domain/model"
	"github.com/okian/encore/internal/domain/scores"
	"github.com/okian/encore/pkg/logger"
	"github.com/okian/encore/pkg/metrics"
)

// keyPrefix namespaces room entries inside the shared store.
const keyPrefix = "room:"

// Default room code shape: 4-digit numeric, regenerated on collision.
const (
	defaultCodeDigits     = 4
	defaultCreateAttempts = 16
)

// Key returns the storage key holding the serialized room.
func Key(roomID string) string { return keyPrefix + roomID }

// Service owns all room state transitions. Read-modify-write cycles are
// serialized per process; across processes the namespace is last-write-wins,
// which the replace-by-key submission rule tolerates.
type Service struct {
	mu sync.Mutex

	store          storage.Store
	cat            *catalog.Catalog
	codeDigits     int
	createAttempts int
	log            logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCodeDigits sets the number of digits in generated room codes.
func WithCodeDigits(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.codeDigits = n
		}
	}
}

// WithCreateAttempts bounds collision retries during room creation.
func WithCreateAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.createAttempts = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a room service over the given store and catalog.
func New(store storage.Store, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		store:          store,
		cat:            cat,
		codeDigits:     defaultCodeDigits,
		createAttempts: defaultCreateAttempts,
		log:            logger.Get().Named("rooms"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create generates a fresh room with the creator as sole member. The short
// numeric code is re-rolled while it collides with an existing room.
func (s *Service) Create(ctx context.Context, creator string) (model.Room, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return model.Room{}, ErrInvalidJudgeName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < s.createAttempts; attempt++ {
		code := s.randomCode()
		_, err := s.store.Get(ctx, Key(code))
		if err == nil {
			metrics.RecordRoomCodeCollision()
			continue
		}
		if !errors.Is(err, storage.ErrKeyNotFound) {
			return model.Room{}, fmt.Errorf("room code probe: %w", err)
		}

		now := model.Now()
		room := model.Room{
			ID:        code,
			Judges:    []string{creator},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.save(ctx, room); err != nil {
			return model.Room{}, err
		}
		metrics.RecordRoomCreated()
		s.log.Info(ctx, "room created",
			logger.String("room", code), logger.String("creator", creator))
		return room, nil
	}
	return model.Room{}, ErrNoFreeCode
}

// Join adds the judge to the room's membership if absent. Rejoining with an
// already-registered name is idempotent and returns the current snapshot.
func (s *Service) Join(ctx context.Context, roomID, judge string) (model.Room, error) {
	judge = strings.TrimSpace(judge)
	if judge == "" {
		return model.Room{}, ErrInvalidJudgeName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.load(ctx, roomID)
	if err != nil {
		metrics.RecordRoomJoinFailure()
		return model.Room{}, err
	}
	if !room.HasJudge(judge) {
		room.Judges = append(room.Judges, judge)
		room.UpdatedAt = model.Now()
		if err := s.save(ctx, room); err != nil {
			return model.Room{}, err
		}
	}
	metrics.RecordRoomJoined()
	return room, nil
}

// Get returns the current room snapshot.
func (s *Service) Get(ctx context.Context, roomID string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, roomID)
}

// AddJudge registers a new judge name; names are deduplicated by exact
// string match within the room.
func (s *Service) AddJudge(ctx context.Context, roomID, judge string) (model.Room, error) {
	judge = strings.TrimSpace(judge)
	if judge == "" {
		return model.Room{}, ErrInvalidJudgeName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.load(ctx, roomID)
	if err != nil {
		return model.Room{}, err
	}
	if room.HasJudge(judge) {
		return model.Room{}, ErrDuplicateJudge
	}
	room.Judges = append(room.Judges, judge)
	room.UpdatedAt = model.Now()
	if err := s.save(ctx, room); err != nil {
		return model.Room{}, err
	}
	return room, nil
}

// RemoveJudge drops a judge from the active list. Their score sets are
// retained; they simply stop counting toward coverage.
func (s *Service) RemoveJudge(ctx context.Context, roomID, judge string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.load(ctx, roomID)
	if err != nil {
		return model.Room{}, err
	}
	if !room.HasJudge(judge) {
		return model.Room{}, ErrUnknownJudge
	}
	kept := room.Judges[:0]
	for _, j := range room.Judges {
		if j != judge {
			kept = append(kept, j)
		}
	}
	room.Judges = kept
	room.UpdatedAt = model.Now()
	if err := s.save(ctx, room); err != nil {
		return model.Room{}, err
	}
	s.log.Info(ctx, "judge removed",
		logger.String("room", roomID), logger.String("judge", judge))
	return room, nil
}

// Submit validates a score set against the catalog, clamps every criterion
// value, fills unrated criteria with zero, and upserts it by identity key.
// Returns the updated room and whether an existing set was replaced.
func (s *Service) Submit(ctx context.Context, roomID string, set model.ScoreSet) (model.Room, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.load(ctx, roomID)
	if err != nil {
		return model.Room{}, false, err
	}
	if !room.HasJudge(set.Judge) {
		metrics.RecordScoreRejection("unknown_judge")
		return model.Room{}, false, ErrUnknownJudge
	}
	if _, ok := s.cat.Contestant(set.ContestantID); !ok {
		metrics.RecordScoreRejection("unknown_contestant")
		return model.Room{}, false, ErrUnknownContestant
	}
	round, ok := s.cat.Round(set.RoundID)
	if !ok {
		metrics.RecordScoreRejection("unknown_round")
		return model.Room{}, false, ErrUnknownRound
	}

	clamped := make(map[string]float64, len(round.Criteria))
	for id, v := range set.CriteriaScores {
		cv, ok := s.cat.Clamp(set.RoundID, id, v)
		if !ok {
			metrics.RecordScoreRejection("unknown_criterion")
			return model.Room{}, false, fmt.Errorf("%w: %s", ErrUnknownCriterion, id)
		}
		clamped[id] = cv
	}
	// Unrated criteria default to zero so partial submissions are valid.
	for _, crit := range round.Criteria {
		if _, rated := clamped[crit.ID]; !rated {
			clamped[crit.ID] = 0
		}
	}
	set.CriteriaScores = clamped
	set.UpdatedAt = model.Now()

	collection := scores.FromSlice(room.Scores)
	replaced := collection.Upsert(set)
	room.Scores = collection.Snapshot()
	room.UpdatedAt = set.UpdatedAt

	if err := s.save(ctx, room); err != nil {
		return model.Room{}, false, err
	}
	metrics.RecordScoreSubmission()
	if replaced {
		metrics.RecordScoreReplacement()
	}
	return room, replaced, nil
}

// ResetScores clears the room's score collection, keeping membership.
func (s *Service) ResetScores(ctx context.Context, roomID string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.load(ctx, roomID)
	if err != nil {
		return model.Room{}, err
	}
	room.Scores = nil
	room.UpdatedAt = model.Now()
	if err := s.save(ctx, room); err != nil {
		return model.Room{}, err
	}
	s.log.Info(ctx, "room scores reset", logger.String("room", roomID))
	return room, nil
}

// Delete removes the room entirely; watchers observe a not-found state.
func (s *Service) Delete(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(ctx, roomID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, Key(roomID)); err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	return nil
}

// Count returns the number of rooms present in the namespace.
func (s *Service) Count(ctx context.Context) int {
	keys, err := s.store.Keys(ctx, keyPrefix)
	if err != nil {
		return 0
	}
	return len(keys)
}

// load reads and decodes a room. A missing key is ErrRoomNotFound; a
// malformed payload degrades to an empty room shell rather than an error.
func (s *Service) load(ctx context.Context, roomID string) (model.Room, error) {
	raw, err := s.store.Get(ctx, Key(roomID))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return model.Room{}, ErrRoomNotFound
	}
	if err != nil {
		return model.Room{}, fmt.Errorf("load room %s: %w", roomID, err)
	}
	var room model.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		s.log.Warn(ctx, "malformed room payload; degrading to empty room",
			logger.String("room", roomID), logger.Error(err))
		return model.Room{ID: roomID}, nil
	}
	return room, nil
}

func (s *Service) save(ctx context.Context, room model.Room) error {
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.ID, err)
	}
	if err := s.store.Set(ctx, Key(room.ID), raw); err != nil {
		return fmt.Errorf("persist room %s: %w", room.ID, err)
	}
	return nil
}

func (s *Service) randomCode() string {
	low := 1
	for i := 1; i < s.codeDigits; i++ {
		low *= 10
	}
	return fmt.Sprintf("%d", low+rand.IntN(low*9))
}
