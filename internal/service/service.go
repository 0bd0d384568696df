package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"chess-rules/internal/archive"
	"chess-rules/internal/core"
	"chess-rules/internal/game"
	"chess-rules/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameExists       = errors.New("game already exists")
	ErrNotPlayersTurn   = errors.New("not this player's turn")
	ErrMoveInProgress   = errors.New("computer move in progress")
	ErrGameStuck        = errors.New("game is stuck after a failed computer move")
	ErrGameOver         = errors.New("game is over")
	ErrArchiveDisabled  = errors.New("archive is disabled")
	ErrNotComputerReady = errors.New("game is not waiting for a computer move")
)

// Service owns every live game. All mutations happen under the write lock,
// so at most one move per service is in flight.
type Service struct {
	games   map[string]*game.Game
	mu      sync.RWMutex
	store   *storage.Store   // nil if persistence disabled
	archive *archive.Archive // nil if archiving disabled
	waiter  *WaitRegistry
	log     zerolog.Logger

	computerGames int
}

// New creates a service with optional move log and archive
func New(store *storage.Store, arch *archive.Archive, log zerolog.Logger) *Service {
	return &Service{
		games:   make(map[string]*game.Game),
		store:   store,
		archive: arch,
		waiter:  NewWaitRegistry(),
		log:     log.With().Str("component", "service").Logger(),
	}
}

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// View runs fn against a game under the read lock
func (s *Service) View(gameID string, fn func(*game.Game) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return fn(g)
}

// ComputerGames counts games created with at least one computer player
func (s *Service) ComputerGames() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.computerGames
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Archived returns the stored summary of a finished game
func (s *Service) Archived(gameID string) (core.SessionSummary, error) {
	if s.archive == nil {
		return core.SessionSummary{}, ErrArchiveDisabled
	}
	return s.archive.Load(gameID)
}

// Close wakes long-poll clients, forgets all games and closes persistence
func (s *Service) Close() error {
	var errs []error
	if err := s.waiter.Shutdown(5 * time.Second); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]*game.Game)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close archive: %w", err))
		}
	}
	return errors.Join(errs...)
}
