package service

import (
	"context"
	"fmt"
	"time"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
	"chess-rules/internal/game"
	"chess-rules/internal/notation"
	"chess-rules/internal/storage"
)

// CreateGame registers a new game. The returned notice is non-empty when fen
// was rejected and the game started from the standard position.
func (s *Service) CreateGame(id string, whitePlayer, blackPlayer *core.Player, fen string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[id]; exists {
		return "", fmt.Errorf("%w: %s", ErrGameExists, id)
	}

	g := game.New(fen, whitePlayer, blackPlayer)
	s.games[id] = g

	if whitePlayer.Type == core.PlayerComputer || blackPlayer.Type == core.PlayerComputer {
		s.computerGames++
	}

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:        id,
			InitialFEN:    g.InitialFEN(),
			WhitePlayerID: whitePlayer.ID,
			WhiteType:     int(whitePlayer.Type),
			WhiteSeed:     whitePlayer.Seed,
			BlackPlayerID: blackPlayer.ID,
			BlackType:     int(blackPlayer.Type),
			BlackSeed:     blackPlayer.Seed,
			StartTimeUTC:  time.Now().UTC(),
		})
	}

	// A loaded position can already be terminal
	if g.IsOver() {
		s.recordEnd(id, g)
	}

	ev := s.log.Info().Str("game", id).Str("fen", g.InitialFEN())
	if notice := g.Notice(); notice != "" {
		ev = ev.Str("notice", notice)
	}
	ev.Msg("game created")

	return g.Notice(), nil
}

// UpdatePlayers replaces players in an existing game
func (s *Service) UpdatePlayers(gameID string, whitePlayer, blackPlayer *core.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if g.State() == core.StatePending {
		return ErrMoveInProgress
	}

	g.SetPlayer(core.ColorWhite, whitePlayer)
	g.SetPlayer(core.ColorBlack, blackPlayer)

	if s.store != nil {
		s.store.UpdatePlayers(storage.GameRecord{
			GameID:        gameID,
			WhitePlayerID: whitePlayer.ID,
			WhiteType:     int(whitePlayer.Type),
			WhiteSeed:     whitePlayer.Seed,
			BlackPlayerID: blackPlayer.ID,
			BlackType:     int(blackPlayer.Type),
			BlackSeed:     blackPlayer.Seed,
		})
	}
	return nil
}

// ApplyMove plays text for the side to move on behalf of a player of type
// by. Rejected notation and illegal moves come back as outcomes, not errors.
func (s *Service) ApplyMove(gameID string, by core.PlayerType, mode notation.Mode, text string) (game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return game.Outcome{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	in := notation.Parse(mode, text, g.NextTurn())
	if in.Type == notation.IntentPreview {
		return g.Apply(in), nil
	}

	switch g.State() {
	case core.StateStuck:
		return game.Outcome{}, ErrGameStuck
	case core.StatePending:
		if by != core.PlayerComputer {
			return game.Outcome{}, ErrMoveInProgress
		}
	default:
		if by == core.PlayerComputer && !g.IsOver() {
			return game.Outcome{}, ErrNotComputerReady
		}
	}

	if !g.IsOver() && playerType(g.NextPlayer()) != by {
		return game.Outcome{}, fmt.Errorf("%w: %s to move", ErrNotPlayersTurn, g.NextTurn().Name())
	}

	if by == core.PlayerComputer {
		g.SetState(core.StateOngoing)
	}

	out := g.Apply(in)
	if out.Status != game.StatusApplied {
		if by == core.PlayerComputer && out.Status != game.StatusGameOver {
			// the engine chose from the legal list, so a rejection here is a bug
			g.SetState(core.StateStuck)
			s.log.Error().Str("game", gameID).Str("move", text).Str("reason", out.Message).Msg("computer move rejected")
			s.waiter.WakeGame(gameID)
		}
		return out, nil
	}

	moveCount := len(g.Moves())
	if s.store != nil {
		record := storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   moveCount,
			MoveText:     out.Move,
			FENAfterMove: g.CurrentFEN(),
			PlayerColor:  out.Mover.String(),
			MoveTimeUTC:  time.Now().UTC(),
		}
		if out.Captured != board.NoKind {
			record.Captured = out.Captured.String()
		}
		s.store.RecordMove(record)
	}

	s.log.Debug().Str("game", gameID).Str("move", out.Move).Str("by", by.String()).Msg("move applied")

	if g.IsOver() {
		s.recordEnd(gameID, g)
	}

	s.waiter.NotifyGame(gameID, moveCount)
	return out, nil
}

// recordEnd persists and archives a finished game; the caller holds the lock
func (s *Service) recordEnd(gameID string, g *game.Game) {
	summary := g.Summary(gameID)

	s.log.Info().Str("game", gameID).Str("result", summary.Result).Str("reason", summary.Reason).Msg("game over")

	if s.store != nil {
		s.store.RecordGameEnd(storage.GameEnd{
			GameID:     gameID,
			Result:     summary.Result,
			Reason:     summary.Reason,
			FinalFEN:   summary.FinalFEN,
			EndTimeUTC: summary.EndTimeUTC,
		})
	}
	if s.archive != nil {
		if err := s.archive.Save(summary); err != nil {
			s.log.Error().Err(err).Str("game", gameID).Msg("archive failed")
		}
	}
}

func playerType(p *core.Player) core.PlayerType {
	if p == nil {
		return core.PlayerHuman
	}
	return p.Type
}

// UpdateGameState marks transient states such as pending and stuck
func (s *Service) UpdateGameState(gameID string, state core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	g.SetState(state)
	s.waiter.WakeGame(gameID)
	return nil
}

// BeginComputerMove moves an ongoing game with a computer to move into the
// pending state and returns the FEN and player the engine should work from
func (s *Service) BeginComputerMove(gameID string) (string, *core.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	switch g.State() {
	case core.StatePending:
		return "", nil, ErrMoveInProgress
	case core.StateStuck:
		return "", nil, ErrGameStuck
	}
	if g.IsOver() {
		return "", nil, fmt.Errorf("%w: %s", ErrGameOver, g.State())
	}
	if playerType(g.NextPlayer()) != core.PlayerComputer {
		return "", nil, fmt.Errorf("%w: %s is not a computer", ErrNotPlayersTurn, g.NextTurn().Name())
	}

	g.SetState(core.StatePending)
	s.waiter.WakeGame(gameID)
	return g.CurrentFEN(), g.NextPlayer(), nil
}

// SetLastMoveResult stores metadata about the last computer move
func (s *Service) SetLastMoveResult(gameID string, result *game.MoveResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}

	g.SetLastResult(result)
	return nil
}

// UndoMoves rewinds count half-moves and reopens a finished game
func (s *Service) UndoMoves(gameID string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if g.State() == core.StatePending {
		return ErrMoveInProgress
	}

	wasOver := g.IsOver()
	originalMoveCount := len(g.Moves())

	if err := g.UndoMoves(count); err != nil {
		return err
	}

	s.waiter.NotifyGame(gameID, len(g.Moves()))

	if s.store != nil {
		s.store.DeleteUndoneMoves(gameID, originalMoveCount-count)
	}
	if wasOver && s.archive != nil {
		if err := s.archive.Delete(gameID); err != nil {
			s.log.Warn().Err(err).Str("game", gameID).Msg("failed to drop archived session")
		}
	}

	return nil
}

// DeleteGame removes a game from memory; its move log stays in storage
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[gameID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if g.State() == core.StatePending {
		return ErrMoveInProgress
	}

	s.waiter.RemoveGame(gameID)
	delete(s.games, gameID)
	return nil
}

// WaitForChange returns a channel that closes once the game no longer has
// moveCount moves, changes state, or the wait times out. A game that has
// already moved on returns a closed channel.
func (s *Service) WaitForChange(ctx context.Context, gameID string, moveCount int) (<-chan struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	if len(g.Moves()) != moveCount {
		ch := make(chan struct{})
		close(ch)
		return ch, nil
	}
	return s.waiter.RegisterWait(ctx, gameID, moveCount), nil
}
