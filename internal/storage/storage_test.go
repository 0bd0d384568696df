package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path, true, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestMoveLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	s := openStore(t, path)

	now := time.Now().UTC().Truncate(time.Second)
	s.RecordNewGame(GameRecord{
		GameID:        "g1",
		InitialFEN:    "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		WhitePlayerID: "w1",
		WhiteType:     1,
		BlackPlayerID: "b1",
		BlackType:     2,
		BlackSeed:     42,
		StartTimeUTC:  now,
	})
	for i, mv := range []string{"e2e4", "e7e5", "g1f3"} {
		color := "w"
		if i%2 == 1 {
			color = "b"
		}
		s.RecordMove(MoveRecord{
			GameID:       "g1",
			MoveNumber:   i + 1,
			MoveText:     mv,
			FENAfterMove: "fen-" + mv,
			PlayerColor:  color,
			MoveTimeUTC:  now,
		})
	}
	s.DeleteUndoneMoves("g1", 2)
	s.RecordGameEnd(GameEnd{GameID: "g1", Result: "draw", Reason: "stalemate", FinalFEN: "fen-e7e5", EndTimeUTC: now})
	flush(t, s)

	if !s.IsHealthy() {
		t.Fatalf("store degraded")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s = openStore(t, path)
	defer s.Close()

	games, err := s.QueryGames("*", "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 {
		t.Fatalf("games = %d", len(games))
	}
	g := games[0]
	if g.BlackSeed != 42 || g.Result != "draw" || g.Reason.String != "stalemate" || !g.EndTimeUTC.Valid {
		t.Fatalf("game record = %+v", g)
	}

	moves, err := s.QueryMoves("g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 2 || moves[0].MoveText != "e2e4" || moves[1].PlayerColor != "b" {
		t.Fatalf("moves = %+v", moves)
	}
}

func TestUndoReopensGame(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "chess.db"))
	defer s.Close()

	s.RecordNewGame(GameRecord{GameID: "g2", InitialFEN: "x", WhitePlayerID: "w", WhiteType: 1, BlackPlayerID: "b", BlackType: 1, StartTimeUTC: time.Now().UTC()})
	s.RecordGameEnd(GameEnd{GameID: "g2", Result: "white wins", Reason: "checkmate", FinalFEN: "y", EndTimeUTC: time.Now().UTC()})
	s.DeleteUndoneMoves("g2", 0)
	flush(t, s)

	games, err := s.QueryGames("g2", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 || games[0].Result != "ongoing" || games[0].Reason.Valid {
		t.Fatalf("game after undo = %+v", games)
	}
}

func TestDeleteGameCascades(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "chess.db"))
	defer s.Close()

	s.RecordNewGame(GameRecord{GameID: "g3", InitialFEN: "x", WhitePlayerID: "w", WhiteType: 1, BlackPlayerID: "b", BlackType: 1, StartTimeUTC: time.Now().UTC()})
	s.RecordMove(MoveRecord{GameID: "g3", MoveNumber: 1, MoveText: "e2e4", FENAfterMove: "x", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()})
	s.DeleteGame("g3")
	flush(t, s)

	moves, err := s.QueryMoves("g3")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 0 {
		t.Fatalf("moves survived delete: %d", len(moves))
	}
}

func TestFailedWriteDegrades(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "chess.db"))
	defer s.Close()

	// move for a game that does not exist violates the foreign key
	s.RecordMove(MoveRecord{GameID: "missing", MoveNumber: 1, MoveText: "e2e4", FENAfterMove: "x", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()})

	deadline := time.Now().Add(5 * time.Second)
	for s.IsHealthy() {
		if time.Now().After(deadline) {
			t.Fatalf("store still healthy after failed write")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := s.Flush(context.Background()); err == nil {
		t.Fatalf("flush on degraded store succeeded")
	}
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	s := openStore(t, path)
	if err := s.DeleteDB(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
