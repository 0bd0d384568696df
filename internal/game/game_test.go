package game

import (
	"strings"
	"testing"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
	"chess-rules/internal/notation"
)

func play(t *testing.T, g *Game, mode notation.Mode, moves ...string) Outcome {
	t.Helper()
	var out Outcome
	for _, m := range moves {
		out = g.Play(mode, m)
		if out.Status != StatusApplied {
			t.Fatalf("move %q: %v (%s)", m, out.Status, out.Message)
		}
	}
	return out
}

func TestNewFallsBackOnBadFEN(t *testing.T) {
	g := New("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq", nil, nil)
	if g.Notice() == "" {
		t.Fatalf("expected a notice")
	}
	if g.CurrentFEN() != board.StartingFEN {
		t.Fatalf("fallback FEN = %s", g.CurrentFEN())
	}
	if g.State() != core.StateOngoing || g.Phase() != PhaseAwaitingMove {
		t.Fatalf("state %v phase %v", g.State(), g.Phase())
	}
}

func TestNewRejectsOpponentInCheck(t *testing.T) {
	g := New("4k3/8/8/8/8/8/8/4R1K1 w - - 0 1", nil, nil)
	if !strings.Contains(g.Notice(), "in check") {
		t.Fatalf("notice = %q", g.Notice())
	}
	if g.CurrentFEN() != board.StartingFEN {
		t.Fatalf("fallback FEN = %s", g.CurrentFEN())
	}
}

func TestLegalMovesFromStart(t *testing.T) {
	g := New("", nil, nil)
	if n := len(g.LegalMoves()); n != 20 {
		t.Fatalf("legal moves = %d", n)
	}
	targets, ok := g.Preview(mustSquare("b1"))
	if !ok || targets != board.SetOf("a3", "c3") {
		t.Fatalf("b1 preview = %s", targets)
	}
}

func TestEnPassantRemovesVictim(t *testing.T) {
	g := New("", nil, nil)
	play(t, g, notation.ModeCoordinate, "e2e4", "a7a6", "e4e5", "d7d5")
	if !strings.Contains(g.CurrentFEN(), " d6 ") {
		t.Fatalf("en passant target missing: %s", g.CurrentFEN())
	}

	out := play(t, g, notation.ModeCoordinate, "e5d6")
	if !out.EnPassant || out.Captured != board.Pawn {
		t.Fatalf("outcome = %+v", out)
	}
	want := "rnbqkbnr/1pp1pppp/p2P4/8/8/8/PPPP1PPP/RNBQKBNR b KQkq - 0 3"
	if g.CurrentFEN() != want {
		t.Fatalf("FEN\n got %s\nwant %s", g.CurrentFEN(), want)
	}
	if !g.Board().Empty(mustSquare("d5")) {
		t.Fatalf("victim still on d5")
	}
}

func TestBlackCapturesEnPassant(t *testing.T) {
	g := New("", nil, nil)
	play(t, g, notation.ModeCoordinate, "a2a3", "d7d5", "a3a4", "d5d4", "e2e4")
	if !strings.Contains(g.CurrentFEN(), " e3 ") {
		t.Fatalf("en passant target missing: %s", g.CurrentFEN())
	}

	out := play(t, g, notation.ModeCoordinate, "d4e3")
	if !out.EnPassant || out.Captured != board.Pawn {
		t.Fatalf("outcome = %+v", out)
	}
	if !g.Board().Empty(mustSquare("e4")) || !g.Board().Empty(mustSquare("d4")) {
		t.Fatalf("e4 or d4 still occupied")
	}
	if fields := strings.Fields(g.CurrentFEN()); fields[3] != "-" {
		t.Fatalf("en passant field = %s", fields[3])
	}
	want := "rnbqkbnr/ppp1pppp/8/8/P7/4p3/1PPP1PPP/RNBQKBNR w KQkq - 0 4"
	if g.CurrentFEN() != want {
		t.Fatalf("FEN\n got %s\nwant %s", g.CurrentFEN(), want)
	}
}

func TestPromotion(t *testing.T) {
	g := New("8/P6k/8/8/8/8/8/K7 w - - 0 1", nil, nil)
	out := play(t, g, notation.ModeCoordinate, "a7a8")
	if out.Promoted != board.Queen || out.Move != "a7a8q" {
		t.Fatalf("default promotion = %v %s", out.Promoted, out.Move)
	}
	if !out.Check {
		t.Fatalf("queen on a8 should check h8")
	}
	if got := g.CurrentFEN(); got != "Q7/7k/8/8/8/8/8/K7 b - - 0 1" {
		t.Fatalf("FEN = %s", got)
	}

	g = New("8/P6k/8/8/8/8/8/K7 w - - 0 1", nil, nil)
	play(t, g, notation.ModeCoordinate, "a7a8n")
	if p := g.Board().At(mustSquare("a8")); p == nil || p.Kind != board.Knight || !p.HasMoved {
		t.Fatalf("underpromotion failed: %+v", p)
	}
	if err := g.Board().Check(); err != nil {
		t.Fatal(err)
	}
}

func TestCastlingMovesRook(t *testing.T) {
	g := New("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", nil, nil)
	out := play(t, g, notation.ModeAlgebraic, "O-O")
	if !out.Castled {
		t.Fatalf("castle not flagged")
	}
	if got := g.CurrentFEN(); got != "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 1 1" {
		t.Fatalf("FEN = %s", got)
	}
	play(t, g, notation.ModeCoordinate, "e8c8")
	if got := g.CurrentFEN(); got != "2kr3r/8/8/8/8/8/8/R4RK1 w - - 2 2" {
		t.Fatalf("FEN = %s", got)
	}
}

func TestRookCaptureRevokesRight(t *testing.T) {
	g := New("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", nil, nil)
	play(t, g, notation.ModeAlgebraic, "Rxa8+")
	if got := g.CurrentFEN(); got != "R3k2r/8/8/8/8/8/8/4K2R b Kk - 0 1" {
		t.Fatalf("FEN = %s", got)
	}
}

func TestFoolsMate(t *testing.T) {
	g := New("", nil, nil)
	out := play(t, g, notation.ModeAlgebraic, "f3", "e5", "g4", "Qh4#")
	if out.State != core.StateBlackWins || out.Reason != core.ReasonCheckmate {
		t.Fatalf("state %v reason %v", out.State, out.Reason)
	}
	if g.Phase() != PhaseEnded {
		t.Fatalf("phase = %v", g.Phase())
	}

	after := g.Play(notation.ModeCoordinate, "a2a3")
	if after.Status != StatusGameOver {
		t.Fatalf("move after mate = %v", after.Status)
	}
	if len(g.LegalMoves()) != 0 {
		t.Fatalf("finished game still offers moves")
	}

	summary := g.Summary("g1")
	if summary.Result != "black wins" || summary.Reason != "checkmate" || len(summary.Moves) != 4 || summary.EndTimeUTC.IsZero() {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestRejections(t *testing.T) {
	g := New("", nil, nil)
	tests := []struct {
		mode   notation.Mode
		text   string
		status Status
	}{
		{notation.ModeCoordinate, "zz", StatusInvalidNotation},
		{notation.ModeCoordinate, "e2e5", StatusIllegalMove},
		{notation.ModeCoordinate, "e7e5", StatusIllegalMove},
		{notation.ModeCoordinate, "e4e5", StatusIllegalMove},
		{notation.ModeAlgebraic, "Nf6", StatusIllegalMove},
		{notation.ModeAlgebraic, "O-O", StatusIllegalMove},
		{notation.ModeAlgebraic, "exd3", StatusIllegalMove},
		{notation.ModeCoordinate, "e2", StatusPreviewed},
		{notation.ModeCoordinate, "e4", StatusIllegalMove},
	}
	for _, tt := range tests {
		out := g.Play(tt.mode, tt.text)
		if out.Status != tt.status {
			t.Fatalf("%q: status %v, want %v (%s)", tt.text, out.Status, tt.status, out.Message)
		}
	}
	if g.CurrentFEN() != board.StartingFEN {
		t.Fatalf("rejections changed the position")
	}
}

func TestAmbiguousAlgebraic(t *testing.T) {
	g := New("4k3/8/8/8/8/8/8/1N2KN2 w - - 0 1", nil, nil)
	if out := g.Play(notation.ModeAlgebraic, "Nd2"); out.Status != StatusIllegalMove {
		t.Fatalf("ambiguous move accepted: %v", out.Status)
	}
	out := play(t, g, notation.ModeAlgebraic, "Nbd2")
	if out.From != mustSquare("b1") {
		t.Fatalf("moved from %s", out.From)
	}
}

func TestThreefoldByKnightShuffle(t *testing.T) {
	g := New("", nil, nil)
	cycle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}
	var moves []string
	for i := 0; i < 3; i++ {
		moves = append(moves, cycle...)
	}

	play(t, g, notation.ModeCoordinate, moves[:9]...)
	if g.IsOver() {
		t.Fatalf("ended early with %v", g.Reason())
	}
	out := play(t, g, notation.ModeCoordinate, moves[9])
	if out.State != core.StateDraw || out.Reason != core.ReasonThreefoldRepetition {
		t.Fatalf("state %v reason %v", out.State, out.Reason)
	}
}

func TestFiftyMoveDraw(t *testing.T) {
	g := New("4k3/8/8/8/8/8/8/R3K3 w - - 99 70", nil, nil)
	out := play(t, g, notation.ModeCoordinate, "a1a2")
	if out.Reason != core.ReasonFiftyMove || out.State != core.StateDraw {
		t.Fatalf("state %v reason %v", out.State, out.Reason)
	}
}

func TestUndoRestoresPosition(t *testing.T) {
	g := New("", nil, nil)
	play(t, g, notation.ModeCoordinate, "e2e4", "e7e5")
	afterFirst := g.snapshots[1].FEN

	if err := g.UndoMoves(1); err != nil {
		t.Fatal(err)
	}
	if g.CurrentFEN() != afterFirst || g.NextTurn() != core.ColorBlack {
		t.Fatalf("undo left %s", g.CurrentFEN())
	}
	if len(g.FENHistory()) != 2 || len(g.Moves()) != 1 {
		t.Fatalf("history %d moves %d", len(g.FENHistory()), len(g.Moves()))
	}
	if err := g.UndoMoves(2); err == nil {
		t.Fatalf("undo past the start succeeded")
	}

	// Undo reopens a finished game
	g = New("", nil, nil)
	play(t, g, notation.ModeAlgebraic, "f3", "e5", "g4", "Qh4#")
	if err := g.UndoMoves(1); err != nil {
		t.Fatal(err)
	}
	if g.IsOver() || g.Reason() != core.ReasonNone {
		t.Fatalf("game still over after undo")
	}
}

func mustSquare(coord string) board.Square {
	sq, ok := board.ParseSquare(coord)
	if !ok {
		panic("bad square " + coord)
	}
	return sq
}
