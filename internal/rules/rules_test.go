package rules

import (
	"sort"
	"strings"
	"testing"

	"chess-rules/internal/board"
	"chess-rules/internal/core"

	"github.com/notnil/chess"
)

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func sq(t *testing.T, coord string) board.Square {
	t.Helper()
	s, ok := board.ParseSquare(coord)
	if !ok {
		t.Fatalf("bad square %q", coord)
	}
	return s
}

func TestKnightFromStart(t *testing.T) {
	pos := mustParse(t, board.StartingFEN)
	a := Analyze(pos)
	knight := pos.Board.At(sq(t, "b1"))
	if got := a.LegalFor(knight.ID); got != board.SetOf("a3", "c3") {
		t.Fatalf("b1 knight legal = %s", got)
	}
	if len(a.Moves(pos, core.ColorWhite)) != 20 {
		t.Fatalf("white has %d moves from start", len(a.Moves(pos, core.ColorWhite)))
	}
}

func TestCastRays(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/3R4/8/3P4/4K3 w - - 0 1")
	r := Cast(pos, pos.Board.IDAt(sq(t, "d4")))
	if got := r.Lines[board.South]; len(got) != 2 || got[0] != sq(t, "d3") || got[1] != sq(t, "d2") {
		t.Fatalf("south ray = %v", got)
	}
	if r.Moves.Has(sq(t, "d2")) {
		t.Fatalf("friendly pawn square counted as a move")
	}
	if !r.Defends.Has(sq(t, "d2")) {
		t.Fatalf("d2 pawn not defended")
	}
	if r.Moves.Len() != 12 {
		t.Fatalf("rook moves = %s", r.Moves)
	}
}

func TestPawnThreatsIgnoreOccupancy(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	r := Cast(pos, pos.Board.IDAt(sq(t, "e2")))
	if r.Threats != board.SetOf("d3", "f3") {
		t.Fatalf("pawn threats = %s", r.Threats)
	}
	if r.Moves != board.SetOf("e3", "e4") {
		t.Fatalf("pawn moves = %s", r.Moves)
	}
}

func TestCheckmateDetected(t *testing.T) {
	pos := mustParse(t, "rnbqkbnr/ppppp2p/5p2/6pQ/8/4P3/PPPP1PPP/RNB1KBNR b KQkq - 1 1")
	a := Analyze(pos)
	if !a.Check() || !a.Checkmate() {
		t.Fatalf("expected checkmate, check=%v usable=%d", a.Check(), len(a.Usable[core.ColorBlack.Index()]))
	}
	if got := Evaluate(pos, a, nil); got != core.ReasonCheckmate {
		t.Fatalf("Evaluate = %v", got)
	}
}

func TestStalemateDetected(t *testing.T) {
	pos := mustParse(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	a := Analyze(pos)
	if a.Check() {
		t.Fatalf("black should not be in check")
	}
	if got := Evaluate(pos, a, nil); got != core.ReasonStalemate {
		t.Fatalf("Evaluate = %v", got)
	}
}

func TestCheckRestrictsToBlocksAndCaptures(t *testing.T) {
	// Rook on e8 checks the king on e1 down the open file
	pos := mustParse(t, "4r2k/8/8/8/8/8/8/2B1K1N1 w - - 0 1")
	a := Analyze(pos)
	if !a.Check() {
		t.Fatalf("white should be in check")
	}
	if got := a.LegalFor(pos.Board.IDAt(sq(t, "c1"))); got != board.SetOf("e3") {
		t.Fatalf("bishop legal = %s", got)
	}
	if got := a.LegalFor(pos.Board.IDAt(sq(t, "g1"))); got != board.SetOf("e2") {
		t.Fatalf("knight legal = %s", got)
	}
}

func TestDoubleCheckKingOnly(t *testing.T) {
	pos := mustParse(t, "4r2k/8/8/8/8/5n2/3Q4/4K3 w - - 0 1")
	a := Analyze(pos)
	if len(a.Checkers[core.ColorWhite.Index()]) != 2 {
		t.Fatalf("checkers = %v", a.Checkers[core.ColorWhite.Index()])
	}
	if got := a.LegalFor(pos.Board.IDAt(sq(t, "d2"))); !got.Empty() {
		t.Fatalf("queen may not move in double check, got %s", got)
	}
}

func TestPinnedPieceLimited(t *testing.T) {
	pos := mustParse(t, "4r2k/8/8/8/8/8/4R3/4K3 w - - 0 1")
	a := Analyze(pos)
	got := a.LegalFor(pos.Board.IDAt(sq(t, "e2")))
	want := board.SetOf("e3", "e4", "e5", "e6", "e7", "e8")
	if got != want {
		t.Fatalf("pinned rook legal = %s, want %s", got, want)
	}
}

func TestCastlingThroughCheckRefused(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/5r2/8/R3K2R w KQ - 0 1")
	a := Analyze(pos)
	king := pos.Board.At(sq(t, "e1"))
	legal := a.LegalFor(king.ID)
	if legal.Has(sq(t, "g1")) {
		t.Fatalf("castled through attacked f1")
	}
	if !legal.Has(sq(t, "c1")) {
		t.Fatalf("queenside castling missing: %s", legal)
	}
}

func TestCastlingOutOfCheckRefused(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/4r3/R3K2R w KQ - 0 1")
	a := Analyze(pos)
	legal := a.LegalFor(pos.Board.At(sq(t, "e1")).ID)
	if legal.Has(sq(t, "g1")) || legal.Has(sq(t, "c1")) {
		t.Fatalf("castled out of check: %s", legal)
	}
}

func TestEnPassantExposureRejected(t *testing.T) {
	// Capturing d6 en passant would clear the fifth rank between the rook and the king
	pos := mustParse(t, "7k/8/8/K2pP2r/8/8/8/8 w - d6 0 1")
	a := Analyze(pos)
	if a.LegalFor(pos.Board.IDAt(sq(t, "e5"))).Has(sq(t, "d6")) {
		t.Fatalf("en passant exposing the king was allowed")
	}
}

func TestEnPassantCapturesCheckingPawn(t *testing.T) {
	pos := mustParse(t, "8/8/8/2k5/3Pp3/8/8/4K3 b - d3 0 1")
	a := Analyze(pos)
	if !a.Check() {
		t.Fatalf("black king should be in check from d4")
	}
	if !a.LegalFor(pos.Board.IDAt(sq(t, "e4"))).Has(sq(t, "d3")) {
		t.Fatalf("en passant capture of the checking pawn missing")
	}
}

func TestSimulateRestoresBoard(t *testing.T) {
	pos := mustParse(t, "r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 1")
	before := pos.FEN()
	placement := pos.Board.Clone()

	Simulate(pos, pos.Board.IDAt(sq(t, "e5")), sq(t, "d6"))
	Simulate(pos, pos.Board.IDAt(sq(t, "e1")), sq(t, "g1"))
	Simulate(pos, pos.Board.IDAt(sq(t, "a1")), sq(t, "a8"))

	if pos.FEN() != before || !pos.Board.SamePlacement(placement) {
		t.Fatalf("board changed by simulation: %s", pos.FEN())
	}
	if err := pos.Board.Check(); err != nil {
		t.Fatal(err)
	}
	for _, p := range placement.Pieces(board.Filter{}) {
		if got := pos.Board.Piece(p.ID); got.Square != p.Square {
			t.Fatalf("piece %d on %s after simulation, want %s", p.ID, got.Square, p.Square)
		}
	}
	if victim := pos.Board.Piece(placement.IDAt(sq(t, "d5"))); !victim.Alive() {
		t.Fatalf("en passant victim not restored")
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{"8/8/8/4k3/8/8/4K3/8 w - - 0 1", true},
		{"8/8/8/4k3/8/8/4KN2/8 w - - 0 1", true},
		{"8/8/8/4k3/8/8/4KB2/8 w - - 0 1", true},
		{"8/8/8/4k3/8/8/4KB2/4B3 w - - 0 1", true},  // f2 and e1 are both dark
		{"8/8/8/4k3/8/8/4KBB1/8 w - - 0 1", false},  // f2 dark, g2 light
		{"8/8/8/2b1k3/8/8/4KB2/8 w - - 0 1", false}, // same colour but opposite sides
		{"8/8/8/4k3/8/8/3NKN2/8 w - - 0 1", true},   // two knights
		{"8/8/8/3nk3/8/8/4KN2/8 w - - 0 1", true},   // knight each
		{"8/8/8/4k3/8/8/4KP2/8 w - - 0 1", false},
		{"8/8/8/4k3/8/8/4KR2/8 w - - 0 1", false},
		{"8/8/8/3nk3/8/8/3NKB2/8 w - - 0 1", false},
	}
	for _, tt := range tests {
		pos := mustParse(t, tt.fen)
		if got := InsufficientMaterial(pos.Board); got != tt.want {
			t.Errorf("InsufficientMaterial(%s) = %v, want %v", tt.fen, got, tt.want)
		}
	}
}

func TestFiftyMove(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/8/8/4P3/R3K3 w - - 100 80")
	a := Analyze(pos)
	if got := Evaluate(pos, a, nil); got != core.ReasonFiftyMove {
		t.Fatalf("Evaluate = %v", got)
	}
	pos.HalfMove = 99
	if FiftyMove(pos) {
		t.Fatalf("99 half-moves ended the game")
	}
}

func TestThreefoldRepetition(t *testing.T) {
	shuffle := []string{
		"4k3/8/8/8/8/8/8/R3K3 w - - 0 1",
		"4k3/8/8/8/8/8/8/R4K2 b - - 1 1",
		"3k4/8/8/8/8/8/8/R4K2 w - - 2 2",
		"3k4/8/8/8/8/8/8/R3K3 b - - 3 2",
	}
	var history []string
	for i := 0; i < 3; i++ {
		history = append(history, shuffle...)
	}
	if !ThreefoldRepetition(history) {
		t.Fatalf("repetition not detected in %d entries", len(history))
	}
	if ThreefoldRepetition(history[:10]) {
		t.Fatalf("history of 10 entries must not be checked")
	}

	recounted := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		recounted = append(recounted, strings.Replace(shuffle[0], "- - 0 1", "- - 0 "+string(rune('1'+i%9)), 1))
	}
	if !ThreefoldRepetition(recounted) {
		t.Fatalf("counters must not affect repetition")
	}
}

// The legal move sets must match an independent implementation
func TestLegalMovesMatchReference(t *testing.T) {
	fens := []string{
		board.StartingFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"4k3/8/8/8/8/8/8/4K2R w K - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			pos := mustParse(t, fen)
			a := Analyze(pos)
			var got []string
			for _, m := range a.Moves(pos, pos.Turn) {
				got = append(got, m.String())
			}
			sort.Strings(got)

			opt, err := chess.FEN(fen)
			if err != nil {
				t.Fatalf("reference rejected FEN: %v", err)
			}
			ref := chess.NewGame(opt)
			seen := map[string]bool{}
			var want []string
			for _, m := range ref.ValidMoves() {
				key := m.S1().String() + m.S2().String()
				if !seen[key] {
					seen[key] = true
					want = append(want, key)
				}
			}
			sort.Strings(want)

			if strings.Join(got, " ") != strings.Join(want, " ") {
				t.Fatalf("move mismatch\n got %v\nwant %v", got, want)
			}
		})
	}
}
