package board

import (
	"errors"
	"strings"
	"testing"

	"chess-rules/internal/core"
)

func TestSquareCoordinateBijection(t *testing.T) {
	for i := 0; i < 64; i++ {
		sq := Square(i)
		coord := sq.String()
		back, ok := ParseSquare(coord)
		if !ok || back != sq {
			t.Fatalf("square %d -> %q -> %d (ok=%v)", i, coord, back, ok)
		}
	}
	if SquareAt(0, 0).String() != "a1" || SquareAt(7, 7).String() != "h8" {
		t.Fatalf("corner squares misnamed")
	}
	for _, bad := range []string{"", "i1", "a9", "a0", "e44", "E4"} {
		if _, ok := ParseSquare(bad); ok {
			t.Fatalf("ParseSquare(%q) accepted", bad)
		}
	}
}

func TestStepDetectsWrap(t *testing.T) {
	tests := []struct {
		from string
		dir  Direction
		n    int
		want string
	}{
		{"h4", East, 1, "-"},
		{"a4", West, 1, "-"},
		{"h1", NorthEast, 1, "-"},
		{"a8", NorthWest, 1, "-"},
		{"e1", South, 1, "-"},
		{"a1", NorthEast, 7, "h8"},
		{"d4", NorthWest, 3, "a7"},
		{"b2", SouthEast, 1, "c1"},
	}
	for _, tt := range tests {
		from, _ := ParseSquare(tt.from)
		if got := from.Step(tt.dir, tt.n).String(); got != tt.want {
			t.Fatalf("%s step %s x%d = %s, want %s", tt.from, tt.dir, tt.n, got, tt.want)
		}
	}
}

func TestBetween(t *testing.T) {
	a1, _ := ParseSquare("a1")
	h8, _ := ParseSquare("h8")
	e1, _ := ParseSquare("e1")
	h1, _ := ParseSquare("h1")
	b3, _ := ParseSquare("b3")

	if got := Between(a1, h8); got.Len() != 6 || !got.Has(SquareAt(3, 3)) {
		t.Fatalf("a1-h8 between = %s", got)
	}
	if got := Between(e1, h1); got != SetOf("f1", "g1") {
		t.Fatalf("e1-h1 between = %s", got)
	}
	if got := Between(a1, b3); got != 0 {
		t.Fatalf("knight-shaped pair produced %s", got)
	}
}

func TestSquareSetOrdering(t *testing.T) {
	set := SetOf("h8", "a1", "e4")
	got := strings.Join(set.Strings(), ",")
	if got != "a1,e4,h8" {
		t.Fatalf("Strings() = %s", got)
	}
	if set.Without(SquareAt(4, 3)).Len() != 2 {
		t.Fatalf("Without did not remove e4")
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartingFEN,
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		"r3k2r/8/8/8/8/8/8/R3K2R b Kq - 12 40",
		"8/8/8/4k3/8/8/4K3/8 w - - 0 1",
		"rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		if got := pos.FEN(); got != fen {
			t.Fatalf("round trip:\n got %s\nwant %s", got, fen)
		}
		if err := pos.Board.Check(); err != nil {
			t.Fatalf("board invariant after parse: %v", err)
		}
	}
}

func TestParseFENRejects(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		field string
	}{
		{"five fields", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0", "fields"},
		{"seven ranks", "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "placement"},
		{"short rank", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "placement"},
		{"bad letter", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1", "placement"},
		{"two white kings", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBKKBNR w KQkq - 0 1", "placement"},
		{"no black king", "rnbqqbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQ - 0 1", "placement"},
		{"nine pawns", "rnbqkbnr/pppppppp/8/8/8/P7/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "placement"},
		{"pawn on back rank", "rnbqkbnP/pppppppp/8/8/8/8/PPPPPPP1/RNBQKBNR w KQkq - 0 1", "placement"},
		{"bad turn", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", "turn"},
		{"unordered castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w QK - 0 1", "castling"},
		{"ep wrong rank", "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e3 0 2", "en passant"},
		{"ep without pawn", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e6 0 1", "en passant"},
		{"negative halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1", "halfmove"},
		{"word fullmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 one", "fullmove"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFEN(tt.fen)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			var ferr *FENError
			if !errors.As(err, &ferr) {
				t.Fatalf("error %v is not a FENError", err)
			}
			if ferr.Field != tt.field {
				t.Fatalf("field = %q, want %q (%v)", ferr.Field, tt.field, err)
			}
		})
	}
}

func TestLoadFENFallsBack(t *testing.T) {
	pos, notice := LoadFEN("not a fen")
	if notice == nil {
		t.Fatalf("expected a notice")
	}
	if pos.FEN() != StartingFEN {
		t.Fatalf("fallback position = %s", pos.FEN())
	}

	pos, notice = LoadFEN(StartingFEN)
	if notice != nil || pos.FEN() != StartingFEN {
		t.Fatalf("valid FEN produced notice %v", notice)
	}
}

func TestInferMoved(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p7/8/8/8/P7/8/R3K2R w Kq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]bool{
		"a1": true,  // no Q right
		"h1": false, // K right
		"e1": false,
		"a8": false,
		"h8": true,
		"a7": false,
		"a3": true,
	}
	for coord, want := range cases {
		sq, _ := ParseSquare(coord)
		if got := pos.Board.At(sq).HasMoved; got != want {
			t.Fatalf("%s HasMoved = %v, want %v", coord, got, want)
		}
	}
}

func TestRelocateCapturesAndRestore(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	snap := pos.Clone()
	e4, _ := ParseSquare("e4")
	d5, _ := ParseSquare("d5")
	pawn := pos.Board.IDAt(e4)
	victim := pos.Board.IDAt(d5)

	if got := pos.Board.Relocate(pawn, d5); got != victim {
		t.Fatalf("Relocate captured %d, want %d", got, victim)
	}
	if pos.Board.Piece(victim).Alive() {
		t.Fatalf("captured pawn still alive")
	}
	if !pos.Board.Empty(e4) {
		t.Fatalf("origin not vacated")
	}

	pos.Restore(snap)
	if pos.FEN() != snap.FEN() || !pos.Board.SamePlacement(snap.Board) {
		t.Fatalf("restore mismatch: %s", pos.FEN())
	}
	if err := pos.Board.Check(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveRewind(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 1")
	if err != nil {
		t.Fatal(err)
	}
	before := pos.FEN()
	arena := make([]Square, 0, 8)
	for _, p := range pos.Board.Pieces(Filter{}) {
		arena = append(arena, p.Square)
	}
	sqs := func(coords ...string) []Square {
		out := make([]Square, len(coords))
		for i, c := range coords {
			out[i], _ = ParseSquare(c)
		}
		return out
	}

	moves := []struct {
		saved []Square
		apply func(b *Board, s []Square)
	}{
		// en passant: pawn e5 takes on d6, victim leaves d5
		{sqs("e5", "d6", "d5"), func(b *Board, s []Square) {
			b.Remove(b.IDAt(s[2]))
			b.Relocate(b.IDAt(s[0]), s[1])
		}},
		// castling: king e1-g1, rook h1-f1
		{sqs("e1", "g1", "h1", "f1"), func(b *Board, s []Square) {
			b.Relocate(b.IDAt(s[2]), s[3])
			b.Relocate(b.IDAt(s[0]), s[1])
		}},
		// capture: rook a1 takes a8
		{sqs("a1", "a8"), func(b *Board, s []Square) {
			b.Relocate(b.IDAt(s[0]), s[1])
		}},
	}
	for i, m := range moves {
		sp := pos.Board.Save(append(m.saved, NoSquare)...)
		m.apply(pos.Board, m.saved)
		pos.Board.Rewind(sp)

		if pos.FEN() != before {
			t.Fatalf("move %d: FEN after rewind %s", i, pos.FEN())
		}
		for j, p := range pos.Board.Pieces(Filter{}) {
			if p.Square != arena[j] {
				t.Fatalf("move %d: piece %d on %s, want %s", i, p.ID, p.Square, arena[j])
			}
		}
		if err := pos.Board.Check(); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}
}

func TestPiecesFilter(t *testing.T) {
	pos, _ := LoadFEN(StartingFEN)
	if n := len(pos.Board.Pieces(Filter{Color: core.ColorWhite})); n != 16 {
		t.Fatalf("white pieces = %d", n)
	}
	if n := len(pos.Board.Pieces(Filter{Kind: Pawn})); n != 16 {
		t.Fatalf("pawns = %d", n)
	}
	if k := pos.Board.King(core.ColorBlack); k == nil || k.Square.String() != "e8" {
		t.Fatalf("black king not found on e8")
	}
}

func TestToASCIIHighlights(t *testing.T) {
	pos, _ := LoadFEN(StartingFEN)
	out := pos.Board.ToASCII(SetOf("a3", "b1"))
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[6] != "3 * . . . . . . .  3" {
		t.Fatalf("rank 3 = %q", lines[6])
	}
	if !strings.HasPrefix(lines[8], "1 R N*B") {
		t.Fatalf("rank 1 = %q", lines[8])
	}
}
