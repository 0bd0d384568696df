package notation

import (
	"testing"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
)

func square(coord string) board.Square {
	sq, _ := board.ParseSquare(coord)
	return sq
}

func TestParseAlgebraic(t *testing.T) {
	tests := []struct {
		text      string
		side      core.Color
		kind      IntentType
		piece     board.Kind
		to        string
		fromFile  int
		fromRank  int
		capture   bool
		promotion board.Kind
	}{
		{"e4", core.ColorWhite, IntentMove, board.Pawn, "e4", -1, -1, false, board.NoKind},
		{"Nf3", core.ColorWhite, IntentMove, board.Knight, "f3", -1, -1, false, board.NoKind},
		{"exd5", core.ColorWhite, IntentCapture, board.Pawn, "d5", 4, -1, true, board.NoKind},
		{"Bxc6+", core.ColorWhite, IntentCapture, board.Bishop, "c6", -1, -1, true, board.NoKind},
		{"Nbd2", core.ColorWhite, IntentDisambiguatedMove, board.Knight, "d2", 1, -1, false, board.NoKind},
		{"R1e2", core.ColorWhite, IntentDisambiguatedMove, board.Rook, "e2", -1, 0, false, board.NoKind},
		{"Qh4xe1#", core.ColorBlack, IntentDisambiguatedMove, board.Queen, "e1", 7, 3, true, board.NoKind},
		{"e8=Q", core.ColorWhite, IntentPromote, board.Pawn, "e8", -1, -1, false, board.Queen},
		{"dxc1N", core.ColorBlack, IntentPromote, board.Pawn, "c1", 3, -1, true, board.Knight},
		{"a8", core.ColorWhite, IntentPromote, board.Pawn, "a8", -1, -1, false, board.NoKind},
		{"Kd2!?", core.ColorWhite, IntentMove, board.King, "d2", -1, -1, false, board.NoKind},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := ParseAlgebraic(tt.text, tt.side)
			if in.Type != tt.kind {
				t.Fatalf("type = %v, want %v (%s)", in.Type, tt.kind, in.Reason)
			}
			if in.Piece != tt.piece || in.To != square(tt.to) {
				t.Fatalf("piece/to = %v/%s", in.Piece, in.To)
			}
			if in.FromFile != tt.fromFile || in.FromRank != tt.fromRank {
				t.Fatalf("disambiguation = %d/%d", in.FromFile, in.FromRank)
			}
			if in.Capture != tt.capture || in.Promotion != tt.promotion {
				t.Fatalf("capture/promotion = %v/%v", in.Capture, in.Promotion)
			}
		})
	}
}

func TestParseAlgebraicCastle(t *testing.T) {
	tests := []struct {
		text     string
		side     core.Color
		from, to string
		kingside bool
	}{
		{"O-O", core.ColorWhite, "e1", "g1", true},
		{"O-O-O", core.ColorWhite, "e1", "c1", false},
		{"0-0+", core.ColorBlack, "e8", "g8", true},
		{"0-0-0", core.ColorBlack, "e8", "c8", false},
	}
	for _, tt := range tests {
		in := ParseAlgebraic(tt.text, tt.side)
		if in.Type != IntentCastle {
			t.Fatalf("%s: type = %v", tt.text, in.Type)
		}
		if in.From != square(tt.from) || in.To != square(tt.to) || in.Kingside != tt.kingside {
			t.Fatalf("%s: %s-%s kingside=%v", tt.text, in.From, in.To, in.Kingside)
		}
	}
}

func TestParseAlgebraicInvalid(t *testing.T) {
	for _, text := range []string{"", "ed5", "e9", "Nf", "Ke8=Q", "e5=Q", "xe4", "Pe4", "e2e4", "hello"} {
		if in := ParseAlgebraic(text, core.ColorWhite); in.Type != IntentInvalid {
			t.Fatalf("%q parsed as %v", text, in.Type)
		}
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		text      string
		kind      IntentType
		from, to  string
		promotion board.Kind
	}{
		{"e2", IntentPreview, "e2", "-", board.NoKind},
		{"e2e4", IntentDirectMove, "e2", "e4", board.NoKind},
		{"E2-E4", IntentDirectMove, "e2", "e4", board.NoKind},
		{"e2 e4", IntentDirectMove, "e2", "e4", board.NoKind},
		{"d4xe5", IntentDirectMove, "d4", "e5", board.NoKind},
		{"a7a8q", IntentDirectPromote, "a7", "a8", board.Queen},
		{"b7:b8 b", IntentDirectPromote, "b7", "b8", board.Bishop},
		{"g2g1n", IntentDirectPromote, "g2", "g1", board.Knight},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := ParseCoordinate(tt.text, core.ColorWhite)
			if in.Type != tt.kind {
				t.Fatalf("type = %v, want %v (%s)", in.Type, tt.kind, in.Reason)
			}
			if in.From.String() != tt.from || in.To.String() != tt.to || in.Promotion != tt.promotion {
				t.Fatalf("got %s %s %v", in.From, in.To, in.Promotion)
			}
		})
	}
}

func TestParseCoordinateInvalid(t *testing.T) {
	for _, text := range []string{"", "  ", "e9", "e2e4e5", "q", "e2q", "e7e8qq", "e7e8k", "Nf3"} {
		if in := ParseCoordinate(text, core.ColorWhite); in.Type != IntentInvalid {
			t.Fatalf("%q parsed as %v", text, in.Type)
		}
	}
}

func TestParseDispatch(t *testing.T) {
	if in := Parse(ModeAlgebraic, "Nf3", core.ColorWhite); in.Type != IntentMove {
		t.Fatalf("algebraic mode: %v", in.Type)
	}
	if in := Parse(ModeCoordinate, "g1f3", core.ColorWhite); in.Type != IntentDirectMove {
		t.Fatalf("coordinate mode: %v", in.Type)
	}
	mode, err := ParseMode("Algebraic")
	if err != nil || mode != ModeAlgebraic {
		t.Fatalf("ParseMode: %v %v", mode, err)
	}
	if _, err := ParseMode("pgn"); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}
