package notation

import (
	"regexp"
	"strings"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
)

// piece, file, rank, capture, target, promotion | castle; check and annotation suffixes ignored
var algebraicPattern = regexp.MustCompile(`^(?:([KQRBN])?([a-h])?([1-8])?(x)?([a-h][1-8])(?:=?([QRBN]))?|(O-O-O|O-O|0-0-0|0-0))[+#]?[!?]*$`)

// ParseAlgebraic reads standard algebraic notation for side
func ParseAlgebraic(text string, side core.Color) Intent {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return invalid(text, side, "empty move")
	}

	m := algebraicPattern.FindStringSubmatch(raw)
	if m == nil {
		return invalid(text, side, "%q is not algebraic notation", raw)
	}

	in := newIntent(text, side)

	if castle := m[7]; castle != "" {
		in.Type = IntentCastle
		in.Piece = board.King
		in.Kingside = castle == "O-O" || castle == "0-0"
		in.From = board.KingHome(side)
		file := 6
		if !in.Kingside {
			file = 2
		}
		in.To = board.SquareAt(file, board.HomeRank(side))
		return in
	}

	in.Piece = board.Pawn
	if m[1] != "" {
		in.Piece, _ = board.KindFromLetter(m[1][0])
	}
	if m[2] != "" {
		in.FromFile = int(m[2][0] - 'a')
	}
	if m[3] != "" {
		in.FromRank = int(m[3][0] - '1')
	}
	in.Capture = m[4] != ""
	in.To, _ = board.ParseSquare(m[5])
	if m[6] != "" {
		in.Promotion, _ = board.KindFromLetter(m[6][0])
	}

	if in.Piece == board.Pawn {
		// "ed5" reads as a pawn capture missing its x
		if in.FromFile >= 0 && !in.Capture {
			return invalid(text, side, "pawn move %q names a file without capturing", raw)
		}
		if in.FromRank >= 0 {
			return invalid(text, side, "pawn move %q cannot name a rank", raw)
		}
		if in.Capture && in.FromFile < 0 {
			return invalid(text, side, "pawn capture %q must name its file", raw)
		}
		promoting := in.To.Rank() == board.PromotionRank(side)
		if in.Promotion != board.NoKind && !promoting {
			return invalid(text, side, "%q promotes away from the last rank", raw)
		}
		if promoting {
			in.Type = IntentPromote
			return in
		}
	} else if in.Promotion != board.NoKind {
		return invalid(text, side, "only pawns promote")
	}

	switch {
	case in.Piece != board.Pawn && (in.FromFile >= 0 || in.FromRank >= 0):
		in.Type = IntentDisambiguatedMove
	case in.Capture:
		in.Type = IntentCapture
	default:
		in.Type = IntentMove
	}
	return in
}
