package notation

import (
	"strings"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
)

func separator(ch byte) bool {
	return ch == ' ' || ch == '-' || ch == 'x' || ch == ':' || ch == '\t'
}

// ParseCoordinate reads square-to-square notation: "e2" previews, "e2e4" and
// "e2-e4" move, "e7e8q" promotes.
func ParseCoordinate(text string, side core.Color) Intent {
	raw := strings.ToLower(strings.TrimSpace(text))
	if raw == "" {
		return invalid(text, side, "empty move")
	}

	var squares []board.Square
	promotion := board.NoKind

	for i := 0; i < len(raw); {
		ch := raw[i]
		switch {
		case separator(ch):
			i++
		case promotion != board.NoKind:
			return invalid(text, side, "unexpected %q after promotion", raw[i:])
		case ch >= 'a' && ch <= 'h' && i+1 < len(raw) && raw[i+1] >= '1' && raw[i+1] <= '8':
			if len(squares) == 2 {
				return invalid(text, side, "too many squares in %q", raw)
			}
			sq, _ := board.ParseSquare(raw[i : i+2])
			squares = append(squares, sq)
			i += 2
		case ch == 'q' || ch == 'r' || ch == 'b' || ch == 'n':
			if len(squares) != 2 {
				return invalid(text, side, "promotion piece needs two squares before it")
			}
			promotion, _ = board.KindFromLetter(ch)
			i++
		default:
			return invalid(text, side, "%q is not coordinate notation", raw)
		}
	}

	in := newIntent(text, side)
	switch len(squares) {
	case 1:
		in.Type = IntentPreview
		in.From = squares[0]
	case 2:
		in.Type = IntentDirectMove
		in.From, in.To = squares[0], squares[1]
		if promotion != board.NoKind {
			in.Type = IntentDirectPromote
			in.Promotion = promotion
		}
	default:
		return invalid(text, side, "no squares in %q", raw)
	}
	return in
}
