package notation

import (
	"fmt"
	"strings"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
)

type IntentType int

const (
	IntentInvalid IntentType = iota
	IntentCastle
	IntentMove
	IntentCapture
	IntentPromote
	IntentDisambiguatedMove
	IntentPreview
	IntentDirectMove
	IntentDirectPromote
)

func (t IntentType) String() string {
	switch t {
	case IntentCastle:
		return "castle"
	case IntentMove:
		return "move"
	case IntentCapture:
		return "capture"
	case IntentPromote:
		return "promote"
	case IntentDisambiguatedMove:
		return "disambiguated move"
	case IntentPreview:
		return "preview"
	case IntentDirectMove:
		return "direct move"
	case IntentDirectPromote:
		return "direct promote"
	default:
		return "invalid"
	}
}

// Intent is a parsed but unvalidated request. Which fields are meaningful
// depends on Type: algebraic intents name a piece kind and target, coordinate
// intents name squares directly.
type Intent struct {
	Type      IntentType
	Text      string
	Side      core.Color
	Piece     board.Kind
	From      board.Square
	To        board.Square
	FromFile  int // -1 when not given
	FromRank  int // -1 when not given
	Capture   bool
	Promotion board.Kind // NoKind when not given
	Kingside  bool       // castling side
	Reason    string     // set for IntentInvalid
}

func newIntent(text string, side core.Color) Intent {
	return Intent{
		Text:     text,
		Side:     side,
		From:     board.NoSquare,
		To:       board.NoSquare,
		FromFile: -1,
		FromRank: -1,
	}
}

func invalid(text string, side core.Color, format string, args ...any) Intent {
	in := newIntent(text, side)
	in.Reason = fmt.Sprintf(format, args...)
	return in
}

func (in Intent) Valid() bool { return in.Type != IntentInvalid }

// Direct reports intents that name the origin square
func (in Intent) Direct() bool {
	switch in.Type {
	case IntentCastle, IntentPreview, IntentDirectMove, IntentDirectPromote:
		return true
	default:
		return false
	}
}

// Mode selects which notation the input collaborator speaks
type Mode int

const (
	ModeCoordinate Mode = iota
	ModeAlgebraic
)

func (m Mode) String() string {
	if m == ModeAlgebraic {
		return "algebraic"
	}
	return "coordinate"
}

// ParseMode accepts "algebraic" or "coordinate"; empty selects coordinate
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "coordinate", "smith", "lan":
		return ModeCoordinate, nil
	case "algebraic", "san":
		return ModeAlgebraic, nil
	default:
		return ModeCoordinate, fmt.Errorf("unknown notation mode %q", s)
	}
}

// Parse dispatches to the parser for mode
func Parse(mode Mode, text string, side core.Color) Intent {
	if mode == ModeAlgebraic {
		return ParseAlgebraic(text, side)
	}
	return ParseCoordinate(text, side)
}
