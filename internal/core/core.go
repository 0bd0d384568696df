package core

type State int

const (
	StateOngoing State = iota
	StatePending       // Computer is calculating a move
	StateStuck         // Computer move failed, game frozen until undo
	StateWhiteWins
	StateBlackWins
	StateDraw
	StateStalemate
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateStuck:
		return "stuck"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateDraw:
		return "draw"
	case StateStalemate:
		return "stalemate"
	case StateOngoing:
		return "ongoing"
	default:
		return "unknown"
	}
}

// IsOver reports whether the state is terminal
func (s State) IsOver() bool {
	switch s {
	case StateWhiteWins, StateBlackWins, StateDraw, StateStalemate:
		return true
	default:
		return false
	}
}

// Reason explains why a game ended
type Reason int

const (
	ReasonNone Reason = iota
	ReasonCheckmate
	ReasonStalemate
	ReasonInsufficientMaterial
	ReasonFiftyMove
	ReasonThreefoldRepetition
)

func (r Reason) String() string {
	switch r {
	case ReasonCheckmate:
		return "checkmate"
	case ReasonStalemate:
		return "stalemate"
	case ReasonInsufficientMaterial:
		return "insufficient material"
	case ReasonFiftyMove:
		return "fifty-move rule"
	case ReasonThreefoldRepetition:
		return "threefold repetition"
	default:
		return ""
	}
}

// StateFor maps a terminal reason to the final game state; mover is the side that made the last move
func StateFor(r Reason, mover Color) State {
	switch r {
	case ReasonNone:
		return StateOngoing
	case ReasonCheckmate:
		if mover == ColorWhite {
			return StateWhiteWins
		}
		return StateBlackWins
	case ReasonStalemate:
		return StateStalemate
	default:
		return StateDraw
	}
}

type Color byte

const (
	ColorWhite Color = iota + 1
	ColorBlack
)

func (c Color) String() string {
	if c == ColorWhite {
		return "w"
	} else if c == ColorBlack {
		return "b"
	} else {
		return "-"
	}
}

// Name returns the capitalized color name for display
func (c Color) Name() string {
	if c == ColorWhite {
		return "White"
	}
	return "Black"
}

// Index maps white to 0 and black to 1 for per-side arrays
func (c Color) Index() int {
	if c == ColorBlack {
		return 1
	}
	return 0
}

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// ParseColor accepts the FEN active-color letters
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w":
		return ColorWhite, true
	case "b":
		return ColorBlack, true
	default:
		return 0, false
	}
}
