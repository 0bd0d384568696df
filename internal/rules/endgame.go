package rules

import (
	"chess-rules/internal/board"
	"chess-rules/internal/core"
)

const (
	// FiftyMoveLimit is the half-move clock value that ends the game
	FiftyMoveLimit = 100
	// RepetitionMinHistory is the history length a repetition check needs to exceed
	RepetitionMinHistory = 10
	repetitionCount      = 3
)

// Evaluate returns why the game is over, or core.ReasonNone.
// Checks run in fixed precedence: checkmate, stalemate, insufficient material,
// fifty-move rule, threefold repetition.
func Evaluate(pos *board.Position, a *Analysis, history []string) core.Reason {
	switch {
	case a.Checkmate():
		return core.ReasonCheckmate
	case a.Stalemate():
		return core.ReasonStalemate
	case InsufficientMaterial(pos.Board):
		return core.ReasonInsufficientMaterial
	case FiftyMove(pos):
		return core.ReasonFiftyMove
	case ThreefoldRepetition(history):
		return core.ReasonThreefoldRepetition
	default:
		return core.ReasonNone
	}
}

// InsufficientMaterial matches a fixed list of dead positions: bare kings, a
// single minor piece, two bishops of one side on the same square colour, or two
// knights (owned by either side). Other drawn balances are not recognised.
func InsufficientMaterial(b *board.Board) bool {
	var others []*board.Piece
	for _, p := range b.Pieces(board.Filter{}) {
		if p.Kind != board.King {
			others = append(others, p)
		}
	}

	switch len(others) {
	case 0:
		return true
	case 1:
		return others[0].Kind.Minor()
	case 2:
		first, second := others[0], others[1]
		if first.Kind == board.Bishop && second.Kind == board.Bishop {
			return first.Color == second.Color && first.Square.Light() == second.Square.Light()
		}
		return first.Kind == board.Knight && second.Kind == board.Knight
	default:
		return false
	}
}

// FiftyMove reports a half-move clock at or beyond the limit
func FiftyMove(pos *board.Position) bool {
	return pos.HalfMove >= FiftyMoveLimit
}

// ThreefoldRepetition counts reduced FENs in history. Short histories are never
// checked.
func ThreefoldRepetition(history []string) bool {
	if len(history) <= RepetitionMinHistory {
		return false
	}
	seen := make(map[string]int, len(history))
	for _, fen := range history {
		key := board.ReducedFEN(fen)
		seen[key]++
		if seen[key] >= repetitionCount {
			return true
		}
	}
	return false
}
