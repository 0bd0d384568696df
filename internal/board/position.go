package board

import (
	"chess-rules/internal/core"
)

// CastlingRights records the four castling permissions
type CastlingRights struct {
	WhiteKingside  bool
	WhiteQueenside bool
	BlackKingside  bool
	BlackQueenside bool
}

func (c CastlingRights) Has(color core.Color, kingside bool) bool {
	switch {
	case color == core.ColorWhite && kingside:
		return c.WhiteKingside
	case color == core.ColorWhite:
		return c.WhiteQueenside
	case kingside:
		return c.BlackKingside
	default:
		return c.BlackQueenside
	}
}

func (c *CastlingRights) Revoke(color core.Color, kingside bool) {
	switch {
	case color == core.ColorWhite && kingside:
		c.WhiteKingside = false
	case color == core.ColorWhite:
		c.WhiteQueenside = false
	case kingside:
		c.BlackKingside = false
	default:
		c.BlackQueenside = false
	}
}

func (c *CastlingRights) RevokeAll(color core.Color) {
	c.Revoke(color, true)
	c.Revoke(color, false)
}

func (c CastlingRights) Any(color core.Color) bool {
	return c.Has(color, true) || c.Has(color, false)
}

// String renders the FEN castling field
func (c CastlingRights) String() string {
	s := make([]byte, 0, 4)
	if c.WhiteKingside {
		s = append(s, 'K')
	}
	if c.WhiteQueenside {
		s = append(s, 'Q')
	}
	if c.BlackKingside {
		s = append(s, 'k')
	}
	if c.BlackQueenside {
		s = append(s, 'q')
	}
	if len(s) == 0 {
		return "-"
	}
	return string(s)
}

// RookHome is the corner a castling rook starts from
func RookHome(color core.Color, kingside bool) Square {
	file := 0
	if kingside {
		file = 7
	}
	return SquareAt(file, HomeRank(color))
}

// KingHome is e1 or e8
func KingHome(color core.Color) Square {
	return SquareAt(4, HomeRank(color))
}

// EnPassant names the pawn that just double-stepped and the square it skipped
type EnPassant struct {
	Pawn   PieceID
	Target Square
}

var NoEnPassant = EnPassant{Pawn: NoPiece, Target: NoSquare}

func (e EnPassant) Valid() bool { return e.Pawn != NoPiece && e.Target.Valid() }

// Position is the full game state a FEN string describes
type Position struct {
	Board     *Board
	Turn      core.Color
	Castling  CastlingRights
	EnPassant EnPassant
	HalfMove  int
	FullMove  int
}

// Clone deep-copies the position
func (p *Position) Clone() *Position {
	c := *p
	c.Board = p.Board.Clone()
	return &c
}

// Restore overwrites p with a clone taken earlier
func (p *Position) Restore(snapshot *Position) {
	board := p.Board
	*p = *snapshot
	board.Restore(snapshot.Board)
	p.Board = board
}
