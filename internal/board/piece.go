package board

import (
	"chess-rules/internal/core"
)

// Kind is the closed set of chess piece kinds
type Kind uint8

const (
	NoKind Kind = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var kindLetters = [...]byte{NoKind: '?', King: 'K', Queen: 'Q', Rook: 'R', Bishop: 'B', Knight: 'N', Pawn: 'P'}

// Letter returns the uppercase FEN letter of the kind
func (k Kind) Letter() byte {
	if int(k) >= len(kindLetters) {
		return '?'
	}
	return kindLetters[k]
}

func (k Kind) String() string {
	switch k {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	default:
		return "none"
	}
}

// Minor reports bishops and knights
func (k Kind) Minor() bool { return k == Bishop || k == Knight }

// KindFromLetter accepts either case
func KindFromLetter(ch byte) (Kind, bool) {
	switch ch {
	case 'K', 'k':
		return King, true
	case 'Q', 'q':
		return Queen, true
	case 'R', 'r':
		return Rook, true
	case 'B', 'b':
		return Bishop, true
	case 'N', 'n':
		return Knight, true
	case 'P', 'p':
		return Pawn, true
	default:
		return NoKind, false
	}
}

// Unlimited is the range of sliding pieces; no ray on an 8x8 board is longer
const Unlimited = 7

// Capability maps each compass direction to a ray length
type Capability [8]int

// Leap is a discrete jump offset
type Leap struct {
	Files int
	Ranks int
}

// MoveRule describes how a kind moves
type MoveRule struct {
	Movement Capability
	Leaps    []Leap
	Captures []Direction // Pawns only, empty means captures follow movement
}

var knightLeaps = []Leap{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

func uniform(n int, dirs ...Direction) Capability {
	var c Capability
	for _, d := range dirs {
		c[d] = n
	}
	return c
}

var moveRules = [...]MoveRule{
	King:   {Movement: uniform(1, Directions[:]...)},
	Queen:  {Movement: uniform(Unlimited, Directions[:]...)},
	Rook:   {Movement: uniform(Unlimited, North, East, South, West)},
	Bishop: {Movement: uniform(Unlimited, NorthEast, SouthEast, SouthWest, NorthWest)},
	Knight: {Leaps: knightLeaps},
	Pawn:   {},
}

// RuleFor returns the movement rule of a kind; pawn rules depend on side
func RuleFor(kind Kind, color core.Color) MoveRule {
	if kind == Pawn {
		if color == core.ColorWhite {
			return MoveRule{Movement: uniform(1, North), Captures: []Direction{NorthWest, NorthEast}}
		}
		return MoveRule{Movement: uniform(1, South), Captures: []Direction{SouthWest, SouthEast}}
	}
	if kind == NoKind || int(kind) >= len(moveRules) {
		return MoveRule{}
	}
	return moveRules[kind]
}

// PieceID indexes the board's piece arena
type PieceID int16

const NoPiece PieceID = -1

// Piece is one arena record; Square is NoSquare once captured
type Piece struct {
	ID       PieceID
	Kind     Kind
	Color    core.Color
	Square   Square
	Movement Capability
	Leaps    []Leap
	Captures []Direction
	HasMoved bool
	Taken    []Kind    // kinds this piece has captured
	Legal    SquareSet // cached legal destinations
	Defends  SquareSet // cached squares of friendly pieces this piece protects
}

func (p *Piece) Alive() bool { return p.Square != NoSquare }

// Letter is the FEN letter, uppercase for white
func (p *Piece) Letter() byte {
	ch := p.Kind.Letter()
	if p.Color == core.ColorBlack {
		ch += 'a' - 'A'
	}
	return ch
}

// HomeRank is the back rank of the piece's side
func HomeRank(color core.Color) int {
	if color == core.ColorWhite {
		return 0
	}
	return 7
}

// PawnRank is the starting rank of the side's pawns
func PawnRank(color core.Color) int {
	if color == core.ColorWhite {
		return 1
	}
	return 6
}

// PromotionRank is the far rank for the side's pawns
func PromotionRank(color core.Color) int {
	return HomeRank(core.OppositeColor(color))
}
