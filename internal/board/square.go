package board

import (
	"math/bits"
	"strings"
)

// Square indexes the flat 64-square board, index = rank*8 + file, a1 = 0, h8 = 63
type Square int8

const NoSquare Square = -1

// SquareAt returns NoSquare when file or rank is off the board
func SquareAt(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) & 7 }
func (s Square) Rank() int { return int(s) >> 3 }

func (s Square) Valid() bool { return s >= 0 && s < 64 }

// Light reports whether the square is a light square (a1 is dark)
func (s Square) Light() bool { return (s.File()+s.Rank())%2 == 1 }

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare converts algebraic coordinates like "e4" to a square
func ParseSquare(coord string) (Square, bool) {
	if len(coord) != 2 {
		return NoSquare, false
	}
	file := coord[0]
	rank := coord[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, false
	}
	return SquareAt(int(file-'a'), int(rank-'1')), true
}

// SquareSet is a 64-bit membership mask over squares
type SquareSet uint64

func (s SquareSet) Has(sq Square) bool {
	return sq.Valid() && s&(1<<uint(sq)) != 0
}

func (s SquareSet) With(sq Square) SquareSet {
	if !sq.Valid() {
		return s
	}
	return s | 1<<uint(sq)
}

func (s SquareSet) Without(sq Square) SquareSet {
	if !sq.Valid() {
		return s
	}
	return s &^ (1 << uint(sq))
}

func (s SquareSet) Len() int { return bits.OnesCount64(uint64(s)) }

func (s SquareSet) Empty() bool { return s == 0 }

// Squares lists members in ascending index order
func (s SquareSet) Squares() []Square {
	out := make([]Square, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		out = append(out, Square(bits.TrailingZeros64(rest)))
	}
	return out
}

func (s SquareSet) Strings() []string {
	sqs := s.Squares()
	out := make([]string, len(sqs))
	for i, sq := range sqs {
		out[i] = sq.String()
	}
	return out
}

func (s SquareSet) String() string {
	return "{" + strings.Join(s.Strings(), " ") + "}"
}

// SetOf builds a set from coordinates, ignoring malformed ones
func SetOf(coords ...string) SquareSet {
	var s SquareSet
	for _, c := range coords {
		if sq, ok := ParseSquare(c); ok {
			s = s.With(sq)
		}
	}
	return s
}

// Direction is one of the eight compass directions
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var Directions = [8]Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

var directionDeltas = [8]struct {
	index int
	file  int
}{
	North:     {8, 0},
	NorthEast: {9, 1},
	East:      {1, 1},
	SouthEast: {-7, 1},
	South:     {-8, 0},
	SouthWest: {-9, -1},
	West:      {-1, -1},
	NorthWest: {7, -1},
}

// Delta is the index offset of one step
func (d Direction) Delta() int { return directionDeltas[d].index }

// FileDelta is the column offset of one step, used to detect edge wrap
func (d Direction) FileDelta() int { return directionDeltas[d].file }

func (d Direction) Diagonal() bool { return d%2 == 1 }

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case NorthEast:
		return "NE"
	case East:
		return "E"
	case SouthEast:
		return "SE"
	case South:
		return "S"
	case SouthWest:
		return "SW"
	case West:
		return "W"
	case NorthWest:
		return "NW"
	default:
		return "?"
	}
}

// Step walks n steps from s in direction d, returning NoSquare on leaving the board or wrapping a file edge
func (s Square) Step(d Direction, n int) Square {
	target := int(s) + d.Delta()*n
	if target < 0 || target > 63 {
		return NoSquare
	}
	if Square(target).File()-s.File() != d.FileDelta()*n {
		return NoSquare
	}
	return Square(target)
}

// Between returns the squares strictly between two squares sharing a rank, file or diagonal
func Between(from, to Square) SquareSet {
	df := to.File() - from.File()
	dr := to.Rank() - from.Rank()
	if from == to || (df != 0 && dr != 0 && abs(df) != abs(dr)) {
		return 0
	}
	stepF, stepR := sign(df), sign(dr)
	var out SquareSet
	for f, r := from.File()+stepF, from.Rank()+stepR; f != to.File() || r != to.Rank(); f, r = f+stepF, r+stepR {
		out = out.With(SquareAt(f, r))
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
