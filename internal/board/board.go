package board

import (
	"errors"
	"fmt"

	"chess-rules/internal/core"
)

var ErrInvariant = errors.New("board invariant violated")

// Board is the 64-square grid plus the piece arena it references.
// Every occupied square holds the id of a living piece whose Square points back at it.
type Board struct {
	squares [64]PieceID
	pieces  []Piece
}

func NewBoard() *Board {
	b := &Board{pieces: make([]Piece, 0, 32)}
	for i := range b.squares {
		b.squares[i] = NoPiece
	}
	return b
}

// Place adds a new piece to the arena; an occupant of sq is captured
func (b *Board) Place(kind Kind, color core.Color, sq Square) PieceID {
	rule := RuleFor(kind, color)
	id := PieceID(len(b.pieces))
	b.pieces = append(b.pieces, Piece{
		ID:       id,
		Kind:     kind,
		Color:    color,
		Square:   NoSquare,
		Movement: rule.Movement,
		Leaps:    rule.Leaps,
		Captures: rule.Captures,
	})
	if sq.Valid() {
		b.Relocate(id, sq)
	}
	return id
}

// At returns the piece on sq or nil
func (b *Board) At(sq Square) *Piece {
	id := b.IDAt(sq)
	if id == NoPiece {
		return nil
	}
	return &b.pieces[id]
}

func (b *Board) IDAt(sq Square) PieceID {
	if !sq.Valid() {
		return NoPiece
	}
	return b.squares[sq]
}

func (b *Board) Empty(sq Square) bool { return b.IDAt(sq) == NoPiece }

// Piece returns the arena record, including captured pieces
func (b *Board) Piece(id PieceID) *Piece {
	if id < 0 || int(id) >= len(b.pieces) {
		return nil
	}
	return &b.pieces[id]
}

// Relocate moves a piece to sq and returns the id of any captured occupant
func (b *Board) Relocate(id PieceID, to Square) PieceID {
	p := b.Piece(id)
	if p == nil || !to.Valid() {
		return NoPiece
	}
	captured := b.squares[to]
	if captured == id {
		return NoPiece
	}
	if captured != NoPiece {
		b.pieces[captured].Square = NoSquare
	}
	if p.Square.Valid() && b.squares[p.Square] == id {
		b.squares[p.Square] = NoPiece
	}
	b.squares[to] = id
	p.Square = to
	return captured
}

// Remove takes a piece off the board without destroying its arena record
func (b *Board) Remove(id PieceID) {
	p := b.Piece(id)
	if p == nil || !p.Alive() {
		return
	}
	if b.squares[p.Square] == id {
		b.squares[p.Square] = NoPiece
	}
	p.Square = NoSquare
}

// Filter selects living pieces; zero fields match anything
type Filter struct {
	Color core.Color
	Kind  Kind
}

// Pieces lists living pieces matching f in ascending square order
func (b *Board) Pieces(f Filter) []*Piece {
	out := make([]*Piece, 0, 16)
	for _, id := range b.squares {
		if id == NoPiece {
			continue
		}
		p := &b.pieces[id]
		if f.Color != 0 && p.Color != f.Color {
			continue
		}
		if f.Kind != NoKind && p.Kind != f.Kind {
			continue
		}
		out = append(out, p)
	}
	return out
}

// King returns the living king of color or nil
func (b *Board) King(color core.Color) *Piece {
	for _, id := range b.squares {
		if id != NoPiece && b.pieces[id].Kind == King && b.pieces[id].Color == color {
			return &b.pieces[id]
		}
	}
	return nil
}

// Clone deep-copies the board so caches and capture lists are independent
func (b *Board) Clone() *Board {
	c := &Board{squares: b.squares, pieces: make([]Piece, len(b.pieces))}
	copy(c.pieces, b.pieces)
	for i := range c.pieces {
		c.pieces[i].Taken = append([]Kind(nil), b.pieces[i].Taken...)
	}
	return c
}

// Restore overwrites b with a snapshot taken by Clone
func (b *Board) Restore(snapshot *Board) {
	b.squares = snapshot.squares
	b.pieces = append(b.pieces[:0], snapshot.pieces...)
	for i := range b.pieces {
		b.pieces[i].Taken = append([]Kind(nil), snapshot.pieces[i].Taken...)
	}
}

// Savepoint records a few squares and the pieces standing on them
type Savepoint struct {
	n       int
	squares [5]Square
	ids     [5]PieceID
}

// Save records sqs for Rewind. Invalid squares are skipped. Only moves whose
// pieces all start on saved squares can be rewound.
func (b *Board) Save(sqs ...Square) Savepoint {
	var sp Savepoint
	for _, sq := range sqs {
		if !sq.Valid() || sp.n == len(sp.squares) {
			continue
		}
		sp.squares[sp.n] = sq
		sp.ids[sp.n] = b.squares[sq]
		sp.n++
	}
	return sp
}

// Rewind puts the saved squares and their pieces back
func (b *Board) Rewind(sp Savepoint) {
	for i := sp.n - 1; i >= 0; i-- {
		b.squares[sp.squares[i]] = NoPiece
	}
	for i := 0; i < sp.n; i++ {
		sq, id := sp.squares[i], sp.ids[i]
		if id == NoPiece {
			continue
		}
		b.squares[sq] = id
		b.pieces[id].Square = sq
	}
}

// SamePlacement compares occupancy only, ignoring arena ids and caches
func (b *Board) SamePlacement(o *Board) bool {
	for sq := Square(0); sq < 64; sq++ {
		p, q := b.At(sq), o.At(sq)
		if (p == nil) != (q == nil) {
			return false
		}
		if p != nil && (p.Kind != q.Kind || p.Color != q.Color) {
			return false
		}
	}
	return true
}

// Check verifies grid/arena consistency and one king per side
func (b *Board) Check() error {
	var kings [2]int
	for sq, id := range b.squares {
		if id == NoPiece {
			continue
		}
		if int(id) >= len(b.pieces) {
			return fmt.Errorf("%w: square %s references unknown piece %d", ErrInvariant, Square(sq), id)
		}
		p := &b.pieces[id]
		if p.Square != Square(sq) {
			return fmt.Errorf("%w: piece %d on %s records square %s", ErrInvariant, id, Square(sq), p.Square)
		}
		if p.Kind == King {
			kings[p.Color.Index()]++
		}
	}
	for i := range b.pieces {
		p := &b.pieces[i]
		if p.Alive() && b.squares[p.Square] != p.ID {
			return fmt.Errorf("%w: piece %d claims %s but square holds %d", ErrInvariant, p.ID, p.Square, b.squares[p.Square])
		}
	}
	if kings[0] != 1 || kings[1] != 1 {
		return fmt.Errorf("%w: expected one king per side, got %d white and %d black", ErrInvariant, kings[0], kings[1])
	}
	return nil
}
