package rules

import (
	"chess-rules/internal/board"
)

// Simulate plays piece id onto to, checks whether its own king is left attacked,
// and restores the board before returning. Castling rook hops and en passant
// victims are applied so discovered attacks are seen.
func Simulate(pos *board.Position, id board.PieceID, to board.Square) (safe bool) {
	p := pos.Board.Piece(id)
	if p == nil || !p.Alive() || !to.Valid() {
		return false
	}

	victimOn := board.NoSquare
	victim, passant := EnPassantVictim(pos, id, to)
	if passant {
		victimOn = pos.Board.Piece(victim).Square
	}
	rookFrom, rookTo, castle := CastleRookHop(pos, id, to)

	// every piece touched starts on one of these squares
	sp := pos.Board.Save(p.Square, to, victimOn, rookFrom, rookTo)
	defer pos.Board.Rewind(sp)

	color := p.Color
	if passant {
		pos.Board.Remove(victim)
	}
	if castle {
		pos.Board.Relocate(pos.Board.IDAt(rookFrom), rookTo)
	}
	pos.Board.Relocate(id, to)

	return !Attacked(pos, color)
}

// EnPassantVictim returns the pawn removed when piece id moves to to by en passant
func EnPassantVictim(pos *board.Position, id board.PieceID, to board.Square) (board.PieceID, bool) {
	p := pos.Board.Piece(id)
	if p == nil || p.Kind != board.Pawn || to.File() == p.Square.File() {
		return board.NoPiece, false
	}
	if !pos.Board.Empty(to) || !enPassantTarget(pos, p, to) {
		return board.NoPiece, false
	}
	return pos.EnPassant.Pawn, true
}

// CastleRookHop returns the rook's squares when king id moves two files
func CastleRookHop(pos *board.Position, id board.PieceID, to board.Square) (from, dest board.Square, ok bool) {
	king := pos.Board.Piece(id)
	if king == nil || king.Kind != board.King {
		return board.NoSquare, board.NoSquare, false
	}
	delta := to.File() - king.Square.File()
	if to.Rank() != king.Square.Rank() || (delta != 2 && delta != -2) {
		return board.NoSquare, board.NoSquare, false
	}
	kingside := delta > 0
	from = board.RookHome(king.Color, kingside)
	rook := pos.Board.At(from)
	if rook == nil || rook.Kind != board.Rook || rook.Color != king.Color {
		return board.NoSquare, board.NoSquare, false
	}
	// Rook lands on the square the king crossed
	dir := board.East
	if !kingside {
		dir = board.West
	}
	return from, king.Square.Step(dir, 1), true
}
