package rules

import (
	"chess-rules/internal/board"
	"chess-rules/internal/core"
)

// Rays is the reach of one piece on the current board
type Rays struct {
	Lines   [8][]board.Square // per-direction squares in walking order
	Jumps   []board.Square    // leap targets
	Moves   board.SquareSet   // pseudo-legal destinations, castling included
	Defends board.SquareSet   // friendly pieces this piece protects
	Threats board.SquareSet   // squares this piece attacks
	Castles board.SquareSet   // castling destinations, kings only
}

// Cast walks every direction the piece may move in and collects what it reaches.
// King safety is not considered here.
func Cast(pos *board.Position, id board.PieceID) Rays {
	var r Rays
	p := pos.Board.Piece(id)
	if p == nil || !p.Alive() {
		return r
	}

	if p.Kind == board.Pawn {
		castPawn(pos, p, &r)
		return r
	}

	for _, dir := range board.Directions {
		reach := p.Movement[dir]
		for step := 1; step <= reach; step++ {
			sq := p.Square.Step(dir, step)
			if sq == board.NoSquare {
				break
			}
			r.Lines[dir] = append(r.Lines[dir], sq)
			r.Threats = r.Threats.With(sq)
			occupant := pos.Board.At(sq)
			if occupant == nil {
				r.Moves = r.Moves.With(sq)
				continue
			}
			if occupant.Color != p.Color {
				r.Moves = r.Moves.With(sq)
			} else {
				r.Defends = r.Defends.With(sq)
			}
			break
		}
	}

	for _, leap := range p.Leaps {
		sq := board.SquareAt(p.Square.File()+leap.Files, p.Square.Rank()+leap.Ranks)
		if sq == board.NoSquare {
			continue
		}
		r.Jumps = append(r.Jumps, sq)
		r.Threats = r.Threats.With(sq)
		occupant := pos.Board.At(sq)
		switch {
		case occupant == nil || occupant.Color != p.Color:
			r.Moves = r.Moves.With(sq)
		default:
			r.Defends = r.Defends.With(sq)
		}
	}

	if p.Kind == board.King {
		castKing(pos, p, &r)
	}
	return r
}

func castPawn(pos *board.Position, p *board.Piece, r *Rays) {
	forward := board.North
	if p.Color == core.ColorBlack {
		forward = board.South
	}

	reach := 1
	if p.Square.Rank() == board.PawnRank(p.Color) {
		reach = 2
	}
	for step := 1; step <= reach; step++ {
		sq := p.Square.Step(forward, step)
		if sq == board.NoSquare || !pos.Board.Empty(sq) {
			break
		}
		r.Lines[forward] = append(r.Lines[forward], sq)
		r.Moves = r.Moves.With(sq)
	}

	for _, dir := range p.Captures {
		sq := p.Square.Step(dir, 1)
		if sq == board.NoSquare {
			continue
		}
		r.Lines[dir] = append(r.Lines[dir], sq)
		r.Threats = r.Threats.With(sq)
		occupant := pos.Board.At(sq)
		switch {
		case occupant != nil && occupant.Color != p.Color:
			r.Moves = r.Moves.With(sq)
		case occupant != nil:
			r.Defends = r.Defends.With(sq)
		case enPassantTarget(pos, p, sq):
			r.Moves = r.Moves.With(sq)
		}
	}
}

// enPassantTarget reports whether pawn p may land on the empty square sq by en passant
func enPassantTarget(pos *board.Position, p *board.Piece, sq board.Square) bool {
	ep := pos.EnPassant
	if !ep.Valid() || ep.Target != sq {
		return false
	}
	victim := pos.Board.Piece(ep.Pawn)
	return victim != nil && victim.Alive() && victim.Kind == board.Pawn && victim.Color != p.Color
}

// castKing adds the two-square castling rays. Attack conditions are left to the analyzer.
func castKing(pos *board.Position, king *board.Piece, r *Rays) {
	if king.HasMoved || king.Square != board.KingHome(king.Color) {
		return
	}
	for _, kingside := range []bool{true, false} {
		if !pos.Castling.Has(king.Color, kingside) {
			continue
		}
		rook := pos.Board.At(board.RookHome(king.Color, kingside))
		if rook == nil || rook.Kind != board.Rook || rook.Color != king.Color || rook.HasMoved {
			continue
		}
		if !vacant(pos.Board, board.Between(king.Square, rook.Square)) {
			continue
		}
		dir := board.East
		if !kingside {
			dir = board.West
		}
		dest := king.Square.Step(dir, 2)
		r.Lines[dir] = appendUnique(r.Lines[dir], dest)
		r.Moves = r.Moves.With(dest)
		r.Castles = r.Castles.With(dest)
	}
}

func vacant(b *board.Board, squares board.SquareSet) bool {
	for _, sq := range squares.Squares() {
		if !b.Empty(sq) {
			return false
		}
	}
	return true
}

func appendUnique(line []board.Square, sq board.Square) []board.Square {
	for _, s := range line {
		if s == sq {
			return line
		}
	}
	return append(line, sq)
}

// ThreatMap is the union of squares attacked by color's pieces
func ThreatMap(pos *board.Position, color core.Color) board.SquareSet {
	var threats board.SquareSet
	for _, p := range pos.Board.Pieces(board.Filter{Color: color}) {
		threats |= Cast(pos, p.ID).Threats
	}
	return threats
}

// Attacked reports whether color's king is under attack
func Attacked(pos *board.Position, color core.Color) bool {
	king := pos.Board.King(color)
	if king == nil {
		return false
	}
	return ThreatMap(pos, core.OppositeColor(color)).Has(king.Square)
}
