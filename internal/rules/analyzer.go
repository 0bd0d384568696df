package rules

import (
	"chess-rules/internal/board"
	"chess-rules/internal/core"
)

// Analysis is the threat and legality picture of one position
type Analysis struct {
	Turn     core.Color
	Threats  [2]board.SquareSet // indexed by core.Color.Index()
	Usable   [2][]board.PieceID // pieces with at least one legal move
	InCheck  [2]bool
	Checkers [2][]board.PieceID // enemy pieces attacking each side's king
	Legal    map[board.PieceID]board.SquareSet
}

// Analyze recomputes every piece's reach, both sides' threat maps and the exact
// legal destinations of every living piece. Piece Legal and Defends caches are
// refreshed in place.
func Analyze(pos *board.Position) *Analysis {
	a := &Analysis{Turn: pos.Turn, Legal: make(map[board.PieceID]board.SquareSet, 32)}

	pieces := pos.Board.Pieces(board.Filter{})
	rays := make(map[board.PieceID]Rays, len(pieces))
	for _, p := range pieces {
		r := Cast(pos, p.ID)
		rays[p.ID] = r
		p.Defends = r.Defends
		a.Threats[p.Color.Index()] |= r.Threats
	}

	for _, color := range []core.Color{core.ColorWhite, core.ColorBlack} {
		king := pos.Board.King(color)
		if king == nil {
			continue
		}
		enemy := core.OppositeColor(color).Index()
		a.InCheck[color.Index()] = a.Threats[enemy].Has(king.Square)
		if a.InCheck[color.Index()] {
			for _, p := range pieces {
				if p.Color != color && rays[p.ID].Threats.Has(king.Square) {
					a.Checkers[color.Index()] = append(a.Checkers[color.Index()], p.ID)
				}
			}
		}
	}

	for _, p := range pieces {
		legal := a.candidates(pos, p, rays[p.ID])
		for _, to := range legal.Squares() {
			if !Simulate(pos, p.ID, to) {
				legal = legal.Without(to)
			}
		}
		p.Legal = legal
		a.Legal[p.ID] = legal
		if !legal.Empty() {
			a.Usable[p.Color.Index()] = append(a.Usable[p.Color.Index()], p.ID)
		}
	}
	return a
}

// candidates narrows pseudo-legal moves by the threat maps before simulation
func (a *Analysis) candidates(pos *board.Position, p *board.Piece, r Rays) board.SquareSet {
	side := p.Color.Index()
	enemyThreats := a.Threats[core.OppositeColor(p.Color).Index()]
	moves := r.Moves

	if p.Kind == board.King {
		moves &^= enemyThreats
		for _, dest := range r.Castles.Squares() {
			dir := board.East
			if dest.File() < p.Square.File() {
				dir = board.West
			}
			transit := p.Square.Step(dir, 1)
			if a.InCheck[side] || enemyThreats.Has(transit) || enemyThreats.Has(dest) {
				moves = moves.Without(dest)
			}
		}
		return moves
	}

	if !a.InCheck[side] {
		return moves
	}
	checkers := a.Checkers[side]
	if len(checkers) != 1 {
		return 0
	}

	checker := pos.Board.Piece(checkers[0])
	king := pos.Board.King(p.Color)
	block := board.Between(checker.Square, king.Square).With(checker.Square)

	allowed := moves & block
	// Capturing a checking pawn en passant lands beside it, not on it
	if victim, ok := EnPassantVictim(pos, p.ID, pos.EnPassant.Target); ok && victim == checker.ID && moves.Has(pos.EnPassant.Target) {
		allowed = allowed.With(pos.EnPassant.Target)
	}
	return allowed
}

// Checkmate reports the side to move in check with no legal move
func (a *Analysis) Checkmate() bool {
	side := a.Turn.Index()
	return a.InCheck[side] && len(a.Usable[side]) == 0
}

// Stalemate reports the side to move not in check with no legal move
func (a *Analysis) Stalemate() bool {
	side := a.Turn.Index()
	return !a.InCheck[side] && len(a.Usable[side]) == 0
}

// Check reports whether the side to move is in check
func (a *Analysis) Check() bool {
	return a.InCheck[a.Turn.Index()]
}

// LegalFor returns the legal destinations of a piece
func (a *Analysis) LegalFor(id board.PieceID) board.SquareSet {
	return a.Legal[id]
}

// Move is a from-to pair of a legal move
type Move struct {
	From board.Square
	To   board.Square
}

func (m Move) String() string { return m.From.String() + m.To.String() }

// Moves lists color's legal moves in ascending origin then destination order
func (a *Analysis) Moves(pos *board.Position, color core.Color) []Move {
	var out []Move
	for _, p := range pos.Board.Pieces(board.Filter{Color: color}) {
		for _, to := range a.Legal[p.ID].Squares() {
			out = append(out, Move{From: p.Square, To: to})
		}
	}
	return out
}
