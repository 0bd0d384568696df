package game

import (
	"fmt"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
	"chess-rules/internal/notation"
	"chess-rules/internal/rules"
)

type Status int

const (
	StatusApplied Status = iota
	StatusPreviewed
	StatusInvalidNotation
	StatusIllegalMove
	StatusGameOver
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusPreviewed:
		return "previewed"
	case StatusInvalidNotation:
		return "invalid notation"
	case StatusIllegalMove:
		return "illegal move"
	default:
		return "game over"
	}
}

// Outcome reports what happened to one intent. Rejections are outcomes, not errors.
type Outcome struct {
	Status     Status
	Intent     notation.Intent
	Move       string // coordinate text of the applied move
	From       board.Square
	To         board.Square
	Mover      core.Color
	Captured   board.Kind
	Castled    bool
	EnPassant  bool
	Promoted   board.Kind
	Highlights board.SquareSet // preview targets
	Check      bool
	State      core.State
	Reason     core.Reason
	Message    string
}

func (g *Game) reject(status Status, in notation.Intent, format string, args ...any) Outcome {
	return Outcome{
		Status:  status,
		Intent:  in,
		From:    in.From,
		To:      in.To,
		State:   g.state,
		Reason:  g.reason,
		Message: fmt.Sprintf(format, args...),
	}
}

// Apply validates an intent against the current legal sets and plays it
func (g *Game) Apply(in notation.Intent) Outcome {
	switch {
	case !in.Valid():
		return g.reject(StatusInvalidNotation, in, "%s", in.Reason)
	case in.Type == notation.IntentPreview:
		targets, ok := g.Preview(in.From)
		if !ok {
			return g.reject(StatusIllegalMove, in, "no piece on %s", in.From)
		}
		out := g.reject(StatusPreviewed, in, "%d moves from %s", targets.Len(), in.From)
		out.Highlights = targets
		return out
	case g.IsOver():
		return g.reject(StatusGameOver, in, "game is over: %s", g.state)
	}

	id, promotion, err := g.resolve(in)
	if err != nil {
		return g.reject(StatusIllegalMove, in, "%v", err)
	}
	return g.apply(in, id, in.To, promotion)
}

// resolve finds the piece an intent refers to and checks the destination is legal
func (g *Game) resolve(in notation.Intent) (board.PieceID, board.Kind, error) {
	turn := g.pos.Turn
	if in.Side != 0 && in.Side != turn {
		return board.NoPiece, board.NoKind, fmt.Errorf("it is %s's turn", turn.Name())
	}

	var p *board.Piece
	if in.Direct() {
		p = g.pos.Board.At(in.From)
		switch {
		case p == nil:
			return board.NoPiece, board.NoKind, fmt.Errorf("no piece on %s", in.From)
		case p.Color != turn:
			return board.NoPiece, board.NoKind, fmt.Errorf("%s belongs to %s", in.From, p.Color.Name())
		case in.Type == notation.IntentCastle && p.Kind != board.King:
			return board.NoPiece, board.NoKind, fmt.Errorf("castling needs the king on %s", in.From)
		}
	} else {
		var matches []*board.Piece
		for _, candidate := range g.pos.Board.Pieces(board.Filter{Color: turn, Kind: in.Piece}) {
			if !candidate.Legal.Has(in.To) {
				continue
			}
			if in.FromFile >= 0 && candidate.Square.File() != in.FromFile {
				continue
			}
			if in.FromRank >= 0 && candidate.Square.Rank() != in.FromRank {
				continue
			}
			if in.Piece == board.Pawn && !in.Capture && candidate.Square.File() != in.To.File() {
				continue
			}
			matches = append(matches, candidate)
		}
		switch len(matches) {
		case 0:
			return board.NoPiece, board.NoKind, fmt.Errorf("no %s can move to %s", in.Piece, in.To)
		case 1:
			p = matches[0]
		default:
			return board.NoPiece, board.NoKind, fmt.Errorf("%d %ss can move to %s, name the origin", len(matches), in.Piece, in.To)
		}
	}

	if !p.Legal.Has(in.To) {
		if in.Type == notation.IntentCastle {
			return board.NoPiece, board.NoKind, fmt.Errorf("castling %s is not available", castleSide(in.Kingside))
		}
		return board.NoPiece, board.NoKind, fmt.Errorf("%s on %s cannot move to %s", p.Kind, p.Square, in.To)
	}

	if in.Capture && g.pos.Board.Empty(in.To) {
		if _, ok := rules.EnPassantVictim(g.pos, p.ID, in.To); !ok {
			return board.NoPiece, board.NoKind, fmt.Errorf("nothing to capture on %s", in.To)
		}
	}

	promoting := p.Kind == board.Pawn && in.To.Rank() == board.PromotionRank(turn)
	promotion := in.Promotion
	switch {
	case promotion != board.NoKind && !promoting:
		return board.NoPiece, board.NoKind, fmt.Errorf("%s on %s cannot promote on %s", p.Kind, p.Square, in.To)
	case promoting && promotion == board.NoKind:
		promotion = board.Queen
	}
	return p.ID, promotion, nil
}

func castleSide(kingside bool) string {
	if kingside {
		return "kingside"
	}
	return "queenside"
}

// apply mutates the position for a resolved legal move and runs evaluation
func (g *Game) apply(in notation.Intent, id board.PieceID, to board.Square, promotion board.Kind) Outcome {
	b := g.pos.Board
	p := b.Piece(id)
	from := p.Square
	mover := p.Color
	kind := p.Kind
	opponent := core.OppositeColor(mover)

	out := Outcome{Status: StatusApplied, Intent: in, From: from, To: to, Mover: mover}
	g.phase = PhaseMoveApplied

	if victim, ok := rules.EnPassantVictim(g.pos, id, to); ok {
		out.Captured = b.Piece(victim).Kind
		out.EnPassant = true
		b.Remove(victim)
	}
	if rookFrom, rookTo, ok := rules.CastleRookHop(g.pos, id, to); ok {
		rook := b.At(rookFrom)
		b.Relocate(rook.ID, rookTo)
		rook.HasMoved = true
		out.Castled = true
	}
	capturedOn := board.NoSquare
	if target := b.At(to); target != nil {
		out.Captured = target.Kind
		capturedOn = to
	}

	b.Relocate(id, to)
	p.HasMoved = true
	if out.Captured != board.NoKind {
		p.Taken = append(p.Taken, out.Captured)
	}

	if promotion != board.NoKind {
		taken := append([]board.Kind(nil), p.Taken...)
		b.Remove(id)
		promoted := b.Piece(b.Place(promotion, mover, to))
		promoted.HasMoved = true
		promoted.Taken = taken
		out.Promoted = promotion
	}

	if kind == board.King {
		g.pos.Castling.RevokeAll(mover)
	}
	if kind == board.Rook {
		for _, kingside := range []bool{true, false} {
			if from == board.RookHome(mover, kingside) {
				g.pos.Castling.Revoke(mover, kingside)
			}
		}
	}
	for _, kingside := range []bool{true, false} {
		if capturedOn == board.RookHome(opponent, kingside) {
			g.pos.Castling.Revoke(opponent, kingside)
		}
	}

	g.pos.EnPassant = board.NoEnPassant
	if kind == board.Pawn && (to.Rank()-from.Rank() == 2 || from.Rank()-to.Rank() == 2) {
		g.pos.EnPassant = board.EnPassant{Pawn: id, Target: board.SquareAt(from.File(), (from.Rank()+to.Rank())/2)}
	}

	if kind == board.Pawn || out.Captured != board.NoKind {
		g.pos.HalfMove = 0
	} else {
		g.pos.HalfMove++
	}
	if mover == core.ColorBlack {
		g.pos.FullMove++
	}
	g.pos.Turn = opponent

	out.Move = from.String() + to.String()
	if promotion != board.NoKind {
		out.Move += string(promotion.Letter() + 'a' - 'A')
	}

	fen := g.pos.FEN()
	if g.fenHistory[len(g.fenHistory)-1] != fen {
		g.fenHistory = append(g.fenHistory, fen)
	}
	g.snapshots = append(g.snapshots, Snapshot{
		FEN:          fen,
		PreviousMove: out.Move,
		NextTurn:     opponent,
		Captured:     out.Captured,
		History:      len(g.fenHistory),
	})

	g.refresh(mover)

	out.Check = g.analysis.Check()
	out.State = g.state
	out.Reason = g.reason
	out.Message = fmt.Sprintf("%s played %s", mover.Name(), out.Move)
	return out
}
