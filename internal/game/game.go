package game

import (
	"fmt"
	"time"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
	"chess-rules/internal/notation"
	"chess-rules/internal/rules"
)

type Phase int

const (
	PhaseAwaitingMove Phase = iota
	PhaseMoveApplied
	PhaseCheckEvaluation
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseMoveApplied:
		return "move applied"
	case PhaseCheckEvaluation:
		return "check evaluation"
	case PhaseEnded:
		return "ended"
	default:
		return "awaiting move"
	}
}

type Snapshot struct {
	FEN          string     // Board state at this point
	PreviousMove string     // Coordinate move that created this position (empty for initial)
	NextTurn     core.Color // Whose turn it is at this position
	Captured     board.Kind // Kind taken by PreviousMove
	History      int        // FEN history length at this point
}

// MoveResult tracks the outcome of a computer move
type MoveResult struct {
	Move      string
	Player    core.Color
	GameState core.State
	Seed      int64
	Choices   int // legal moves the computer chose from
}

type Game struct {
	pos        *board.Position
	analysis   *rules.Analysis
	snapshots  []Snapshot
	fenHistory []string
	players    map[core.Color]*core.Player
	state      core.State
	reason     core.Reason
	phase      Phase
	lastResult *MoveResult
	notice     string
	endedAt    time.Time
}

// New starts a game from fen. A malformed FEN, or one where the side not to
// move is in check, starts from the standard position and sets Notice.
func New(fen string, whitePlayer, blackPlayer *core.Player) *Game {
	if fen == "" {
		fen = board.StartingFEN
	}
	pos, ferr := board.LoadFEN(fen)
	notice := ""
	if ferr != nil {
		notice = ferr.Error()
	} else if rules.Attacked(pos, core.OppositeColor(pos.Turn)) {
		notice = fmt.Sprintf("invalid FEN position: %s to move while %s is in check", pos.Turn.Name(), core.OppositeColor(pos.Turn).Name())
		pos, _ = board.LoadFEN(board.StartingFEN)
	}

	start := pos.FEN()
	g := &Game{
		pos:        pos,
		fenHistory: []string{start},
		snapshots: []Snapshot{
			{
				FEN:      start,
				NextTurn: pos.Turn,
				History:  1,
			},
		},
		players: map[core.Color]*core.Player{
			core.ColorWhite: whitePlayer,
			core.ColorBlack: blackPlayer,
		},
		state:  core.StateOngoing,
		notice: notice,
	}
	g.refresh(core.OppositeColor(pos.Turn))
	return g
}

// refresh recomputes the analysis and ends the game when the position is terminal
func (g *Game) refresh(mover core.Color) {
	g.phase = PhaseCheckEvaluation
	g.analysis = rules.Analyze(g.pos)
	g.reason = rules.Evaluate(g.pos, g.analysis, g.fenHistory)
	if g.reason != core.ReasonNone {
		g.state = core.StateFor(g.reason, mover)
		g.phase = PhaseEnded
		g.endedAt = time.Now().UTC()
		return
	}
	if g.state.IsOver() {
		g.state = core.StateOngoing
	}
	g.phase = PhaseAwaitingMove
}

func (g *Game) SetLastResult(result *MoveResult) {
	g.lastResult = result
}

func (g *Game) LastResult() *MoveResult {
	return g.lastResult
}

func (g *Game) CurrentSnapshot() Snapshot {
	return g.snapshots[len(g.snapshots)-1]
}

func (g *Game) CurrentFEN() string {
	return g.CurrentSnapshot().FEN
}

func (g *Game) NextTurn() core.Color {
	return g.pos.Turn
}

func (g *Game) NextPlayer() *core.Player {
	return g.players[g.NextTurn()]
}

func (g *Game) Players() map[core.Color]*core.Player {
	return g.players
}

func (g *Game) SetPlayer(color core.Color, player *core.Player) {
	g.players[color] = player
}

// Board exposes the live board for display; callers must not mutate it
func (g *Game) Board() *board.Board {
	return g.pos.Board
}

// InCheck reports whether the side to move is in check
func (g *Game) InCheck() bool {
	return g.analysis.Check()
}

func (g *Game) Notice() string {
	return g.notice
}

func (g *Game) Phase() Phase {
	return g.phase
}

func (g *Game) State() core.State {
	return g.state
}

// SetState marks transient service states (pending, stuck); terminal states are owned by the game
func (g *Game) SetState(s core.State) {
	if g.state.IsOver() {
		return
	}
	g.state = s
}

func (g *Game) Reason() core.Reason {
	return g.reason
}

func (g *Game) IsOver() bool {
	return g.state.IsOver()
}

// UndoMoves rewinds count half-moves and reopens a finished game
func (g *Game) UndoMoves(count int) error {
	if count < 1 {
		return fmt.Errorf("invalid undo count: %d", count)
	}

	availableMoves := len(g.snapshots) - 1
	if availableMoves < count {
		return fmt.Errorf("cannot undo %d moves: only %d moves available", count, availableMoves)
	}

	target := g.snapshots[len(g.snapshots)-1-count]
	pos, err := board.ParseFEN(target.FEN)
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	g.snapshots = g.snapshots[:len(g.snapshots)-count]
	g.fenHistory = g.fenHistory[:target.History]
	g.pos = pos
	g.state = core.StateOngoing
	g.reason = core.ReasonNone
	g.lastResult = nil
	g.endedAt = time.Time{}
	g.refresh(core.OppositeColor(pos.Turn))
	return nil
}

// Moves returns the coordinate text of every half-move played
func (g *Game) Moves() []string {
	moves := []string{}
	for i := 1; i < len(g.snapshots); i++ {
		if g.snapshots[i].PreviousMove != "" {
			moves = append(moves, g.snapshots[i].PreviousMove)
		}
	}
	return moves
}

// MoveInfos pairs each half-move with its mover and any captured kind
func (g *Game) MoveInfos() []core.MoveInfo {
	infos := make([]core.MoveInfo, 0, len(g.snapshots)-1)
	for i := 1; i < len(g.snapshots); i++ {
		s := g.snapshots[i]
		info := core.MoveInfo{
			Move:        s.PreviousMove,
			PlayerColor: g.snapshots[i-1].NextTurn.String(),
		}
		if s.Captured != board.NoKind {
			info.Captured = s.Captured.String()
		}
		infos = append(infos, info)
	}
	return infos
}

// FENHistory lists distinct consecutive positions from the start
func (g *Game) FENHistory() []string {
	out := make([]string, len(g.fenHistory))
	copy(out, g.fenHistory)
	return out
}

func (g *Game) InitialFEN() string {
	if len(g.snapshots) > 0 {
		return g.snapshots[0].FEN
	}
	return board.StartingFEN
}

// Preview returns the legal destinations of the piece on sq
func (g *Game) Preview(sq board.Square) (board.SquareSet, bool) {
	p := g.pos.Board.At(sq)
	if p == nil {
		return 0, false
	}
	return g.analysis.LegalFor(p.ID), true
}

// LegalMoves lists the side to move's legal moves in coordinate notation,
// one entry per promotion choice
func (g *Game) LegalMoves() []string {
	if g.IsOver() {
		return nil
	}
	var out []string
	for _, m := range g.analysis.Moves(g.pos, g.pos.Turn) {
		p := g.pos.Board.At(m.From)
		if p.Kind == board.Pawn && m.To.Rank() == board.PromotionRank(p.Color) {
			for _, kind := range []board.Kind{board.Queen, board.Rook, board.Bishop, board.Knight} {
				out = append(out, m.String()+string(kind.Letter()+'a'-'A'))
			}
			continue
		}
		out = append(out, m.String())
	}
	return out
}

// Play parses text in mode for the side to move and applies it
func (g *Game) Play(mode notation.Mode, text string) Outcome {
	return g.Apply(notation.Parse(mode, text, g.pos.Turn))
}

// Summary describes the session for persistence
func (g *Game) Summary(gameID string) core.SessionSummary {
	return core.SessionSummary{
		GameID:     gameID,
		InitialFEN: g.InitialFEN(),
		FinalFEN:   g.pos.FEN(),
		Result:     g.state.String(),
		Reason:     g.reason.String(),
		Moves:      g.Moves(),
		FENHistory: g.FENHistory(),
		EndTimeUTC: g.endedAt,
	}
}
