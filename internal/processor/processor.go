package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"chess-rules/internal/archive"
	"chess-rules/internal/board"
	"chess-rules/internal/core"
	"chess-rules/internal/engine"
	"chess-rules/internal/game"
	"chess-rules/internal/notation"
	"chess-rules/internal/service"

	"github.com/rs/zerolog"
)

// ComputerMove is the move text that asks the computer to play
const ComputerMove = "cccc"

// Processor handles command execution and coordinates between the service and engine layers
type Processor struct {
	svc     *service.Service
	queue   *EngineQueue
	log     zerolog.Logger
	mu      sync.Mutex
	engines map[string]*engine.Random // player ID → engine, so seeded players replay
}

// New creates a processor with a pool of engine workers
func New(svc *service.Service, workers int, log zerolog.Logger) *Processor {
	log = log.With().Str("component", "processor").Logger()
	return &Processor{
		svc:     svc,
		queue:   NewEngineQueue(workers, log),
		log:     log,
		engines: make(map[string]*engine.Random),
	}
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdCreateGame:
		return p.handleCreateGame(cmd)
	case CmdConfigurePlayers:
		return p.handleConfigurePlayers(cmd)
	case CmdGetGame:
		return p.handleGetGame(ctx, cmd)
	case CmdMakeMove:
		return p.handleMakeMove(cmd)
	case CmdUndoMove:
		return p.handleUndoMove(cmd)
	case CmdDeleteGame:
		return p.handleDeleteGame(cmd)
	case CmdGetBoard:
		return p.handleGetBoard(cmd)
	case CmdPreview:
		return p.handlePreview(cmd)
	case CmdGetHistory:
		return p.handleGetHistory(cmd)
	case CmdGetArchive:
		return p.handleGetArchive(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrInvalidRequest)
	}
}

// hasControl reports control characters other than plain spaces
func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) && r != ' ' {
			return true
		}
	}
	return false
}

func (p *Processor) handleCreateGame(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.CreateGameRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	// Malformed FENs fall back to the start position; control characters never reach the parser
	fen := strings.TrimSpace(args.FEN)
	if hasControl(fen) {
		return p.errorResponse("invalid characters in FEN", core.ErrInvalidFEN)
	}

	gameID := p.svc.GenerateGameID()
	whitePlayer := core.NewPlayer(args.White, core.ColorWhite)
	blackPlayer := core.NewPlayer(args.Black, core.ColorBlack)

	notice, err := p.svc.CreateGame(gameID, whitePlayer, blackPlayer, fen)
	if err != nil {
		return p.errorResponse(fmt.Sprintf("failed to create game: %v", err), core.ErrInternalError)
	}

	return p.gameResponse(gameID, notice, false)
}

func (p *Processor) handleConfigurePlayers(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ConfigurePlayersRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	whitePlayer := core.NewPlayer(args.White, core.ColorWhite)
	blackPlayer := core.NewPlayer(args.Black, core.ColorBlack)

	if err := p.svc.UpdatePlayers(cmd.GameID, whitePlayer, blackPlayer); err != nil {
		return p.serviceError(err)
	}

	return p.gameResponse(cmd.GameID, "", false)
}

// handleGetGame returns game state, optionally long-polling for a change
func (p *Processor) handleGetGame(ctx context.Context, cmd Command) ProcessorResponse {
	if wait, ok := cmd.Args.(WaitArgs); ok && wait.Wait {
		changed, err := p.svc.WaitForChange(ctx, cmd.GameID, wait.MoveCount)
		if err != nil {
			return p.serviceError(err)
		}
		<-changed
	}

	return p.gameResponse(cmd.GameID, "", false)
}

// handleMakeMove plays a human move, or starts a computer move for "cccc"
func (p *Processor) handleMakeMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.MoveRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrInvalidRequest)
	}

	text := strings.TrimSpace(args.Move)
	if hasControl(text) {
		return p.errorResponse("invalid characters in move", core.ErrInvalidNotation)
	}

	if strings.ToLower(text) == ComputerMove {
		return p.startComputerMove(cmd.GameID)
	}

	mode, err := notation.ParseMode(args.Notation)
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}

	out, err := p.svc.ApplyMove(cmd.GameID, core.PlayerHuman, mode, text)
	if err != nil {
		return p.serviceError(err)
	}

	switch out.Status {
	case game.StatusApplied:
		return p.gameResponse(cmd.GameID, "", false)
	case game.StatusPreviewed:
		return p.previewResponse(cmd.GameID, out.From, out.Highlights)
	case game.StatusInvalidNotation:
		return p.errorResponse(out.Message, core.ErrInvalidNotation)
	case game.StatusGameOver:
		return p.errorResponse(out.Message, core.ErrGameOver)
	default:
		return p.errorResponse(out.Message, core.ErrIllegalMove)
	}
}

func (p *Processor) startComputerMove(gameID string) ProcessorResponse {
	fen, player, err := p.svc.BeginComputerMove(gameID)
	if err != nil {
		return p.serviceError(err)
	}

	eng := p.engineFor(player)
	err = p.queue.SubmitAsync(gameID, fen, player, eng, func(result EngineResult) {
		p.finishComputerMove(player, result)
	})
	if err != nil {
		p.log.Error().Err(err).Str("game", gameID).Msg("engine queue rejected task")
		p.svc.UpdateGameState(gameID, core.StateOngoing)
		return p.errorResponse(err.Error(), core.ErrResourceLimit)
	}

	return p.gameResponse(gameID, "", true)
}

func (p *Processor) finishComputerMove(player *core.Player, result EngineResult) {
	if result.Error != nil {
		p.log.Error().Err(result.Error).Str("game", result.GameID).Msg("computer move failed")
		// The game may have been deleted meanwhile
		p.svc.UpdateGameState(result.GameID, core.StateStuck)
		return
	}

	out, err := p.svc.ApplyMove(result.GameID, core.PlayerComputer, notation.ModeCoordinate, result.Move)
	if err != nil {
		p.log.Warn().Err(err).Str("game", result.GameID).Msg("computer move dropped")
		return
	}
	if out.Status != game.StatusApplied {
		return
	}

	p.svc.SetLastMoveResult(result.GameID, &game.MoveResult{
		Move:      out.Move,
		Player:    player.Color,
		GameState: out.State,
		Seed:      result.Seed,
		Choices:   result.Choices,
	})
}

// engineFor returns the engine bound to a computer player
func (p *Processor) engineFor(player *core.Player) *engine.Random {
	p.mu.Lock()
	defer p.mu.Unlock()

	eng, ok := p.engines[player.ID]
	if !ok {
		eng = engine.New(player.Seed)
		p.engines[player.ID] = eng
	}
	return eng
}

func (p *Processor) handleUndoMove(cmd Command) ProcessorResponse {
	args := core.UndoRequest{Count: 1}
	if req, ok := cmd.Args.(core.UndoRequest); ok && req.Count > 0 {
		args = req
	}

	if err := p.svc.UndoMoves(cmd.GameID, args.Count); err != nil {
		return p.serviceError(err)
	}

	return p.gameResponse(cmd.GameID, "", false)
}

func (p *Processor) handleDeleteGame(cmd Command) ProcessorResponse {
	if err := p.svc.DeleteGame(cmd.GameID); err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
	}
}

func (p *Processor) handleGetBoard(cmd Command) ProcessorResponse {
	var resp core.BoardResponse
	err := p.svc.View(cmd.GameID, func(g *game.Game) error {
		resp = core.BoardResponse{
			FEN:   g.CurrentFEN(),
			Board: g.Board().ToASCII(0),
		}
		return nil
	})
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handlePreview(cmd Command) ProcessorResponse {
	coord, _ := cmd.Args.(string)
	sq, ok := board.ParseSquare(strings.ToLower(coord))
	if !ok {
		return p.errorResponse(fmt.Sprintf("%q is not a square", coord), core.ErrInvalidNotation)
	}

	var (
		targets board.SquareSet
		found   bool
	)
	err := p.svc.View(cmd.GameID, func(g *game.Game) error {
		targets, found = g.Preview(sq)
		return nil
	})
	if err != nil {
		return p.serviceError(err)
	}
	if !found {
		return p.errorResponse(fmt.Sprintf("no piece on %s", sq), core.ErrIllegalMove)
	}

	return p.previewResponse(cmd.GameID, sq, targets)
}

func (p *Processor) previewResponse(gameID string, sq board.Square, targets board.SquareSet) ProcessorResponse {
	resp := core.PreviewResponse{
		Square:  sq.String(),
		Targets: targets.Strings(),
	}
	err := p.svc.View(gameID, func(g *game.Game) error {
		resp.Board = g.Board().ToASCII(targets)
		return nil
	})
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handleGetHistory(cmd Command) ProcessorResponse {
	var resp core.HistoryResponse
	err := p.svc.View(cmd.GameID, func(g *game.Game) error {
		resp = core.HistoryResponse{
			GameID:     cmd.GameID,
			Moves:      g.Moves(),
			FENHistory: g.FENHistory(),
		}
		if g.IsOver() {
			summary := g.Summary(cmd.GameID)
			resp.Summary = &summary
		}
		return nil
	})
	if err != nil {
		return p.serviceError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    resp,
	}
}

func (p *Processor) handleGetArchive(cmd Command) ProcessorResponse {
	summary, err := p.svc.Archived(cmd.GameID)
	switch {
	case errors.Is(err, archive.ErrNotFound), errors.Is(err, service.ErrArchiveDisabled):
		return p.errorResponse(err.Error(), core.ErrNotArchived)
	case err != nil:
		return p.errorResponse(err.Error(), core.ErrInternalError)
	}

	return ProcessorResponse{
		Success: true,
		Data:    summary,
	}
}

// gameResponse snapshots a game into the standard response
func (p *Processor) gameResponse(gameID, notice string, pending bool) ProcessorResponse {
	var resp core.GameResponse
	err := p.svc.View(gameID, func(g *game.Game) error {
		resp = buildGameResponse(gameID, g)
		return nil
	})
	if err != nil {
		return p.serviceError(err)
	}
	resp.Notice = notice

	return ProcessorResponse{
		Success: true,
		Pending: pending,
		Data:    resp,
	}
}

func buildGameResponse(gameID string, g *game.Game) core.GameResponse {
	players := g.Players()
	resp := core.GameResponse{
		GameID:  gameID,
		FEN:     g.CurrentFEN(),
		Turn:    g.NextTurn().String(),
		State:   g.State().String(),
		Reason:  g.Reason().String(),
		InCheck: g.InCheck(),
		Moves:   g.Moves(),
		Players: core.PlayersResponse{
			White: players[core.ColorWhite],
			Black: players[core.ColorBlack],
		},
	}

	if infos := g.MoveInfos(); len(infos) > 0 {
		last := infos[len(infos)-1]
		resp.LastMove = &last
	}

	return resp
}

// serviceError maps service errors onto API error codes
func (p *Processor) serviceError(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return p.errorResponse("game not found", core.ErrGameNotFound)
	case errors.Is(err, service.ErrNotPlayersTurn):
		return p.errorResponse(err.Error(), core.ErrNotHumanTurn)
	case errors.Is(err, service.ErrGameStuck), errors.Is(err, service.ErrGameOver):
		return p.errorResponse(err.Error(), core.ErrGameOver)
	case errors.Is(err, service.ErrMoveInProgress):
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	default:
		return p.errorResponse(err.Error(), core.ErrInvalidRequest)
	}
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

// Close stops the engine workers
func (p *Processor) Close() error {
	return p.queue.Shutdown(5 * time.Second)
}

// StorageHealth reports the move log status: ok, degraded or disabled
func (p *Processor) StorageHealth() string {
	return p.svc.GetStorageHealth()
}

func (p *Processor) ComputerGames() int {
	return p.svc.ComputerGames()
}
