package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chess-rules/internal/board"
	"chess-rules/internal/cli"
	"chess-rules/internal/core"
	"chess-rules/internal/engine"
	"chess-rules/internal/game"
	"chess-rules/internal/notation"
	"chess-rules/internal/service"

	"github.com/rs/zerolog"
)

const computerMoveTimeout = 5 * time.Second

type CLIHandler struct {
	svc     *service.Service
	view    *cli.CLI
	log     zerolog.Logger
	gameID  string
	mode    notation.Mode
	engines map[string]*engine.Random
}

func New(svc *service.Service, view *cli.CLI, log zerolog.Logger) *CLIHandler {
	return &CLIHandler{
		svc:     svc,
		view:    view,
		log:     log.With().Str("component", "cli").Logger(),
		mode:    notation.ModeCoordinate,
		engines: make(map[string]*engine.Random),
	}
}

// Run reads commands until quit or end of input
func (h *CLIHandler) Run() error {
	for {
		cmd, err := h.view.GetCommand(h.getPrompt())
		if err != nil {
			return err
		}
		if !h.ProcessCommand(cmd) {
			return nil
		}
	}
}

// GameID returns the active game, empty when none
func (h *CLIHandler) GameID() string {
	return h.gameID
}

func (h *CLIHandler) Mode() notation.Mode {
	return h.mode
}

func (h *CLIHandler) getPrompt() string {
	prompt := "> "
	if h.gameID == "" {
		return prompt
	}
	h.svc.View(h.gameID, func(g *game.Game) error {
		if g.IsOver() {
			return nil
		}
		prompt = fmt.Sprintf("[%s]> ", g.NextTurn())
		if p := g.NextPlayer(); p != nil && p.Type == core.PlayerComputer {
			prompt = "ENTER to execute computer move\n" + prompt
		}
		return nil
	})
	return prompt
}

// ProcessCommand handles one command and returns false to exit
func (h *CLIHandler) ProcessCommand(cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:
		// An empty line plays for the computer when it is to move
		if h.gameID != "" && h.computerToMove() {
			h.executeComputerMove()
		}

	case cli.CmdNew:
		h.handleNewGame("")

	case cli.CmdResume:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: resume <FEN string>")
			return true
		}
		h.handleNewGame(strings.Join(cmd.Args, " "))

	case cli.CmdMove:
		h.handleMove(cmd.Args[0])

	case cli.CmdShow:
		if len(cmd.Args) != 1 {
			h.view.ShowMessage("Usage: show <square>")
			return true
		}
		h.handleShow(cmd.Args[0])

	case cli.CmdNotation:
		if len(cmd.Args) != 1 {
			h.view.ShowMessage(fmt.Sprintf("Notation: %s. Usage: notation <coordinate|algebraic>", h.mode))
			return true
		}
		mode, err := notation.ParseMode(cmd.Args[0])
		if err != nil {
			h.view.ShowError(err)
			return true
		}
		h.mode = mode
		h.view.ShowMessage(fmt.Sprintf("Notation set to: %s", mode))

	case cli.CmdUndo:
		h.handleUndo(cmd.Args)

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		theme := cli.ColorTheme(cmd.Args[0])
		if err := h.view.SetTheme(theme); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.view.ShowMessage(fmt.Sprintf("Color theme set to: %s", theme))
		h.displayBoard(0)

	case cli.CmdVerbose:
		verbose := h.view.ToggleVerbose()
		h.view.ShowMessage(fmt.Sprintf("Verbose mode: %t", verbose))

	case cli.CmdHistory:
		if h.gameID == "" {
			h.view.ShowMessage("No active game.")
			return true
		}
		h.svc.View(h.gameID, func(g *game.Game) error {
			h.view.ShowGameHistory(g)
			return nil
		})

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

func (h *CLIHandler) computerToMove() bool {
	computer := false
	h.svc.View(h.gameID, func(g *game.Game) error {
		p := g.NextPlayer()
		computer = !g.IsOver() && p != nil && p.Type == core.PlayerComputer
		return nil
	})
	return computer
}

func (h *CLIHandler) handleMove(text string) {
	if h.gameID == "" {
		h.view.ShowMessage("No active game. Use 'new' or 'resume <FEN>'.")
		return
	}

	out, err := h.svc.ApplyMove(h.gameID, core.PlayerHuman, h.mode, text)
	if errors.Is(err, service.ErrNotPlayersTurn) {
		h.view.ShowMessage("It's not a human player's turn. Press ENTER to execute computer move.")
		return
	}
	if err != nil {
		h.view.ShowError(err)
		return
	}

	switch out.Status {
	case game.StatusPreviewed:
		h.displayBoard(out.Highlights)
		h.view.ShowMessage(out.Message)
	case game.StatusApplied:
		h.view.ShowHumanMove(out)
		h.afterMove(out.Mover, out)
	default:
		h.view.ShowError(fmt.Errorf("%s: %s", out.Status, out.Message))
	}
}

func (h *CLIHandler) handleShow(coord string) {
	if h.gameID == "" {
		h.view.ShowMessage("No active game.")
		return
	}
	sq, ok := board.ParseSquare(strings.ToLower(coord))
	if !ok {
		h.view.ShowError(fmt.Errorf("invalid square: %s", coord))
		return
	}

	h.svc.View(h.gameID, func(g *game.Game) error {
		targets, ok := g.Preview(sq)
		if !ok {
			h.view.ShowMessage(fmt.Sprintf("No piece on %s", sq))
			return nil
		}
		h.view.DisplayBoard(g.Board(), targets)
		if targets.Empty() {
			h.view.ShowMessage(fmt.Sprintf("%s has no legal moves", sq))
		} else {
			h.view.ShowMessage(fmt.Sprintf("%s: %s", sq, strings.Join(targets.Strings(), " ")))
		}
		return nil
	})
}

func (h *CLIHandler) handleUndo(args []string) {
	if h.gameID == "" {
		h.view.ShowMessage("No active game.")
		return
	}

	count := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			h.view.ShowMessage("Invalid undo count. Usage: undo [count]")
			return
		}
		count = n
	}

	if err := h.svc.UndoMoves(h.gameID, count); err != nil {
		h.view.ShowError(err)
		return
	}
	if count == 1 {
		h.view.ShowMessage("Move undone")
	} else {
		h.view.ShowMessage(fmt.Sprintf("%d moves undone", count))
	}
	h.displayBoard(0)
}

func (h *CLIHandler) executeComputerMove() {
	fen, player, err := h.svc.BeginComputerMove(h.gameID)
	if err != nil {
		h.view.ShowError(err)
		return
	}

	eng, ok := h.engines[player.ID]
	if !ok {
		eng = engine.New(player.Seed)
		h.engines[player.ID] = eng
	}

	ctx, cancel := context.WithTimeout(context.Background(), computerMoveTimeout)
	defer cancel()

	result, err := eng.Search(ctx, game.New(fen, nil, nil))
	if err != nil {
		h.log.Error().Err(err).Str("game", h.gameID).Msg("computer move failed")
		h.svc.UpdateGameState(h.gameID, core.StateStuck)
		h.view.ShowError(fmt.Errorf("engine error: %v", err))
		return
	}

	out, err := h.svc.ApplyMove(h.gameID, core.PlayerComputer, notation.ModeCoordinate, result.BestMove)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	if out.Status != game.StatusApplied {
		h.view.ShowError(fmt.Errorf("computer move %s rejected: %s", result.BestMove, out.Message))
		return
	}

	mr := &game.MoveResult{
		Move:      out.Move,
		Player:    player.Color,
		GameState: out.State,
		Seed:      result.Seed,
		Choices:   result.Choices,
	}
	h.svc.SetLastMoveResult(h.gameID, mr)
	h.view.ShowComputerMove(mr)
	h.afterMove(player.Color, out)
}

func (h *CLIHandler) afterMove(mover core.Color, out game.Outcome) {
	h.displayBoard(0)
	switch {
	case out.State.IsOver():
		h.view.ShowGameOver(out.State, out.Reason)
	case out.Check:
		h.view.ShowCheck(core.OppositeColor(mover))
	}
}

func (h *CLIHandler) displayBoard(highlights board.SquareSet) {
	if h.gameID == "" {
		return
	}
	h.svc.View(h.gameID, func(g *game.Game) error {
		h.view.DisplayBoard(g.Board(), highlights)
		return nil
	})
}

func askPlayerType(view *cli.CLI, color core.Color) core.PlayerType {
	answer := strings.ToLower(view.ReadLine(fmt.Sprintf("Select %s player (h/c): ", color.Name())))
	if answer == "c" || answer == "computer" {
		return core.PlayerComputer
	}
	return core.PlayerHuman
}

// handleNewGame starts a game after asking for player types
func (h *CLIHandler) handleNewGame(fen string) {
	white := core.NewPlayer(core.PlayerConfig{Type: askPlayerType(h.view, core.ColorWhite)}, core.ColorWhite)
	black := core.NewPlayer(core.PlayerConfig{Type: askPlayerType(h.view, core.ColorBlack)}, core.ColorBlack)

	id := h.svc.GenerateGameID()
	notice, err := h.svc.CreateGame(id, white, black, fen)
	if err != nil {
		h.view.ShowError(fmt.Errorf("could not start the game: %v", err))
		return
	}

	// Drop the previous game from memory; its record stays in storage
	if h.gameID != "" {
		h.svc.DeleteGame(h.gameID)
	}
	h.gameID = id

	if notice != "" {
		h.view.ShowMessage("Notice: " + notice)
	}
	h.view.ShowMessage("Game started.")
	h.displayBoard(0)

	h.svc.View(id, func(g *game.Game) error {
		if g.IsOver() {
			h.view.ShowGameOver(g.State(), g.Reason())
		} else if g.InCheck() {
			h.view.ShowCheck(g.NextTurn())
		}
		return nil
	})
}
