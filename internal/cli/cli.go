package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"chess-rules/internal/board"
	"chess-rules/internal/core"
	"chess-rules/internal/game"
	"chess-rules/internal/transport"

	"golang.org/x/term"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdResume
	CmdMove
	CmdShow
	CmdNotation
	CmdUndo
	CmdColor
	CmdVerbose
	CmdHistory
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
}

// LineReader is satisfied by *readline.Instance
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// scannerReader reads lines from a plain stream when no terminal is attached
type scannerReader struct {
	scanner *bufio.Scanner
	output  io.Writer
	prompt  string
}

// NewScannerReader wraps r as a LineReader that echoes prompts to w
func NewScannerReader(r io.Reader, w io.Writer) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(r), output: w}
}

func (s *scannerReader) SetPrompt(prompt string) {
	s.prompt = prompt
}

func (s *scannerReader) Readline() (string, error) {
	fmt.Fprint(s.output, s.prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg string
	darkBg  string
	markBg  string // highlighted target squares
	white   string
	black   string
	reset   string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg: "\033[48;5;230m", // Beige
		darkBg:  "\033[48;5;94m",  // Brown
		markBg:  "\033[48;5;214m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGreen: {
		lightBg: "\033[48;5;157m", // Light green
		darkBg:  "\033[48;5;22m",  // Dark green
		markBg:  "\033[48;5;220m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
	ThemeGray: {
		lightBg: "\033[48;5;251m", // Light gray
		darkBg:  "\033[48;5;240m", // Dark gray
		markBg:  "\033[48;5;75m",
		white:   "\033[97m",
		black:   "\033[30m",
		reset:   "\033[0m",
	},
}

// DefaultTheme picks a coloured board for terminals and plain text otherwise
func DefaultTheme(fd int) ColorTheme {
	if term.IsTerminal(fd) {
		return ThemeBrown
	}
	return ThemeOff
}

type CLI struct {
	input   LineReader
	output  io.Writer
	theme   ColorTheme
	verbose bool
}

func New(input LineReader, output io.Writer, theme ColorTheme) *CLI {
	if _, ok := themes[theme]; !ok {
		theme = ThemeOff
	}
	return &CLI{
		input:  input,
		output: output,
		theme:  theme,
	}
}

// GetCommand shows prompt and reads one command. End of input reads as quit.
func (c *CLI) GetCommand(prompt string) (*Command, error) {
	c.input.SetPrompt(prompt)
	line, err := c.input.Readline()
	if err == io.EOF {
		return &Command{Type: CmdQuit}, nil
	}
	if err != nil {
		return nil, err
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return &Command{Type: CmdNone}, nil
	}

	return ParseCommand(input), nil
}

// ParseCommand maps a line to a command; anything unrecognised is a move
func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := parts[0]
	args := parts[1:]

	switch strings.ToLower(cmd) {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "resume":
		return &Command{Type: CmdResume, Args: args, Raw: input}
	case "show":
		return &Command{Type: CmdShow, Args: args}
	case "notation":
		return &Command{Type: CmdNotation, Args: args}
	case "undo":
		return &Command{Type: CmdUndo, Args: args}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "verbose":
		return &Command{Type: CmdVerbose}
	case "history":
		return &Command{Type: CmdHistory}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	default:
		// moves may contain spaces in coordinate notation ("e2 e4")
		return &Command{Type: CmdMove, Args: []string{input}, Raw: input}
	}
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ToggleVerbose() bool {
	c.verbose = !c.verbose
	return c.verbose
}

func (c *CLI) IsVerbose() bool {
	return c.verbose
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

// ReadLine prompts for a single answer; end of input reads as empty
func (c *CLI) ReadLine(prompt string) string {
	c.input.SetPrompt(prompt)
	line, err := c.input.Readline()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// DisplayBoard draws the board with highlights marking preview targets
func (c *CLI) DisplayBoard(b *board.Board, highlights board.SquareSet) {
	if c.theme == ThemeOff {
		c.ShowMessage("\n" + b.ToASCII(highlights))
		return
	}

	theme := themes[c.theme]
	var sb strings.Builder

	sb.WriteString("\n  a b c d e f g h\n")
	for rank := 7; rank >= 0; rank-- {
		sb.WriteString(fmt.Sprintf("%d ", rank+1))
		for file := 0; file < 8; file++ {
			sq := board.SquareAt(file, rank)

			bg := theme.darkBg
			if sq.Light() {
				bg = theme.lightBg
			}
			if highlights.Has(sq) {
				bg = theme.markBg
			}

			p := b.At(sq)
			if p == nil {
				sb.WriteString(fmt.Sprintf("%s  %s", bg, theme.reset))
				continue
			}
			fg := theme.black
			if p.Color == core.ColorWhite {
				fg = theme.white
			}
			sb.WriteString(fmt.Sprintf("%s%s%c %s", bg, fg, p.Letter(), theme.reset))
		}
		sb.WriteString(fmt.Sprintf(" %d\n", rank+1))
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new              - Start a new game with player type selection
  resume <FEN>     - Resume from a specific board position
  <move>           - Make a move (e.g. e2e4, e7e8q, or Nf3 in algebraic mode)
  show <square>    - Highlight the legal moves of the piece on a square
  notation <mode>  - Switch move notation (coordinate|algebraic)
  undo [count]     - Undo last move(s), default 1
  color <theme>    - Set board color theme (off|brown|green|gray)
  verbose          - Toggle detailed move information
  history          - Show game move history and positions
  quit/exit        - Exit the program
  help/?           - Show this help message

During any game:
  Press ENTER      - Execute computer move (when it's computer's turn)`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome() {
	c.ShowMessage("Welcome to Chess!")
	c.ShowMessage("Commands: new, resume <FEN>, <move>, show, notation, undo, quit/exit, verbose, history, help/?")
	c.ShowMessage("Example: 'resume 4k3/8/8/8/8/8/8/4K2R w K - 0 1' to start from a puzzle.")
	c.ShowMessage("Press ENTER to execute computer moves when it's computer's turn.")
	c.ShowMessage("")
}

func (c *CLI) ShowGameHistory(g *game.Game) {
	c.ShowMessage(fmt.Sprintf("Starting FEN: %s", g.InitialFEN()))

	moves := g.Moves()
	for i := 0; i < len(moves); i += 2 {
		moveNum := i/2 + 1
		white := moves[i]
		if i+1 < len(moves) {
			c.ShowMessage(fmt.Sprintf("%d. %s | %s", moveNum, white, moves[i+1]))
		} else {
			c.ShowMessage(fmt.Sprintf("%d. %s | ...", moveNum, white))
		}
	}
	if c.verbose {
		for i, fen := range g.FENHistory() {
			c.ShowMessage(fmt.Sprintf("  %3d %s", i, fen))
		}
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", g.CurrentFEN()))
	c.ShowMessage(fmt.Sprintf("Game state: %s", g.State()))
}

func (c *CLI) ShowComputerMove(result *game.MoveResult) {
	if c.verbose {
		c.ShowMessage(fmt.Sprintf("Computer (%s): %s (chosen from %d, seed=%d)",
			result.Player.Name(), result.Move, result.Choices, result.Seed))
	} else {
		c.ShowMessage(fmt.Sprintf("Computer (%s): %s", result.Player.Name(), result.Move))
	}
}

func (c *CLI) ShowHumanMove(out game.Outcome) {
	if !c.verbose {
		return
	}
	msg := fmt.Sprintf("Your move: %s", out.Move)
	switch {
	case out.Castled:
		msg += " (castle)"
	case out.EnPassant:
		msg += " (en passant)"
	case out.Promoted != board.NoKind:
		msg += fmt.Sprintf(" (promotes to %s)", out.Promoted)
	case out.Captured != board.NoKind:
		msg += fmt.Sprintf(" (takes %s)", out.Captured)
	}
	c.ShowMessage(msg)
}

func (c *CLI) ShowCheck(color core.Color) {
	c.ShowMessage(fmt.Sprintf("%s is in check", color.Name()))
}

func (c *CLI) ShowGameOver(state core.State, reason core.Reason) {
	if reason != core.ReasonNone {
		c.ShowMessage(fmt.Sprintf("\nGame Over: %s by %s", state, reason))
	} else {
		c.ShowMessage(fmt.Sprintf("\nGame Over: %s", state))
	}
	c.ShowMessage("Start a new game with 'new' or 'resume', or 'undo' to take back moves.")
}

var _ transport.View = (*CLI)(nil)
