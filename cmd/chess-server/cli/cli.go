package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"chess-rules/internal/archive"
	"chess-rules/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Run is the entry point for the database admin commands
func Run(args []string) error {
	return run(args, os.Stdout)
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, archive")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:], out)
	case "delete":
		return runDelete(args[1:], out)
	case "query":
		return runQuery(args[1:], out)
	case "archive":
		return runArchive(args[1:], out)
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func openStore(path string) (*storage.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	store, err := storage.NewStore(path, false, zerolog.Nop())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Fprintf(out, "Database initialized at: %s\n", *path)
	return nil
}

// runDelete removes one game with -gameId, otherwise the whole database
func runDelete(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Delete a single game and its moves (optional)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}

	if *gameID == "" {
		if err := store.DeleteDB(); err != nil {
			return fmt.Errorf("failed to delete database: %w", err)
		}
		fmt.Fprintf(out, "Database deleted: %s\n", *path)
		return nil
	}
	defer store.Close()

	if _, err := uuid.Parse(*gameID); err != nil {
		return fmt.Errorf("invalid game ID %q: %w", *gameID, err)
	}

	store.DeleteGame(*gameID)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Flush(ctx); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	fmt.Fprintf(out, "Game deleted: %s\n", *gameID)
	return nil
}

func runQuery(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	gameID := fs.String("gameId", "", "Game ID to filter (optional, * for all)")
	playerID := fs.String("playerId", "", "Player ID to filter (optional, * for all)")
	moves := fs.Bool("moves", false, "Print the move log of each game")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	games, err := store.QueryGames(*gameID, *playerID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(games) == 0 {
		fmt.Fprintln(out, "No games found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tWhite Player\tBlack Player\tResult\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, g := range games {
		result := g.Result
		if g.Reason.Valid && g.Reason.String != "" {
			result += " (" + g.Reason.String + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			short(g.GameID)+"...",
			fmt.Sprintf("%s (T%d)", short(g.WhitePlayerID), g.WhiteType),
			fmt.Sprintf("%s (T%d)", short(g.BlackPlayerID), g.BlackType),
			result,
			g.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	if *moves {
		for _, g := range games {
			log, err := store.QueryMoves(g.GameID)
			if err != nil {
				return fmt.Errorf("query moves: %w", err)
			}
			fmt.Fprintf(out, "\n%s  %s\n", g.GameID, g.InitialFEN)
			for _, m := range log {
				line := fmt.Sprintf("  %3d %s %-6s", m.MoveNumber, m.PlayerColor, m.MoveText)
				if m.Captured != "" {
					line += " x" + m.Captured
				}
				fmt.Fprintln(out, line)
			}
		}
	}

	fmt.Fprintf(out, "\nFound %d game(s)\n", len(games))
	return nil
}

// runArchive lists completed sessions, or prints one in full with -gameId
func runArchive(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	path := fs.String("path", "", "Archive directory (required)")
	gameID := fs.String("gameId", "", "Show one session (optional)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("archive path required")
	}

	arch, err := archive.Open(*path, zerolog.Nop())
	if err != nil {
		return err
	}
	defer arch.Close()

	if *gameID != "" {
		s, err := arch.Load(*gameID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Game:    %s\nResult:  %s (%s)\nEnded:   %s\nStart:   %s\nFinal:   %s\nMoves:   %s\n",
			s.GameID, s.Result, s.Reason, s.EndTimeUTC.Format(time.RFC3339),
			s.InitialFEN, s.FinalFEN, strings.Join(s.Moves, " "))
		return nil
	}

	sessions, err := arch.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No archived sessions")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Game ID\tResult\tReason\tMoves\tEnded")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			s.GameID, s.Result, s.Reason, len(s.Moves), s.EndTimeUTC.Format("2006-01-02 15:04:05"))
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d session(s)\n", len(sessions))
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
