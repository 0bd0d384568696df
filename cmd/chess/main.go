package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"chess-rules/internal/cli"
	"chess-rules/internal/service"
	"chess-rules/internal/storage"
	clitransport "chess-rules/internal/transport/cli"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

func main() {
	var (
		storagePath = flag.String("storage-path", "", "Path to SQLite database file to record games (disabled if empty)")
		debug       = flag.Bool("debug", false, "Log debug output to stderr")
	)
	flag.Parse()

	level := zerolog.WarnLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	var store *storage.Store
	if *storagePath != "" {
		var err error
		store, err = storage.NewStore(*storagePath, false, log)
		if err != nil {
			fmt.Printf("Failed to open storage: %v\n", err)
			os.Exit(1)
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			fmt.Printf("Failed to initialize schema: %v\n", err)
			os.Exit(1)
		}
	}

	svc := service.New(store, nil, log)
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	input, closeInput := lineReader()
	defer closeInput()

	view := cli.New(input, os.Stdout, cli.DefaultTheme(int(os.Stdout.Fd())))
	handler := clitransport.New(svc, view, log)

	view.ShowWelcome()
	if err := handler.Run(); err != nil && err != readline.ErrInterrupt {
		log.Error().Err(err).Msg("input failed")
	}
}

// lineReader uses readline on a terminal and a plain scanner for piped input
func lineReader() (cli.LineReader, func()) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return cli.NewScannerReader(os.Stdin, os.Stdout), func() {}
	}

	historyFile := ".chess_history"
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, historyFile)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return cli.NewScannerReader(os.Stdin, os.Stdout), func() {}
	}
	return rl, func() { rl.Close() }
}
