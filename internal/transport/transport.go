package transport

import (
	"chess-rules/internal/board"
	"chess-rules/internal/core"
	"chess-rules/internal/game"
)

// View abstracts display/output operations of an interactive front end
type View interface {
	DisplayBoard(b *board.Board, highlights board.SquareSet)
	ShowMessage(msg string)
	ShowError(err error)
	ShowGameHistory(g *game.Game)
	ShowComputerMove(result *game.MoveResult)
	ShowHumanMove(out game.Outcome)
	ShowCheck(color core.Color)
	ShowGameOver(state core.State, reason core.Reason)
	ShowHelp()
	ReadLine(prompt string) string
}
