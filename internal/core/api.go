package core

import "time"

// Request types

type CreateGameRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
	FEN   string       `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type ConfigurePlayersRequest struct {
	White PlayerConfig `json:"white" validate:"required"`
	Black PlayerConfig `json:"black" validate:"required"`
}

type MoveRequest struct {
	Move     string `json:"move" validate:"required,min=2,max=12"` // "cccc" for computer move
	Notation string `json:"notation,omitempty" validate:"omitempty,oneof=coordinate algebraic"`
}

type UndoRequest struct {
	Count int `json:"count" validate:"required,min=1,max=300"` // Max based on longest games in history (272), theoretical max 5949
}

// Response types

type GameResponse struct {
	GameID   string          `json:"gameId"`
	FEN      string          `json:"fen"`
	Turn     string          `json:"turn"`  // "w" or "b"
	State    string          `json:"state"` // "ongoing", "white wins", etc
	Reason   string          `json:"reason,omitempty"`
	InCheck  bool            `json:"inCheck"`
	Moves    []string        `json:"moves"`
	Players  PlayersResponse `json:"players"`
	LastMove *MoveInfo       `json:"lastMove,omitempty"`
	Notice   string          `json:"notice,omitempty"` // FEN fallback notice
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
	Captured    string `json:"captured,omitempty"`
}

type BoardResponse struct {
	FEN        string   `json:"fen"`
	Board      string   `json:"board"` // ASCII representation
	Highlights []string `json:"highlights,omitempty"`
}

type PreviewResponse struct {
	Square  string   `json:"square"`
	Targets []string `json:"targets"`
	Board   string   `json:"board"`
}

type HistoryResponse struct {
	GameID     string          `json:"gameId"`
	Moves      []string        `json:"moves"`
	FENHistory []string        `json:"fenHistory"`
	Summary    *SessionSummary `json:"summary,omitempty"`
}

// SessionSummary is the completed-session record handed to persistence
type SessionSummary struct {
	GameID     string    `json:"gameId"`
	InitialFEN string    `json:"initialFen"`
	FinalFEN   string    `json:"finalFen"`
	Result     string    `json:"result"`
	Reason     string    `json:"reason"`
	Moves      []string  `json:"moves"`
	FENHistory []string  `json:"fenHistory"`
	EndTimeUTC time.Time `json:"endTimeUtc"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
