package storage

import (
	"database/sql"
	"time"
)

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID        string         `db:"game_id"`
	InitialFEN    string         `db:"initial_fen"`
	WhitePlayerID string         `db:"white_player_id"`
	WhiteType     int            `db:"white_type"`
	WhiteSeed     int64          `db:"white_seed"`
	BlackPlayerID string         `db:"black_player_id"`
	BlackType     int            `db:"black_type"`
	BlackSeed     int64          `db:"black_seed"`
	StartTimeUTC  time.Time      `db:"start_time_utc"`
	Result        string         `db:"result"` // "ongoing" until the game ends
	Reason        sql.NullString `db:"reason"`
	FinalFEN      sql.NullString `db:"final_fen"`
	EndTimeUTC    sql.NullTime   `db:"end_time_utc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID       int64     `db:"move_id"`
	GameID       string    `db:"game_id"`
	MoveNumber   int       `db:"move_number"` // half-move index, 1-based
	MoveText     string    `db:"move_text"`   // coordinate notation
	FENAfterMove string    `db:"fen_after_move"`
	PlayerColor  string    `db:"player_color"` // "w" or "b"
	Captured     string    `db:"captured"`
	MoveTimeUTC  time.Time `db:"move_time_utc"`
}

// GameEnd is the terminal information written once a game finishes
type GameEnd struct {
	GameID     string
	Result     string
	Reason     string
	FinalFEN   string
	EndTimeUTC time.Time
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	white_player_id TEXT NOT NULL,
	white_type INTEGER NOT NULL,
	white_seed INTEGER NOT NULL DEFAULT 0,
	black_player_id TEXT NOT NULL,
	black_type INTEGER NOT NULL,
	black_seed INTEGER NOT NULL DEFAULT 0,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	result TEXT NOT NULL DEFAULT 'ongoing',
	reason TEXT,
	final_fen TEXT,
	end_time_utc DATETIME
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	move_number INTEGER NOT NULL,
	move_text TEXT NOT NULL,
	fen_after_move TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	captured TEXT NOT NULL DEFAULT '',
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, move_number)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
CREATE INDEX IF NOT EXISTS idx_games_white_player ON games(white_player_id);
CREATE INDEX IF NOT EXISTS idx_games_black_player ON games(black_player_id);
CREATE INDEX IF NOT EXISTS idx_games_result ON games(result);
`
