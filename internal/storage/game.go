package storage

import (
	"database/sql"
	"fmt"
)

// RecordNewGame queues the insert of a new game row
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueue("game", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, initial_fen,
			white_player_id, white_type, white_seed,
			black_player_id, black_type, black_seed,
			start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.InitialFEN,
			record.WhitePlayerID, record.WhiteType, record.WhiteSeed,
			record.BlackPlayerID, record.BlackType, record.BlackSeed,
			record.StartTimeUTC,
		)
		return err
	})
}

// UpdatePlayers queues a player configuration change
func (s *Store) UpdatePlayers(record GameRecord) {
	s.enqueue("players", func(tx *sql.Tx) error {
		query := `UPDATE games SET
			white_player_id = ?, white_type = ?, white_seed = ?,
			black_player_id = ?, black_type = ?, black_seed = ?
		WHERE game_id = ?`

		_, err := tx.Exec(query,
			record.WhitePlayerID, record.WhiteType, record.WhiteSeed,
			record.BlackPlayerID, record.BlackType, record.BlackSeed,
			record.GameID,
		)
		return err
	})
}

// RecordMove queues the insert of one half-move
func (s *Store) RecordMove(record MoveRecord) {
	s.enqueue("move", func(tx *sql.Tx) error {
		query := `INSERT INTO moves (
			game_id, move_number, move_text, fen_after_move, player_color, captured, move_time_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.MoveNumber, record.MoveText,
			record.FENAfterMove, record.PlayerColor, record.Captured, record.MoveTimeUTC,
		)
		return err
	})
}

// DeleteUndoneMoves queues removal of moves past afterMoveNumber. An undo
// also reopens the game, so any recorded result is cleared.
func (s *Store) DeleteUndoneMoves(gameID string, afterMoveNumber int) {
	s.enqueue("undo", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM moves WHERE game_id = ? AND move_number > ?`, gameID, afterMoveNumber); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE games SET result = 'ongoing', reason = NULL, final_fen = NULL, end_time_utc = NULL
			WHERE game_id = ?`, gameID)
		return err
	})
}

// RecordGameEnd queues the terminal result of a game
func (s *Store) RecordGameEnd(end GameEnd) {
	s.enqueue("end", func(tx *sql.Tx) error {
		query := `UPDATE games SET result = ?, reason = ?, final_fen = ?, end_time_utc = ?
		WHERE game_id = ?`

		_, err := tx.Exec(query, end.Result, end.Reason, end.FinalFEN, end.EndTimeUTC, end.GameID)
		return err
	})
}

// DeleteGame queues removal of a game and, by cascade, its moves
func (s *Store) DeleteGame(gameID string) {
	s.enqueue("delete", func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, gameID)
		return err
	})
}

// QueryGames retrieves games with optional filtering; "" and "*" match anything
func (s *Store) QueryGames(gameID, playerID string) ([]GameRecord, error) {
	query := `SELECT
		game_id, initial_fen,
		white_player_id, white_type, white_seed,
		black_player_id, black_type, black_seed,
		start_time_utc, result, reason, final_fen, end_time_utc
	FROM games WHERE 1=1`

	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	if playerID != "" && playerID != "*" {
		query += " AND (white_player_id = ? OR black_player_id = ?)"
		args = append(args, playerID, playerID)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		err := rows.Scan(
			&g.GameID, &g.InitialFEN,
			&g.WhitePlayerID, &g.WhiteType, &g.WhiteSeed,
			&g.BlackPlayerID, &g.BlackType, &g.BlackSeed,
			&g.StartTimeUTC, &g.Result, &g.Reason, &g.FinalFEN, &g.EndTimeUTC,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}

// QueryMoves returns a game's move log in play order
func (s *Store) QueryMoves(gameID string) ([]MoveRecord, error) {
	rows, err := s.db.Query(`SELECT
		move_id, game_id, move_number, move_text, fen_after_move, player_color, captured, move_time_utc
	FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.MoveID, &m.GameID, &m.MoveNumber, &m.MoveText,
			&m.FENAfterMove, &m.PlayerColor, &m.Captured, &m.MoveTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return moves, nil
}
