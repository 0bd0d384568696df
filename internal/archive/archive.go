// Package archive keeps completed session summaries in an embedded Badger store
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"chess-rules/internal/core"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const keyPrefix = "session/"

var ErrNotFound = errors.New("session not archived")

type Archive struct {
	db  *badger.DB
	log zerolog.Logger
}

// Open opens the archive at dir, or an in-memory archive when dir is empty
func Open(dir string, log zerolog.Logger) (*Archive, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	return &Archive{
		db:  db,
		log: log.With().Str("component", "archive").Logger(),
	}, nil
}

func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func key(gameID string) []byte {
	return []byte(keyPrefix + gameID)
}

// Save stores a summary, replacing any earlier one for the same game
func (a *Archive) Save(summary core.SessionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(summary.GameID), data)
	})
	if err != nil {
		return fmt.Errorf("archive %s: %w", summary.GameID, err)
	}

	a.log.Debug().Str("game", summary.GameID).Str("result", summary.Result).Msg("session archived")
	return nil
}

// Load returns the archived summary for gameID or ErrNotFound
func (a *Archive) Load(gameID string) (core.SessionSummary, error) {
	var summary core.SessionSummary

	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(gameID))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &summary)
		})
	})

	return summary, err
}

// List returns every archived summary, most recently ended first
func (a *Archive) List() ([]core.SessionSummary, error) {
	var sessions []core.SessionSummary

	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var summary core.SessionSummary
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &summary)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			sessions = append(sessions, summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].EndTimeUTC.After(sessions[j].EndTimeUTC)
	})
	return sessions, nil
}

// Delete removes a summary; deleting a missing one is not an error
func (a *Archive) Delete(gameID string) error {
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(gameID))
	})
}
