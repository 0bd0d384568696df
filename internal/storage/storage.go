package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const (
	writeQueueSize = 1000
	drainTimeout   = 2 * time.Second
)

// Store persists games and their move log in SQLite. Writes are queued to a
// single writer goroutine; reads go straight to the pool.
type Store struct {
	db           *sql.DB
	path         string
	log          zerolog.Logger
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	closeOnce    sync.Once
	closeErr     error
}

// NewStore opens the database and starts the async writer
func NewStore(dataSourceName string, devMode bool, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", withForeignKeys(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets the dev server read while the writer commits
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		db:        db,
		path:      filePath(dataSourceName),
		log:       log.With().Str("component", "storage").Logger(),
		writeChan: make(chan func(*sql.Tx) error, writeQueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// withForeignKeys enables foreign keys on every pooled connection, not just the first
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// filePath strips the URI scheme and query from a DSN
func filePath(dsn string) string {
	path, _, _ := strings.Cut(dsn, "?")
	return strings.TrimPrefix(path, "file:")
}

// IsHealthy reports false once any queued write has failed
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			deadline := time.After(drainTimeout)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.degrade(err, "failed to begin transaction")
		return
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		s.degrade(err, "write operation failed")
		return
	}

	if err := tx.Commit(); err != nil {
		s.degrade(err, "failed to commit")
	}
}

func (s *Store) degrade(err error, msg string) {
	s.log.Error().Err(err).Msg("storage degraded: " + msg)
	s.healthStatus.Store(false)
}

// enqueue hands a write to the writer goroutine, dropping it when degraded or full
func (s *Store) enqueue(what string, fn func(*sql.Tx) error) {
	if !s.healthStatus.Load() {
		return
	}

	select {
	case s.writeChan <- fn:
	default:
		s.log.Warn().Str("write", what).Msg("storage write queue full, dropping")
	}
}

// Flush blocks until every write queued before the call has been executed
func (s *Store) Flush(ctx context.Context) error {
	if !s.healthStatus.Load() {
		return fmt.Errorf("storage is degraded")
	}

	done := make(chan struct{})
	select {
	case s.writeChan <- func(*sql.Tx) error {
		close(done)
		return nil
	}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains queued writes and closes the database
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(drainTimeout):
			s.log.Warn().Msg("storage writer shutdown timeout, some writes may be lost")
		}

		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// InitDB creates the schema; safe to run on an existing database
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB closes the store and removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}
