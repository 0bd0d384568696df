package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chess-rules/internal/core"
	"chess-rules/internal/engine"
	"chess-rules/internal/game"

	"github.com/rs/zerolog"
)

const (
	queueSize     = 100
	searchTimeout = 5 * time.Second
)

// EngineTask contains a computer move request and its response channel
type EngineTask struct {
	GameID   string
	FEN      string
	Player   *core.Player
	Engine   *engine.Random
	Response chan<- EngineResult
}

// EngineResult contains the outcome of an engine search
type EngineResult struct {
	GameID  string
	Move    string
	Choices int
	Seed    int64
	Error   error
}

// EngineQueue runs engine searches on a fixed pool of workers. Each search
// works on its own game rebuilt from the FEN, never on the live game.
type EngineQueue struct {
	tasks   chan EngineTask
	workers int
	log     zerolog.Logger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewEngineQueue creates a queue with specified worker count
func NewEngineQueue(workerCount int, log zerolog.Logger) *EngineQueue {
	if workerCount < 1 {
		workerCount = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &EngineQueue{
		tasks:   make(chan EngineTask, queueSize),
		workers: workerCount,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	return q
}

func (q *EngineQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case task := <-q.tasks:
			result := q.processTask(task)
			q.log.Debug().Int("worker", id).Str("game", task.GameID).Str("move", result.Move).Msg("search finished")

			// Send result if receiver still listening
			select {
			case task.Response <- result:
			case <-time.After(100 * time.Millisecond):
			}

		case <-q.ctx.Done():
			return
		}
	}
}

func (q *EngineQueue) processTask(task EngineTask) EngineResult {
	result := EngineResult{GameID: task.GameID}

	g := game.New(task.FEN, nil, nil)
	if g.Notice() != "" {
		result.Error = fmt.Errorf("engine position rejected: %s", g.Notice())
		return result
	}

	ctx, cancel := context.WithTimeout(q.ctx, searchTimeout)
	defer cancel()

	search, err := task.Engine.Search(ctx, g)
	if err != nil {
		result.Error = fmt.Errorf("engine search failed: %w", err)
		return result
	}

	result.Move = search.BestMove
	result.Choices = search.Choices
	result.Seed = search.Seed
	return result
}

// Submit adds a task to the queue
func (q *EngineQueue) Submit(task EngineTask) error {
	if q.ctx.Err() != nil {
		return fmt.Errorf("queue is shutting down")
	}

	select {
	case q.tasks <- task:
		return nil
	case <-q.ctx.Done():
		return fmt.Errorf("queue is shutting down")
	default:
		return fmt.Errorf("queue is full")
	}
}

// SubmitAsync queues a search and hands its result to callback
func (q *EngineQueue) SubmitAsync(gameID, fen string, player *core.Player, eng *engine.Random, callback func(EngineResult)) error {
	respChan := make(chan EngineResult, 1)

	task := EngineTask{
		GameID:   gameID,
		FEN:      fen,
		Player:   player,
		Engine:   eng,
		Response: respChan,
	}

	if err := q.Submit(task); err != nil {
		return err
	}

	go func() {
		select {
		case result := <-respChan:
			callback(result)
		case <-time.After(searchTimeout + time.Second):
			callback(EngineResult{
				GameID: gameID,
				Error:  fmt.Errorf("engine timeout"),
			})
		}
	}()

	return nil
}

// Shutdown stops the workers; queued tasks are abandoned
func (q *EngineQueue) Shutdown(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout exceeded")
	}
}
