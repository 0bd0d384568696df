package service

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WaitTimeout is the maximum time a client can wait for notifications
const WaitTimeout = 25 * time.Second

// WaitRegistry manages long-polling clients waiting for game state changes
type WaitRegistry struct {
	mu           sync.Mutex
	waiters      map[string][]*WaitRequest // gameID → waiting clients
	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// WaitRequest is one client waiting on a game. Notify is closed exactly once,
// on change, timeout, removal of the game or shutdown.
type WaitRequest struct {
	MoveCount int
	GameID    string
	notify    chan struct{}
	once      sync.Once
	timer     *time.Timer
}

func (r *WaitRequest) fire() {
	r.once.Do(func() { close(r.notify) })
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters:  make(map[string][]*WaitRequest),
		shutdown: make(chan struct{}),
	}
}

// RegisterWait returns a channel that closes when the game's move count moves
// away from moveCount or its state changes
func (w *WaitRegistry) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	req := &WaitRequest{
		MoveCount: moveCount,
		GameID:    gameID,
		notify:    make(chan struct{}),
	}
	req.timer = time.AfterFunc(WaitTimeout, req.fire)

	w.mu.Lock()
	w.waiters[gameID] = append(w.waiters[gameID], req)
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			req.fire()
		case <-req.notify:
		case <-w.shutdown:
			req.fire()
		}
		req.timer.Stop()
		w.removeWaiter(gameID, req)
	}()

	return req.notify
}

// NotifyGame wakes waiters whose last known move count differs
func (w *WaitRegistry) NotifyGame(gameID string, currentMoveCount int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, req := range w.waiters[gameID] {
		if req.MoveCount != currentMoveCount {
			req.fire()
		}
	}
}

// WakeGame wakes every waiter on a game, used for state changes that keep the move count
func (w *WaitRegistry) WakeGame(gameID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, req := range w.waiters[gameID] {
		req.fire()
	}
}

// RemoveGame wakes and drops all waiters for a game
func (w *WaitRegistry) RemoveGame(gameID string) {
	w.mu.Lock()
	waitList := w.waiters[gameID]
	delete(w.waiters, gameID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.fire()
	}
}

// Waiting reports the number of registered waiters on a game
func (w *WaitRegistry) Waiting(gameID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waiters[gameID])
}

// Shutdown wakes every waiter and waits for their cleanup goroutines
func (w *WaitRegistry) Shutdown(timeout time.Duration) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("wait registry shutdown timed out")
	}
}

func (w *WaitRegistry) removeWaiter(gameID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	waitList := w.waiters[gameID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[gameID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[gameID]) == 0 {
		delete(w.waiters, gameID)
	}
}
