// Package engine picks moves for computer players
package engine

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"
)

var ErrNoMoves = errors.New("no legal moves")

// Position is anything that can list the side to move's legal moves in
// coordinate notation
type Position interface {
	LegalMoves() []string
}

type SearchResult struct {
	BestMove string
	Choices  int
	Seed     int64
}

// Random plays a uniformly random legal move. A fixed seed replays the same
// choices for the same sequence of positions.
type Random struct {
	mu   sync.Mutex
	rng  *rand.Rand
	seed int64
}

// New returns a random engine; seed 0 draws a fresh seed
func New(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{
		rng:  rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

func (r *Random) Seed() int64 {
	return r.seed
}

// Search chooses a move for pos
func (r *Random) Search(ctx context.Context, pos Position) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}

	r.mu.Lock()
	pick := r.rng.IntN(len(moves))
	r.mu.Unlock()

	return &SearchResult{
		BestMove: moves[pick],
		Choices:  len(moves),
		Seed:     r.seed,
	}, nil
}
