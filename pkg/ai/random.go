package ai

import (
	"context"
	"math/rand"
	"time"

	"github.com/aelhage/checkersleague/pkg/board"
)

// RandomMove chooses uniformly among the legal moves of side, respecting
// mandatory capture: if any piece has a capture available, the choice is
// restricted to captures. Returns false if side has no legal move at all,
// which cannot happen while Winner() reports None. Grounded in
// original_source/src/board_server.py's random_move.
func RandomMove(rng *rand.Rand, b *board.Board, side board.Color) (board.Move, bool) {
	var captures, steps []board.Move
	for _, loc := range b.LocationsOf(side) {
		isCapture, moves := b.GenerateMoves(loc)
		if isCapture {
			captures = append(captures, moves...)
		} else {
			steps = append(steps, moves...)
		}
	}

	pool := steps
	if len(captures) > 0 {
		pool = captures
	}
	if len(pool) == 0 {
		return nil, false
	}
	return pool[rng.Intn(len(pool))], true
}

// RandomSearch is a Search that always substitutes a uniformly random legal
// move, ignoring the time budget: the "random" strategy registered by
// cmd/checkers-client, wrapping RandomMove the same way the match engine
// uses it for timeout/invalid-move fallback.
type RandomSearch struct {
	rng *rand.Rand
}

// NewRandomSearch constructs a RandomSearch seeded by seed.
func NewRandomSearch(seed int64) *RandomSearch {
	return &RandomSearch{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomSearch) SelectMove(_ context.Context, root *board.Board, side board.Color, _ time.Duration) (board.Move, error) {
	move, _ := RandomMove(s.rng, root, side)
	return move, nil
}
