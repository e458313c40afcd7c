// Package ai implements the time-bounded minimax search the engine uses to
// pick a move: a breadth-first game tree expanded under a wall-clock budget,
// evaluated with a simple material utility. Grounded in
// original_source/src/players/simple_ai.py's ProcessingNode, expressed as a
// deadline-driven search the way morlock's pkg/search/searchctl drives
// iterative deepening under a time control.
package ai

import (
	"context"
	"time"

	"github.com/aelhage/checkersleague/pkg/board"
	"github.com/seekerror/logw"
)

// BudgetFraction is the portion of the allotted time actually spent
// searching; the remainder is reserved for overhead and return marshalling.
const BudgetFraction = 0.85

// Search is implemented by move-selection strategies. Alternate
// implementations (e.g. a pure-random opponent for tests) can be swapped in
// the same way morlock swaps search.AlphaBeta for search.PVS.
type Search interface {
	// SelectMove returns the best move for side on root within timeLimit.
	// The returned move is empty if no time was given or no move exists;
	// the caller (pkg/client) then sends nothing, and the match engine times
	// the turn out and substitutes a random legal move.
	SelectMove(ctx context.Context, root *board.Board, side board.Color, timeLimit time.Duration) (board.Move, error)
}

// Minimax is the breadth-first, time-bounded minimax search of spec.md §4.2.
type Minimax struct{}

func (Minimax) SelectMove(ctx context.Context, root *board.Board, side board.Color, timeLimit time.Duration) (board.Move, error) {
	if timeLimit <= 0 {
		return nil, nil
	}

	budget := time.Duration(float64(timeLimit) * BudgetFraction)
	deadline := time.Now().Add(budget)

	rootNode := newNode(root.Fork(), side, side, nil)

	queue := []*node{rootNode}
	for len(queue) > 0 {
		if time.Now().After(deadline) || ctx.Err() != nil {
			break
		}

		n := queue[0]
		queue = queue[1:]

		queue = append(queue, n.expand()...)
	}

	best, ok := rootNode.bestChild()
	if !ok {
		logw.Debugf(ctx, "ai: no move found for %v within %v", side, timeLimit)
		return nil, nil
	}
	return best.move, nil
}
