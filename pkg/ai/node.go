package ai

import "github.com/aelhage/checkersleague/pkg/board"

// node is a single position in the game tree: the board reached, the move
// that produced it, the root side the search is optimizing for, and the
// side to move next at this node. Mirrors the shape of
// original_source/src/players/simple_ai.py's ProcessingNode.
type node struct {
	b    *board.Board
	root board.Color // side the AI plays
	mover board.Color // side to move at this node
	move board.Move   // move that produced this node; nil at the root

	children []*node
}

func newNode(b *board.Board, root, mover board.Color, move board.Move) *node {
	return &node{b: b, root: root, mover: mover, move: move}
}

// expand generates one child per legal move of the mover, enforcing
// mandatory capture the way the engine's own ExecuteMove does.
func (n *node) expand() []*node {
	var captures, steps []board.Move
	for _, loc := range n.b.LocationsOf(n.mover) {
		isCapture, moves := n.b.GenerateMoves(loc)
		if isCapture {
			captures = append(captures, moves...)
		} else {
			steps = append(steps, moves...)
		}
	}

	moves := steps
	if len(captures) > 0 {
		moves = captures
	}

	childMover := n.mover.Opponent()
	for _, m := range moves {
		child := n.b.Fork()
		if !child.ExecuteMove(m) {
			continue // defensive: GenerateMoves should only yield legal moves
		}
		n.children = append(n.children, newNode(child, n.root, childMover, m))
	}
	return n.children
}

// utility evaluates the node: a leaf (no children — either exhausted or cut
// off by the search deadline) is scored by material; an internal node
// propagates max at the root's own turns and min at the opponent's.
func (n *node) utility() int {
	if len(n.children) == 0 {
		sum := 0
		for _, o := range n.b.Pieces() {
			sign := -1
			if o.Piece.Color == n.root {
				sign = 1
			}
			sum += sign * o.Piece.Kind.Weight()
		}
		return sum
	}

	if n.mover == n.root {
		best := n.children[0].utility()
		for _, c := range n.children[1:] {
			if u := c.utility(); u > best {
				best = u
			}
		}
		return best
	}

	worst := n.children[0].utility()
	for _, c := range n.children[1:] {
		if u := c.utility(); u < worst {
			worst = u
		}
	}
	return worst
}

// bestChild returns the root's child with the highest utility, ties broken
// by insertion (generation) order.
func (n *node) bestChild() (*node, bool) {
	if len(n.children) == 0 {
		return nil, false
	}

	best := n.children[0]
	bestU := best.utility()
	for _, c := range n.children[1:] {
		if u := c.utility(); u > bestU {
			best, bestU = c, u
		}
	}
	return best, true
}
