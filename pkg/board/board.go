// Package board contains the checkers board representation and rules engine:
// piece placement, legal move generation with mandatory capture, multi-jump
// capture chains, promotion, the draw-by-quiet-plies counter and terminal
// detection.
package board

import (
	"fmt"
	"strings"
)

// DrawThreshold is the number of consecutive quiet plies (no capture, no
// promotion) after which the game is adjudicated by piece count.
const DrawThreshold = 40

// cell holds the occupant of a square, if any, and whether the square is
// playable at all. Non-playable squares never hold a piece.
type cell struct {
	playable bool
	occupied bool
	piece    Piece
}

// Board is an N x N grid of cells plus the metadata needed to enforce the
// rules of English draughts. Not thread-safe: the match engine owns one
// Board exclusively and mutates it only through ExecuteMove; the AI works
// against deep copies made with Fork.
type Board struct {
	n     int
	cells [][]cell

	turn  Color
	quiet int // consecutive plies with neither a capture nor a promotion
}

// New constructs the initial position on an N x N board. N must be even and
// >= 4, matching the Non-goals of the spec (no odd or undersized boards).
func New(n int) (*Board, error) {
	if n < 4 || n%2 != 0 {
		return nil, fmt.Errorf("invalid board size %d: must be even and >= 4", n)
	}

	b := &Board{n: n, turn: Light}
	b.cells = make([][]cell, n)
	for r := 0; r < n; r++ {
		b.cells[r] = make([]cell, n)
		for c := 0; c < n; c++ {
			b.cells[r][c] = cell{playable: IsPlayable(r, c)}
		}
	}

	rows := n/2 - 1
	for r := 0; r < rows; r++ {
		for c := 0; c < n; c++ {
			if IsPlayable(r, c) {
				b.cells[r][c].occupied = true
				b.cells[r][c].piece = Piece{Color: Light, Kind: Pawn}
			}
		}
	}
	for r := n - rows; r < n; r++ {
		for c := 0; c < n; c++ {
			if IsPlayable(r, c) {
				b.cells[r][c].occupied = true
				b.cells[r][c].piece = Piece{Color: Dark, Kind: Pawn}
			}
		}
	}
	return b, nil
}

// Size returns N.
func (b *Board) Size() int {
	return b.n
}

// Turn returns the side to move.
func (b *Board) Turn() Color {
	return b.turn
}

// QuietPlies returns the consecutive-quiet-ply counter.
func (b *Board) QuietPlies() int {
	return b.quiet
}

// Fork returns a deep copy of the board. The AI must only ever search against
// forked boards; it never observes the match engine's live Board.
func (b *Board) Fork() *Board {
	cp := &Board{n: b.n, turn: b.turn, quiet: b.quiet}
	cp.cells = make([][]cell, b.n)
	for r := range b.cells {
		cp.cells[r] = append([]cell(nil), b.cells[r]...)
	}
	return cp
}

func (b *Board) inBounds(l Location) bool {
	return l.Row >= 0 && l.Row < b.n && l.Col >= 0 && l.Col < b.n
}

func (b *Board) at(l Location) cell {
	return b.cells[l.Row][l.Col]
}

// PieceAt returns the occupant of a square, if any.
func (b *Board) PieceAt(l Location) (Piece, bool) {
	if !b.inBounds(l) {
		return Piece{}, false
	}
	c := b.at(l)
	return c.piece, c.occupied
}

// Occupant pairs a piece with its location, for enumeration.
type Occupant struct {
	Piece Piece
	Loc   Location
}

// Pieces enumerates every occupied square on the board.
func (b *Board) Pieces() []Occupant {
	var ret []Occupant
	for r := 0; r < b.n; r++ {
		for c := 0; c < b.n; c++ {
			cell := b.cells[r][c]
			if cell.occupied {
				ret = append(ret, Occupant{Piece: cell.piece, Loc: Location{Row: r, Col: c}})
			}
		}
	}
	return ret
}

// LocationsOf returns every square occupied by a piece of the given color.
func (b *Board) LocationsOf(side Color) []Location {
	var ret []Location
	for r := 0; r < b.n; r++ {
		for c := 0; c < b.n; c++ {
			cell := b.cells[r][c]
			if cell.occupied && cell.piece.Color == side {
				ret = append(ret, Location{Row: r, Col: c})
			}
		}
	}
	return ret
}

// directions lists the diagonal (dr, dc) unit steps available to a piece.
func directions(p Piece) [][2]int {
	switch {
	case p.Kind == King:
		return [][2]int{{1, -1}, {1, 1}, {-1, -1}, {-1, 1}}
	case p.Color == Light:
		return [][2]int{{1, -1}, {1, 1}}
	default:
		return [][2]int{{-1, -1}, {-1, 1}}
	}
}

// promotionRow returns the row on which a pawn of the given color promotes.
func (b *Board) promotionRow(c Color) int {
	if c == Light {
		return b.n - 1
	}
	return 0
}

// GenerateMoves returns all legal moves for the piece at loc, assuming it is
// that side's turn, without applying the mandatory-capture rule across other
// pieces on the board. If any capture is available from loc, only maximal
// capture chains are returned and isCapture is true; otherwise simple steps.
func (b *Board) GenerateMoves(loc Location) (isCapture bool, moves []Move) {
	p, ok := b.PieceAt(loc)
	if !ok {
		return false, nil
	}

	chains := b.captureChains(loc, p)
	if len(chains) > 0 {
		return true, chains
	}

	var steps []Move
	for _, d := range directions(p) {
		to := loc.step(d[0], d[1])
		if b.inBounds(to) {
			if c := b.at(to); !c.occupied {
				steps = append(steps, Move{loc, to})
			}
		}
	}
	return false, steps
}

// captureChains recursively expands maximal capture chains for the piece
// currently at loc, on the board state held by the receiver. Only terminal
// chains — those that cannot be extended further — are returned.
func (b *Board) captureChains(loc Location, p Piece) []Move {
	var chains []Move
	for _, d := range directions(p) {
		mid := loc.step(d[0], d[1])
		to := loc.step(2*d[0], 2*d[1])
		if !b.inBounds(to) {
			continue
		}
		midCell := b.at(mid)
		if !midCell.occupied || midCell.piece.Color == p.Color {
			continue
		}
		if b.at(to).occupied {
			continue
		}

		// Apply the jump on a hypothetical board to look for continuations.
		next := b.Fork()
		next.cells[loc.Row][loc.Col] = cell{playable: true}
		next.cells[mid.Row][mid.Col] = cell{playable: true}
		landed := p
		promotedMidChain := false
		if landed.Kind == Pawn && to.Row == next.promotionRow(p.Color) {
			landed.Kind = King
			promotedMidChain = true
		}
		next.cells[to.Row][to.Col] = cell{playable: true, occupied: true, piece: landed}

		// A pawn promoted mid-chain gains king movement only after the chain
		// completes: further jumps in this chain still use the pre-promotion
		// piece's directions.
		continuer := landed
		if promotedMidChain {
			continuer = p
		}
		extensions := next.captureChains(to, continuer)

		if len(extensions) == 0 {
			chains = append(chains, Move{loc, to})
			continue
		}
		for _, ext := range extensions {
			combined := append(Move{loc, to}, ext[1:]...)
			chains = append(chains, combined)
		}
	}
	return chains
}

// hasAnyCapture reports whether any piece of side has an available capture.
func (b *Board) hasAnyCapture(side Color) bool {
	for _, loc := range b.LocationsOf(side) {
		p, _ := b.PieceAt(loc)
		if len(b.captureChains(loc, p)) > 0 {
			return true
		}
	}
	return false
}

// ExecuteMove validates and commits a move for the side to move. Returns
// true on commit; false (with no state change) on rejection.
func (b *Board) ExecuteMove(m Move) bool {
	if len(m) < 2 || !m.IsValid() {
		return false
	}

	start := m[0]
	p, ok := b.PieceAt(start)
	if !ok || p.Color != b.turn {
		return false
	}

	_, legal := b.GenerateMoves(start)
	found := false
	for _, cand := range legal {
		if cand.Equals(m) {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	if !m.IsCapture() && b.hasAnyCapture(b.turn) {
		return false // mandatory capture: some piece of this side must capture
	}

	snapshot := b.Fork()

	captured := false
	promoted := false
	moving := p
	for i := 1; i < len(m); i++ {
		from, to := m[i-1], m[i]
		if !b.inBounds(to) {
			*b = *snapshot
			return false
		}
		b.cells[from.Row][from.Col] = cell{playable: true}
		if abs(to.Row-from.Row) == 2 {
			mid := midpoint(from, to)
			b.cells[mid.Row][mid.Col] = cell{playable: true}
			captured = true
		}
		if moving.Kind == Pawn && to.Row == b.promotionRow(moving.Color) {
			moving.Kind = King
			promoted = true
		}
		b.cells[to.Row][to.Col] = cell{playable: true, occupied: true, piece: moving}
	}

	b.turn = b.turn.Opponent()
	if captured || promoted {
		b.quiet = 0
	} else {
		b.quiet++
	}
	return true
}

// Winner reports the game outcome as seen from the current position.
func (b *Board) Winner() Result {
	hasMove := false
	for _, loc := range b.LocationsOf(b.turn) {
		if _, moves := b.GenerateMoves(loc); len(moves) > 0 {
			hasMove = true
			break
		}
	}
	if !hasMove {
		if b.turn == Light {
			return DarkWins
		}
		return LightWins
	}

	if b.quiet >= DrawThreshold {
		lightCount, darkCount := b.pieceCounts()
		switch {
		case lightCount > darkCount:
			return LightWins
		case darkCount > lightCount:
			return DarkWins
		default:
			return DrawResult
		}
	}

	return None
}

func (b *Board) pieceCounts() (light, dark int) {
	for _, o := range b.Pieces() {
		if o.Piece.Color == Light {
			light++
		} else {
			dark++
		}
	}
	return light, dark
}

func (b *Board) String() string {
	var sb strings.Builder
	for r := b.n - 1; r >= 0; r-- {
		for c := 0; c < b.n; c++ {
			cell := b.cells[r][c]
			switch {
			case !cell.playable:
				sb.WriteString(" ")
			case cell.occupied:
				sb.WriteString(cell.piece.String())
			default:
				sb.WriteString("_")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
