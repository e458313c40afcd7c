package board

import (
	"fmt"
	"strings"
)

// Move is an ordered sequence of >= 2 Locations: a single step, or a capture
// chain of one or more jumps by a single piece.
type Move []Location

// IsCapture reports whether the move is a capture chain, determined by the
// distance of its first hop: a jump spans two rows, a step spans one.
func (m Move) IsCapture() bool {
	if len(m) < 2 {
		return false
	}
	return abs(m[1].Row-m[0].Row) == 2
}

// IsValid reports whether the move has the minimum shape required: at least
// two locations, each hop diagonal, and hops uniformly steps or uniformly jumps.
func (m Move) IsValid() bool {
	if len(m) < 2 {
		return false
	}
	capture := m.IsCapture()
	for i := 1; i < len(m); i++ {
		dr := m[i].Row - m[i-1].Row
		dc := m[i].Col - m[i-1].Col
		if abs(dr) != abs(dc) {
			return false
		}
		if capture && abs(dr) != 2 {
			return false // mixed step+jump chain
		}
		if !capture && abs(dr) != 1 {
			return false
		}
	}
	return true
}

// Equals reports whether two moves visit the same locations in the same order.
func (m Move) Equals(o Move) bool {
	if len(m) != len(o) {
		return false
	}
	for i := range m {
		if m[i] != o[i] {
			return false
		}
	}
	return true
}

func (m Move) String() string {
	parts := make([]string, len(m))
	for i, l := range m {
		parts[i] = l.String()
	}
	return strings.Join(parts, "->")
}

// PrintMoves renders a sequence of moves for logging, in the teacher's style.
func PrintMoves(moves []Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return fmt.Sprintf("[%v]", strings.Join(parts, " "))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
