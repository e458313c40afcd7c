package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/aelhage/checkersleague/pkg/ai"
	"github.com/aelhage/checkersleague/pkg/board"
	"github.com/aelhage/checkersleague/pkg/wire"
	"github.com/seekerror/logw"
)

// NumPlayers is the pair size a match is played with. The spec fixes this at
// two in the current scope.
const NumPlayers = 2

// Endpoint is the connection surface a Match needs from each player: framed
// message exchange plus the socket deadline and lifecycle controls morlock's
// teacher code gets for free from net.Conn. A *wire.Conn satisfies this.
type Endpoint interface {
	Send(wire.Message) error
	Recv() (wire.Message, error)
	SetDeadline(t time.Time) error
	Close() error
}

// Match drives one game to completion between two Endpoints.
type Match struct {
	players   map[board.Color]Endpoint
	names     map[board.Color]string
	b         *board.Board
	state     State
	timeLimit time.Duration
	rng       *rand.Rand
}

// New constructs a Match. seed centralizes the match's RNG for reproducible
// random-move substitution in tests, per spec.md §9 design notes.
func New(light, dark Endpoint, lightName, darkName string, boardSize int, timeLimit time.Duration, seed int64) (*Match, error) {
	b, err := board.New(boardSize)
	if err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}

	return &Match{
		players:   map[board.Color]Endpoint{board.Light: light, board.Dark: dark},
		names:     map[board.Color]string{board.Light: lightName, board.Dark: darkName},
		b:         b,
		state:     Init,
		timeLimit: timeLimit,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

// Run drives the match to completion and returns the final result. It
// closes both endpoints before returning.
func (m *Match) Run(ctx context.Context) (board.Result, error) {
	defer m.closeAll(ctx)

	if result, done := m.sendRulesAndBegin(ctx); done {
		return result, nil
	}

	for {
		if ctx.Err() != nil {
			logw.Infof(ctx, "match: context done at turn boundary, aborting")
			m.state = Over
			return board.None, ctx.Err()
		}

		side := m.b.Turn()
		m.state = turnState(side)

		move, result, done := m.playTurn(ctx, side)
		if done {
			m.state = Over
			return result, nil
		}

		m.broadcast(ctx, wireMoveFromBoard(move))

		if r := m.b.Winner(); r != board.None {
			m.state = Over
			m.announceGameOver(ctx, r)
			return r, nil
		}
	}
}

func turnState(side board.Color) State {
	if side == board.Light {
		return TurnLight
	}
	return TurnDark
}

func (m *Match) sendRulesAndBegin(ctx context.Context) (board.Result, bool) {
	for color, ep := range m.players {
		rules := wire.NewGameRules(color.String(), NumPlayers, m.timeLimit.Seconds(), m.b.Size())
		if err := ep.Send(rules); err != nil {
			return m.disconnect(ctx, color, err)
		}
	}
	m.state = RulesSent

	for color, ep := range m.players {
		if err := ep.Send(wire.NewBeginGame()); err != nil {
			return m.disconnect(ctx, color, err)
		}
	}
	m.state = BeginSent

	return board.None, false
}

// playTurn runs a single ply for side: prompt, await a move, apply rule or
// timeout recovery. It returns the committed move (if done is false) or the
// terminal result (if done is true, e.g. a disconnect).
func (m *Match) playTurn(ctx context.Context, side board.Color) (board.Move, board.Result, bool) {
	ep := m.players[side]

	if err := ep.Send(wire.NewYourTurn()); err != nil {
		result, done := m.disconnect(ctx, side, err)
		return nil, result, done
	}

	if err := ep.SetDeadline(time.Now().Add(m.timeLimit)); err != nil {
		logw.Errorf(ctx, "match: set deadline for %v: %v", side, err)
	}

	msg, err := ep.Recv()
	// Clear the turn deadline so later sends to this side (broadcasts, its
	// next YourTurn) are not failed by it once it expires.
	_ = ep.SetDeadline(time.Time{})
	if err != nil {
		if isTimeout(err) {
			logw.Warningf(ctx, "match: %v (%v) timed out, substituting random move", side, m.names[side])
			return m.substituteRandomMove(side), board.None, false
		}
		if errors.Is(err, wire.ErrProtocol) {
			logw.Warningf(ctx, "match: malformed message from %v, substituting random move: %v", side, err)
			_ = ep.Send(wire.NewErrorMessage(wire.ErrorInvalidMsg))
			return m.substituteRandomMove(side), board.None, false
		}
		result, done := m.disconnect(ctx, side, err)
		return nil, result, done
	}

	mv, ok := msg.(*wire.Move)
	if !ok || len(mv.MoveList) == 0 {
		logw.Warningf(ctx, "match: invalid message from %v, substituting random move", side)
		return m.substituteRandomMove(side), board.None, false
	}

	candidate := boardMoveFromWire(mv.MoveList)
	if !m.b.ExecuteMove(candidate) {
		logw.Warningf(ctx, "match: illegal move %v from %v, substituting random move", candidate, side)
		return m.substituteRandomMove(side), board.None, false
	}

	return candidate, board.None, false
}

func (m *Match) substituteRandomMove(side board.Color) board.Move {
	move, ok := ai.RandomMove(m.rng, m.b, side)
	if !ok {
		// Winner() would have already been non-None if no move existed.
		return nil
	}
	if !m.b.ExecuteMove(move) {
		return nil
	}
	return move
}

// broadcast sends a message to both players, logging (but not failing the
// match on) individual send errors — a broken send here is detected on the
// next turn's recv instead.
func (m *Match) broadcast(ctx context.Context, msg wire.Message) {
	for color, ep := range m.players {
		if err := ep.Send(msg); err != nil {
			logw.Errorf(ctx, "match: broadcast to %v: %v", color, err)
		}
	}
}

func (m *Match) announceGameOver(ctx context.Context, r board.Result) {
	m.broadcast(ctx, wire.NewGameOver(r.String()))
	logw.Infof(ctx, "match: game over, result=%v", r)
}

// disconnect handles a peer drop during send/recv: the other player wins,
// receives ErrorMessage{OPPONENT_DISCONNECTED}, and the match ends.
func (m *Match) disconnect(ctx context.Context, failed board.Color, cause error) (board.Result, bool) {
	survivor := failed.Opponent()
	logw.Errorf(ctx, "match: %v disconnected: %v", failed, cause)

	if ep, ok := m.players[survivor]; ok {
		_ = ep.Send(wire.NewErrorMessage(wire.ErrorOpponentDisconnected))
		_ = ep.Send(wire.NewGameOver(survivor.String()))
	}

	result := board.LightWins
	if survivor == board.Dark {
		result = board.DarkWins
	}
	return result, true
}

func (m *Match) closeAll(ctx context.Context) {
	for color, ep := range m.players {
		if err := ep.Close(); err != nil {
			logw.Debugf(ctx, "match: close %v: %v", color, err)
		}
	}
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

func wireMoveFromBoard(m board.Move) wire.Message {
	locs := make([][2]int, len(m))
	for i, l := range m {
		locs[i] = [2]int{l.Row, l.Col}
	}
	return wire.NewMove(locs)
}

func boardMoveFromWire(locs [][2]int) board.Move {
	m := make(board.Move, len(locs))
	for i, l := range locs {
		m[i] = board.Location{Row: l[0], Col: l[1]}
	}
	return m
}
