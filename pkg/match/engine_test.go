package match

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/aelhage/checkersleague/pkg/board"
	"github.com/aelhage/checkersleague/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// side is a test double sitting on one end of a net.Pipe, giving the test
// direct Send/Recv access to what a real client would see and send.
type side struct {
	*wire.Conn
}

func newSidePair() (*side, *side) {
	a, b := net.Pipe()
	return &side{wire.NewConn(a)}, &side{wire.NewConn(b)}
}

func expectHandshake(t *testing.T, s *side) {
	t.Helper()
	msg, err := s.Recv()
	require.NoError(t, err)
	_, ok := msg.(*wire.GameRules)
	require.True(t, ok, "expected GameRules, got %T", msg)

	msg, err = s.Recv()
	require.NoError(t, err)
	_, ok = msg.(*wire.BeginGame)
	require.True(t, ok, "expected BeginGame, got %T", msg)
}

func drainToGameOver(t *testing.T, s *side) {
	t.Helper()
	for {
		msg, err := s.Recv()
		if err != nil {
			return
		}
		if _, ok := msg.(*wire.GameOver); ok {
			return
		}
	}
}

// drainForever consumes every message sent to s until the connection closes.
// A side the test otherwise ignores still needs a reader: net.Pipe is
// unbuffered, so an un-drained endpoint would make the engine's Send to it
// block forever on that color's very first turn.
func drainForever(s *side) {
	for {
		if _, err := s.Recv(); err != nil {
			return
		}
	}
}

// TestMatch_TimeoutSubstitutesRandomMovesToCompletion never submits a Move
// from either client; the engine must fall back to ai.RandomMove on every
// turn's read-deadline expiry until Winner() settles the game.
func TestMatch_TimeoutSubstitutesRandomMovesToCompletion(t *testing.T) {
	lightSide, lightEp := newSidePair()
	darkSide, darkEp := newSidePair()

	m, err := New(lightEp, darkEp, "alice", "bob", 8, 20*time.Millisecond, 1)
	require.NoError(t, err)

	done := make(chan board.Result, 1)
	go func() {
		r, err := m.Run(context.Background())
		assert.NoError(t, err)
		done <- r
	}()

	go drainForever(darkSide)

	expectHandshake(t, lightSide)
	drainToGameOver(t, lightSide)

	select {
	case r := <-done:
		assert.NotEqual(t, board.None, r)
	case <-time.After(10 * time.Second):
		t.Fatal("match did not finish")
	}
}

// TestMatch_DisconnectMidGameAwardsOpponent drops dark's connection right
// after the handshake; light must be declared the winner and receive
// OPPONENT_DISCONNECTED.
func TestMatch_DisconnectMidGameAwardsOpponent(t *testing.T) {
	lightSide, lightEp := newSidePair()
	darkSide, darkEp := newSidePair()

	m, err := New(lightEp, darkEp, "alice", "bob", 8, 50*time.Millisecond, 1)
	require.NoError(t, err)

	done := make(chan board.Result, 1)
	go func() {
		r, _ := m.Run(context.Background())
		done <- r
	}()

	expectHandshake(t, lightSide)
	expectHandshake(t, darkSide)

	require.NoError(t, darkSide.Close())

	var sawDisconnectError bool
	for {
		msg, err := lightSide.Recv()
		if err != nil {
			break
		}
		if em, ok := msg.(*wire.ErrorMessage); ok {
			assert.Equal(t, wire.ErrorOpponentDisconnected, em.ErrorName)
			sawDisconnectError = true
		}
		if _, ok := msg.(*wire.GameOver); ok {
			break
		}
	}
	assert.True(t, sawDisconnectError)

	select {
	case r := <-done:
		assert.Equal(t, board.LightWins, r)
	case <-time.After(2 * time.Second):
		t.Fatal("match did not finish after disconnect")
	}
}

// TestMatch_MalformedMessageSubstitutesRandomMoveAndContinues sends a frame
// with an unrecognized message id on light's first turn. Per spec.md §4.3/§7
// this is a local, recoverable protocol error (a bad frame mid-turn), not a
// disconnect: the engine must substitute a random move and keep playing
// rather than award dark the win.
func TestMatch_MalformedMessageSubstitutesRandomMoveAndContinues(t *testing.T) {
	lightSide, lightEp := newSidePair()
	darkSide, darkEp := newSidePair()

	m, err := New(lightEp, darkEp, "alice", "bob", 8, 2*time.Second, 1)
	require.NoError(t, err)

	done := make(chan board.Result, 1)
	go func() {
		r, err := m.Run(context.Background())
		assert.NoError(t, err)
		done <- r
	}()

	go drainForever(darkSide)

	expectHandshake(t, lightSide)

	msg, err := lightSide.Recv()
	require.NoError(t, err)
	_, ok := msg.(*wire.YourTurn)
	require.True(t, ok, "expected YourTurn, got %T", msg)

	payload := []byte(`{"id":999}`)
	_, err = fmt.Fprintf(lightSide, "%d\n", len(payload))
	require.NoError(t, err)
	_, err = lightSide.Write(payload)
	require.NoError(t, err)

	// The match must not end here: it substitutes a random move for light
	// and keeps broadcasting, eventually reaching its next YourTurn (or
	// GameOver via Winner(), but never via a disconnect ErrorMessage).
	for i := 0; i < 4; i++ {
		msg, err := lightSide.Recv()
		require.NoError(t, err)
		if em, ok := msg.(*wire.ErrorMessage); ok {
			assert.NotEqual(t, wire.ErrorOpponentDisconnected, em.ErrorName)
		}
		if _, ok := msg.(*wire.YourTurn); ok {
			break
		}
		if _, ok := msg.(*wire.GameOver); ok {
			break
		}
	}

	require.NoError(t, lightSide.Close())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("match did not finish")
	}
}
