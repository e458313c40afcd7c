package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/aelhage/checkersleague/pkg/ai"
	"github.com/aelhage/checkersleague/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is the test's hand-scripted stand-in for the matchmaking
// server, driving the client through its full state machine over a
// net.Pipe.
type fakeServer struct {
	*wire.Conn
}

func newFakeServerPair() (*fakeServer, *wire.Conn) {
	a, b := net.Pipe()
	return &fakeServer{wire.NewConn(a)}, wire.NewConn(b)
}

func TestClient_FullGameLifecycle(t *testing.T) {
	srv, clientConn := newFakeServerPair()

	c, out := New(clientConn, "alice", &ai.Minimax{})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	go drainStatus(out)

	msg, err := srv.Recv()
	require.NoError(t, err)
	req, ok := msg.(*wire.ConnectionRequest)
	require.True(t, ok)
	assert.Equal(t, "alice", req.Name)

	require.NoError(t, srv.Send(wire.NewWaitingForOpponent(true)))
	require.NoError(t, srv.Send(wire.NewWaitingForOpponent(false)))
	require.NoError(t, srv.Send(wire.NewGameRules("w", 2, 0.2, 8)))
	require.NoError(t, srv.Send(wire.NewBeginGame()))

	require.Eventually(t, func() bool { return c.State() == Playing }, time.Second, 5*time.Millisecond)
	require.NotNil(t, c.Board())
	assert.Equal(t, 8, c.Board().Size())

	require.NoError(t, srv.Send(wire.NewYourTurn()))

	msg, err = srv.Recv()
	require.NoError(t, err)
	mv, ok := msg.(*wire.Move)
	require.True(t, ok, "expected the AI to answer YourTurn with a Move, got %T", msg)
	require.NoError(t, srv.Send(*mv))

	require.NoError(t, srv.Send(wire.NewGameOver("w")))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("client did not reach GAME_OVER")
	}
	assert.Equal(t, GameOver, c.State())
}

func TestClient_OpponentDisconnectEndsGame(t *testing.T) {
	srv, clientConn := newFakeServerPair()
	c, out := New(clientConn, "alice", &ai.Minimax{})

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	go drainStatus(out)

	_, err := srv.Recv()
	require.NoError(t, err)

	require.NoError(t, srv.Send(wire.NewWaitingForOpponent(false)))
	require.NoError(t, srv.Send(wire.NewGameRules("b", 2, 0.2, 8)))
	require.NoError(t, srv.Send(wire.NewBeginGame()))
	require.NoError(t, srv.Send(wire.NewErrorMessage(wire.ErrorOpponentDisconnected)))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("client did not exit on disconnect")
	}
	assert.Equal(t, GameOver, c.State())
}

func drainStatus(out <-chan string) {
	for range out {
	}
}
