package server

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/aelhage/checkersleague/pkg/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{Port: 0, Timeout: 200 * time.Millisecond, MaxGames: 2, NumPlayers: 2})
	require.NoError(t, err)
	return s
}

func dial(t *testing.T, addr net.Addr, name string) *wire.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	wc := wire.NewConn(conn)
	require.NoError(t, wc.Send(wire.NewConnectionRequest(name)))
	return wc
}

func TestServer_PairsTwoClientsIntoAMatch(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	defer func() {
		cancel()
		<-done
	}()

	_, port, err := net.SplitHostPort(s.Addr().String())
	require.NoError(t, err)
	addr := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: mustAtoi(t, port)}

	alice := dial(t, addr, "alice")
	msg, err := alice.Recv()
	require.NoError(t, err)
	_, ok := msg.(*wire.WaitingForOpponent)
	require.True(t, ok)

	bob := dial(t, addr, "bob")

	for _, c := range []*wire.Conn{alice, bob} {
		msg, err := c.Recv()
		require.NoError(t, err)
		w, ok := msg.(*wire.WaitingForOpponent)
		require.True(t, ok)
		assert.False(t, w.Flag)

		msg, err = c.Recv()
		require.NoError(t, err)
		_, ok = msg.(*wire.GameRules)
		require.True(t, ok)
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}
