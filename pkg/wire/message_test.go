package wire

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Run("ConnectionRequest", func(t *testing.T) {
		want := NewConnectionRequest("trezza")
		got := roundTrip(t, want)
		assert.Equal(t, want, *got.(*ConnectionRequest))
	})
	t.Run("WaitingForOpponent", func(t *testing.T) {
		want := NewWaitingForOpponent(true)
		got := roundTrip(t, want)
		assert.Equal(t, want, *got.(*WaitingForOpponent))
	})
	t.Run("GameRules", func(t *testing.T) {
		want := NewGameRules("w", 2, 1.5, 8)
		got := roundTrip(t, want)
		assert.Equal(t, want, *got.(*GameRules))
	})
	t.Run("BeginGame", func(t *testing.T) {
		want := NewBeginGame()
		got := roundTrip(t, want)
		assert.Equal(t, want, *got.(*BeginGame))
	})
	t.Run("YourTurn", func(t *testing.T) {
		want := NewYourTurn()
		got := roundTrip(t, want)
		assert.Equal(t, want, *got.(*YourTurn))
	})
	t.Run("Move", func(t *testing.T) {
		want := NewMove([][2]int{{2, 1}, {3, 0}})
		got := roundTrip(t, want)
		assert.Equal(t, want, *got.(*Move))
	})
	t.Run("GameOver", func(t *testing.T) {
		want := NewGameOver("w")
		got := roundTrip(t, want)
		assert.Equal(t, want, *got.(*GameOver))
	})
	t.Run("ErrorMessage", func(t *testing.T) {
		want := NewErrorMessage(ErrorOpponentDisconnected)
		got := roundTrip(t, want)
		assert.Equal(t, want, *got.(*ErrorMessage))
	})
}

func roundTrip(t *testing.T, m Message) Message {
	t.Helper()

	payload, err := Encode(m)
	require.NoError(t, err)

	got, err := Decode(payload)
	require.NoError(t, err)
	return got
}

func TestDecode_UnknownID(t *testing.T) {
	_, err := Decode([]byte(`{"id": 9999}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestRecv_InvalidLengthPrefixIsProtocolError(t *testing.T) {
	r := bufio.NewReader(bytes.NewBufferString("not-a-number\n"))
	_, err := Recv(r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProtocol))
}

func TestFrameCodec_SendRecv(t *testing.T) {
	var buf bytes.Buffer
	want := NewMove([][2]int{{2, 1}, {3, 0}})

	require.NoError(t, Send(&buf, want))

	r := bufio.NewReader(&buf)
	got, err := Recv(r)
	require.NoError(t, err)

	move, ok := got.(*Move)
	require.True(t, ok)
	assert.Equal(t, want.MoveList, move.MoveList)
}

func TestFrameCodec_NoTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Send(&buf, NewBeginGame()))

	raw := buf.Bytes()
	idx := bytes.IndexByte(raw, '\n')
	require.Greater(t, idx, 0)

	payload := raw[idx+1:]
	assert.NotEqual(t, byte('\n'), payload[len(payload)-1])
}
