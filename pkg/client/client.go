package client

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aelhage/checkersleague/pkg/ai"
	"github.com/aelhage/checkersleague/pkg/board"
	"github.com/aelhage/checkersleague/pkg/wire"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Endpoint is the connection surface a Client needs from the server link.
// A *wire.Conn satisfies this.
type Endpoint interface {
	Send(wire.Message) error
	Recv() (wire.Message, error)
	Close() error
}

// Client drives one player's side of a match: the connection handshake,
// pairing wait, and the turn loop once playing.
type Client struct {
	iox.AsyncCloser

	conn Endpoint
	name string
	ai   ai.Search
	out  chan<- string

	color     board.Color
	b         *board.Board
	timeLimit time.Duration
	state     State

	thinking atomic.Bool // an AI move search is in flight
}

// New constructs a Client. The returned output channel carries status lines
// for the CLI to print (and color), mirroring morlock's console.Driver.
func New(conn Endpoint, name string, search ai.Search) (*Client, <-chan string) {
	out := make(chan string, 16)
	return &Client{
		AsyncCloser: iox.NewAsyncCloser(),
		conn:        conn,
		name:        name,
		ai:          search,
		out:         out,
		state:       NotConnected,
	}, out
}

// State returns the client's current state.
func (c *Client) State() State {
	return c.state
}

// Board returns the client's local view of the board. Nil until GameRules
// has been received.
func (c *Client) Board() *board.Board {
	return c.b
}

// Run sends the initial ConnectionRequest and drives the client's dispatch
// loop until GAME_OVER or the connection breaks.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.out)
	defer c.Close()

	if err := c.conn.Send(wire.NewConnectionRequest(c.name)); err != nil {
		return fmt.Errorf("connection request: %w", err)
	}
	c.state = Connected
	c.out <- fmt.Sprintf("connected as %v, waiting for an opponent", c.name)

	for c.state != GameOver {
		msg, err := c.conn.Recv()
		if err != nil {
			return fmt.Errorf("recv: %w", err)
		}
		c.dispatch(ctx, msg)
	}
	return nil
}

func (c *Client) dispatch(ctx context.Context, msg wire.Message) {
	switch m := msg.(type) {
	case *wire.WaitingForOpponent:
		c.onWaitingForOpponent(m)
	case *wire.GameRules:
		c.onGameRules(m)
	case *wire.BeginGame:
		c.onBeginGame()
	case *wire.YourTurn:
		c.onYourTurn(ctx)
	case *wire.Move:
		c.onMove(m)
	case *wire.GameOver:
		c.onGameOver(m)
	case *wire.ErrorMessage:
		c.onErrorMessage(m)
	default:
		logw.Errorf(ctx, "client: unexpected message %T in state %v", msg, c.state)
	}
}

func (c *Client) onWaitingForOpponent(m *wire.WaitingForOpponent) {
	if c.state != Connected && c.state != FoundGame {
		logw.Errorf(context.Background(), "client: WaitingForOpponent out of state %v, ignored", c.state)
		return
	}
	if m.Flag {
		c.out <- "waiting for an opponent..."
		return
	}
	c.state = FoundGame
	c.out <- "opponent found"
}

func (c *Client) onGameRules(m *wire.GameRules) {
	if c.state != FoundGame {
		logw.Errorf(context.Background(), "client: GameRules out of state %v, ignored", c.state)
		return
	}

	color, ok := board.ParseColor(m.PlayerColor)
	if !ok {
		logw.Errorf(context.Background(), "client: invalid player_color %q", m.PlayerColor)
		return
	}
	b, err := board.New(m.BoardSize)
	if err != nil {
		logw.Errorf(context.Background(), "client: invalid board_size %v: %v", m.BoardSize, err)
		return
	}

	c.color = color
	c.b = b
	c.timeLimit = time.Duration(m.TimeLimit * float64(time.Second))
	c.state = GameLaunched
	c.out <- fmt.Sprintf("playing %v, board %dx%d, time limit %v", c.color, m.BoardSize, m.BoardSize, c.timeLimit)
}

func (c *Client) onBeginGame() {
	if c.state != GameLaunched {
		logw.Errorf(context.Background(), "client: BeginGame out of state %v, ignored", c.state)
		return
	}
	c.state = Playing
	c.out <- "game started"
}

func (c *Client) onYourTurn(ctx context.Context) {
	if c.state != Playing {
		logw.Errorf(ctx, "client: YourTurn out of state %v, ignored", c.state)
		return
	}
	if !c.thinking.CompareAndSwap(false, true) {
		return // already searching for a move
	}

	root := c.b.Fork()
	color, limit := c.color, c.timeLimit
	go func() {
		defer c.thinking.Store(false)

		move, err := c.ai.SelectMove(ctx, root, color, limit)
		if err != nil {
			logw.Errorf(ctx, "client: ai search failed: %v", err)
			return
		}
		if len(move) == 0 {
			// No move found in time: send nothing, the server times it out.
			return
		}
		if err := c.conn.Send(toWireMove(move)); err != nil {
			logw.Errorf(ctx, "client: send move: %v", err)
		}
	}()
}

func (c *Client) onMove(m *wire.Move) {
	if c.state != Playing {
		logw.Errorf(context.Background(), "client: Move out of state %v, ignored", c.state)
		return
	}
	mv := fromWireMove(m.MoveList)
	if !c.b.ExecuteMove(mv) {
		logw.Errorf(context.Background(), "client: could not apply broadcast move %v", mv)
	}
}

func (c *Client) onGameOver(m *wire.GameOver) {
	c.state = GameOver
	c.out <- fmt.Sprintf("game over: %v", m.Winner)
}

func (c *Client) onErrorMessage(m *wire.ErrorMessage) {
	c.out <- fmt.Sprintf("error: %v", m.ErrorName)
	if m.ErrorName == wire.ErrorOpponentDisconnected {
		c.state = GameOver
	}
}

func toWireMove(m board.Move) wire.Message {
	locs := make([][2]int, len(m))
	for i, l := range m {
		locs[i] = [2]int{l.Row, l.Col}
	}
	return wire.NewMove(locs)
}

func fromWireMove(locs [][2]int) board.Move {
	m := make(board.Move, len(locs))
	for i, l := range locs {
		m[i] = board.Location{Row: l[0], Col: l[1]}
	}
	return m
}
