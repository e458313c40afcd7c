// Package wire defines the tagged JSON message schema and the length-prefixed
// frame codec used between the matchmaking server and its clients.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrProtocol wraps a decode failure caused by the frame itself (malformed
// length prefix, invalid JSON, unrecognized message id) rather than by the
// underlying transport. Callers mid-match recover from it locally (log and
// substitute a random move) instead of treating it as a peer disconnect.
var ErrProtocol = errors.New("wire: malformed or unrecognized message")

// ID discriminates message variants on the wire, per spec.md §6.
type ID int

const (
	IDConnectionRequest  ID = 1
	IDWaitingForOpponent ID = 2
	IDGameRules          ID = 3
	IDBeginGame          ID = 4
	IDYourTurn           ID = 5
	IDMove               ID = 6
	IDGameOver           ID = 7
	IDErrorMessage       ID = -99
)

// ErrorName enumerates the error_name values of an ErrorMessage.
type ErrorName string

const (
	ErrorInvalidMsg           ErrorName = "INVALID_MSG"
	ErrorInvalidMove          ErrorName = "INVALID_MOVE"
	ErrorOpponentDisconnected ErrorName = "OPPONENT_DISCONNECTED"
)

// Message is implemented by every wire variant.
type Message interface {
	MessageID() ID
}

// envelope is used only to sniff the id field before dispatching to the
// concrete variant's own json.Unmarshal.
type envelope struct {
	ID ID `json:"id"`
}

// ConnectionRequest is sent client->server to join the matchmaking queue.
type ConnectionRequest struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

func NewConnectionRequest(name string) ConnectionRequest {
	return ConnectionRequest{ID: IDConnectionRequest, Name: name}
}

func (ConnectionRequest) MessageID() ID { return IDConnectionRequest }

// WaitingForOpponent is sent server->client while a pairing is pending.
type WaitingForOpponent struct {
	ID   ID   `json:"id"`
	Flag bool `json:"flag"`
}

func NewWaitingForOpponent(flag bool) WaitingForOpponent {
	return WaitingForOpponent{ID: IDWaitingForOpponent, Flag: flag}
}

func (WaitingForOpponent) MessageID() ID { return IDWaitingForOpponent }

// GameRules announces the parameters of a freshly paired match.
type GameRules struct {
	ID          ID      `json:"id"`
	PlayerColor string  `json:"player_color"`
	NumPlayers  int     `json:"num_players"`
	TimeLimit   float64 `json:"time_limit"`
	BoardSize   int     `json:"board_size"`
}

func NewGameRules(color string, numPlayers int, timeLimit float64, boardSize int) GameRules {
	return GameRules{ID: IDGameRules, PlayerColor: color, NumPlayers: numPlayers, TimeLimit: timeLimit, BoardSize: boardSize}
}

func (GameRules) MessageID() ID { return IDGameRules }

// BeginGame signals the match has started.
type BeginGame struct {
	ID ID `json:"id"`
}

func NewBeginGame() BeginGame { return BeginGame{ID: IDBeginGame} }

func (BeginGame) MessageID() ID { return IDBeginGame }

// YourTurn prompts a client to submit a Move.
type YourTurn struct {
	ID ID `json:"id"`
}

func NewYourTurn() YourTurn { return YourTurn{ID: IDYourTurn} }

func (YourTurn) MessageID() ID { return IDYourTurn }

// Move carries a move as a list of [row, col] pairs, sent client->server as
// a submission and server->client (to both players) as the committed move.
type Move struct {
	ID       ID      `json:"id"`
	MoveList [][2]int `json:"move_list"`
}

func NewMove(locs [][2]int) Move {
	return Move{ID: IDMove, MoveList: locs}
}

func (Move) MessageID() ID { return IDMove }

// GameOver announces the match result: "w", "b" or "d".
type GameOver struct {
	ID     ID     `json:"id"`
	Winner string `json:"winner"`
}

func NewGameOver(winner string) GameOver {
	return GameOver{ID: IDGameOver, Winner: winner}
}

func (GameOver) MessageID() ID { return IDGameOver }

// ErrorMessage reports a protocol, rule or transport error.
type ErrorMessage struct {
	ID        ID        `json:"id"`
	ErrorName ErrorName `json:"error_name"`
}

func NewErrorMessage(name ErrorName) ErrorMessage {
	return ErrorMessage{ID: IDErrorMessage, ErrorName: name}
}

func (ErrorMessage) MessageID() ID { return IDErrorMessage }

// Encode marshals a Message to its JSON payload.
func Encode(m Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", m, err)
	}
	return b, nil
}

// Decode sniffs the id field of a JSON payload and unmarshals it into the
// matching concrete Message variant. An unrecognized id is reported as an
// error; the caller is expected to reply with ErrorInvalidMsg.
func Decode(payload []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w: %w", ErrProtocol, err)
	}

	var m Message
	switch env.ID {
	case IDConnectionRequest:
		m = &ConnectionRequest{}
	case IDWaitingForOpponent:
		m = &WaitingForOpponent{}
	case IDGameRules:
		m = &GameRules{}
	case IDBeginGame:
		m = &BeginGame{}
	case IDYourTurn:
		m = &YourTurn{}
	case IDMove:
		m = &Move{}
	case IDGameOver:
		m = &GameOver{}
	case IDErrorMessage:
		m = &ErrorMessage{}
	default:
		return nil, fmt.Errorf("unknown message id %d: %w", env.ID, ErrProtocol)
	}

	if err := json.Unmarshal(payload, m); err != nil {
		return nil, fmt.Errorf("decode %T: %w: %w", m, ErrProtocol, err)
	}
	return m, nil
}
