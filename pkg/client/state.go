// Package client implements the player-side mirror of the match engine's
// state machine: connect, wait for pairing, receive the game rules, then
// drive a local board in lockstep with the server's broadcasts, invoking a
// local AI on demand. Grounded in
// original_source/src/run_checkers_client.py and players/interface.py's
// AbstractPlayer, in the channel-driven driver idiom of morlock's
// pkg/engine/console.Driver.
package client

// State is a step of the client's state machine, mirroring pkg/match.State
// from the player's side:
//
//	NOT_CONNECTED → CONNECTED → FOUND_GAME → GAME_LAUNCHED → PLAYING → GAME_OVER
type State int

const (
	NotConnected State = iota
	Connected
	FoundGame
	GameLaunched
	Playing
	GameOver
)

func (s State) String() string {
	switch s {
	case NotConnected:
		return "NOT_CONNECTED"
	case Connected:
		return "CONNECTED"
	case FoundGame:
		return "FOUND_GAME"
	case GameLaunched:
		return "GAME_LAUNCHED"
	case Playing:
		return "PLAYING"
	case GameOver:
		return "GAME_OVER"
	default:
		return "?"
	}
}
