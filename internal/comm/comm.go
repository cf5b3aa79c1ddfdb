package comm

import "encoding/json"

// WSMessage is the envelope for messages between web clients and the
// socket service.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "join-game"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// Game event types published by the game service over NATS and fanned
// out to the sockets subscribed to the game room.
const (
	EventPlayerJoined = "player-joined"
	EventGameStarted  = "game-started"
	EventDiceRolled   = "dice-rolled"
	EventPieceMoved   = "piece-moved"
)

type GameEvent struct {
	Type        string `json:"type"`
	GameID      string `json:"game_id"`
	PlayerID    string `json:"player_id,omitempty"`
	PlayerName  string `json:"player_name,omitempty"`
	PieceID     string `json:"piece_id,omitempty"`
	DiceRoll    int    `json:"dice_roll,omitempty"`
	NewPosition int    `json:"new_position,omitempty"`
	TurnIndex   int    `json:"turn_index,omitempty"`
	Timestamp   int64  `json:"timestamp"`
}

// JoinRoom is the payload of a "join-game" message from a web client
// that wants to receive events for one game.
type JoinRoom struct {
	GameID string `json:"game_id"`
}
