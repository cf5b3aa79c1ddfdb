package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ludoroyale/ludo-services/internal/comm"
)

// Ws tracks websocket connections and which game room each one watches.
type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	roomMap sync.Map // socketId -> gameId
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage handles a message from a web client.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "join-game":
		s.handleJoinGame(socketId, message)
	case "leave-game":
		s.roomMap.Delete(socketId)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleJoinGame subscribes the socket to a game room so it receives
// that game's events.
func (s *Ws) handleJoinGame(socketId string, msg *comm.WSMessage) {
	var payload comm.JoinRoom
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: invalid join-game payload %s", err)
		return
	}

	if payload.GameID == "" {
		log.Error("Invalid join-game payload: missing game_id")
		return
	}

	s.StoreRoom(socketId, payload.GameID)
	log.Infof("socket %s joined room for game %s", socketId, payload.GameID)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreRoom(socketId string, gameId string) {
	s.roomMap.Store(socketId, gameId)
}

func (s *Ws) GetRoom(socketId string) (string, bool) {
	room, ok := s.roomMap.Load(socketId)
	if !ok {
		return "", false
	}
	return room.(string), true
}

// GetRoomSockets returns every socket watching the given game.
func (s *Ws) GetRoomSockets(gameId string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == gameId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}
