package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/ludoroyale/ludo-services/internal/comm"
)

// Broker consumes game events from NATS and fans each one out to the
// sockets subscribed to that game's room.
type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetRoomSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool), fncGetRoomSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetRoomSockets: fncGetRoomSockets,
	}
}

// Subscribe consumes from the game service event topic.
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) handleMessages(msgNats *nats.Msg) {
	event := &comm.GameEvent{}
	if err := json.Unmarshal(msgNats.Data, event); err != nil {
		log.Errorf("Error decoding game event: %s", err)
		return
	}

	switch event.Type {
	case comm.EventPlayerJoined, comm.EventGameStarted, comm.EventDiceRolled, comm.EventPieceMoved:
		b.fanOut(event, msgNats.Data)
	default:
		log.Errorf("unknown game event type: %s", event.Type)
	}
}

// fanOut writes the raw event to every socket in the game's room.
func (b *Broker) fanOut(event *comm.GameEvent, raw []byte) {
	sockets, ok := b.GetRoomSockets(event.GameID)
	if !ok {
		return
	}

	for _, socketId := range sockets {
		conn, ok := b.GetConnection(socketId)
		if !ok {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			log.Errorf("failed to write event to socket %s: %v", socketId, err)
		}
	}
}
