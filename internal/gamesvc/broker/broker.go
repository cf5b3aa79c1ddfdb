package broker

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/ludoroyale/ludo-services/internal/comm"
)

// TopicGameEvents carries state-change events from the game service to
// the socket service.
const TopicGameEvents = "game.events"

// Broker publishes game events to NATS for the socket service to fan
// out to connected clients.
type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

func (b *Broker) PublishGameEvent(event comm.GameEvent) {
	bytes, err := json.Marshal(event)
	if err != nil {
		log.Errorf("failed to marshal game event: %v", err)
		return
	}

	if err := b.Conn.Publish(TopicGameEvents, bytes); err != nil {
		log.Errorf("Error publishing to topic %s: %s", TopicGameEvents, err)
	}
}
