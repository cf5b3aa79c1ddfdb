// Package history keeps a per-game audit trail of rolls and moves in
// MongoDB. Entries are best-effort and expire via a TTL index, so the
// trail never needs manual cleanup.
package history

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName = "turn_history"
	entryTTL       = 72 * time.Hour
)

const (
	ActionRoll = "roll"
	ActionMove = "move"
)

type Entry struct {
	GameID      string    `bson:"game_id" json:"game_id"`
	PlayerID    string    `bson:"player_id" json:"player_id"`
	Action      string    `bson:"action" json:"action"`
	DiceRoll    int       `bson:"dice_roll,omitempty" json:"dice_roll,omitempty"`
	PieceID     string    `bson:"piece_id,omitempty" json:"piece_id,omitempty"`
	NewPosition int       `bson:"new_position,omitempty" json:"new_position,omitempty"`
	TurnIndex   int       `bson:"turn_index" json:"turn_index"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time `bson:"expires_at" json:"-"`
}

type Store struct {
	col *mongo.Collection
}

// Connect dials MongoDB using MONGODB_URI and returns a history store
// bound to the turn_history collection, with its TTL index in place.
func Connect(ctx context.Context) (*Store, func(), error) {
	mongoURI := os.Getenv("MONGODB_URI")

	uri, err := url.Parse(mongoURI)
	if err != nil {
		return nil, nil, err
	}
	dbName := strings.TrimPrefix(uri.Path, "/")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	store := &Store{col: client.Database(dbName).Collection(collectionName)}
	if err := store.ensureTTLIndex(ctx); err != nil {
		return nil, nil, err
	}

	disconnect := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Errorf("mongo disconnect: %v", err)
		}
	}
	return store, disconnect, nil
}

func (s *Store) ensureTTLIndex(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"expires_at": 1},
		Options: options.Index().SetExpireAfterSeconds(0), // expire at the time stored in expires_at
	}
	_, err := s.col.Indexes().CreateOne(ctx, indexModel)
	return err
}

func (s *Store) Record(ctx context.Context, entry Entry) error {
	now := time.Now()
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(entryTTL)

	_, err := s.col.InsertOne(ctx, entry)
	return err
}

// ListByGame returns the most recent entries for a game, newest first.
func (s *Store) ListByGame(ctx context.Context, gameID string, limit int64) ([]Entry, error) {
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(limit)

	cur, err := s.col.Find(ctx, bson.M{"game_id": gameID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	entries := []Entry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
