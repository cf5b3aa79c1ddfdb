package service

import (
	"context"

	"github.com/ludoroyale/ludo-services/internal/comm"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/history"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/models"
)

// Repository interfaces the services operate against. The pgx
// implementations live in the store package; tests use in-memory fakes.
// Lookups return (nil, nil) when the record does not exist.

type GameStore interface {
	CreateGame(ctx context.Context, game *models.Game) error
	GetGameByID(ctx context.Context, gameID string) (*models.Game, error)

	// StartGame transitions a waiting game to in_progress with the given
	// first turn. Fails with ErrAlreadyStarted if the game is not waiting.
	StartGame(ctx context.Context, gameID string, firstTurnIndex int) error

	// SetDiceRoll records a roll for an in_progress game still owing one.
	SetDiceRoll(ctx context.Context, gameID string, roll int) error

	// ApplyMove commits a move as one atomic unit: the piece position,
	// the advanced turn index and the cleared roll become visible
	// together or not at all.
	ApplyMove(ctx context.Context, gameID, pieceID string, newPosition, nextTurnIndex int) error
}

type PlayerStore interface {
	// CreatePlayer inserts the player, guarded so it only succeeds while
	// the owning game is still waiting (ErrNotJoinable otherwise).
	CreatePlayer(ctx context.Context, player *models.Player) error
	GetPlayerByID(ctx context.Context, playerID string) (*models.Player, error)
	GetPlayersByGameID(ctx context.Context, gameID string) ([]*models.Player, error)
	CountPlayersByGameID(ctx context.Context, gameID string) (int, error)
}

type PieceStore interface {
	CreatePieces(ctx context.Context, pieces []*models.Piece) error
	GetPieceByID(ctx context.Context, pieceID string) (*models.Piece, error)
	GetPiecesByOwnerID(ctx context.Context, ownerPlayerID string) ([]*models.Piece, error)
	GetPiecesByGameID(ctx context.Context, gameID string) ([]*models.Piece, error)
}

// EventPublisher pushes game events to the socket relay. Optional; nil
// disables publishing.
type EventPublisher interface {
	PublishGameEvent(event comm.GameEvent)
}

// HistoryRecorder appends to the turn audit trail. Optional and
// best-effort; failures are logged, never surfaced to the caller.
type HistoryRecorder interface {
	Record(ctx context.Context, entry history.Entry) error
}
