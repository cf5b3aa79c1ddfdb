package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludoroyale/ludo-services/internal/gamesvc/models"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/service"
)

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) CreateGame(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, status, turn_state, current_turn_index)
		VALUES ($1, $2, '', 0)
		RETURNING created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query, game.ID, game.Status).Scan(
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID string) (*models.Game, error) {
	query := `
		SELECT id, status, turn_state, current_turn_index, last_dice_roll, created_at, updated_at
		FROM games
		WHERE id = $1
	`

	game := &models.Game{}
	err := s.db.QueryRow(ctx, query, gameID).Scan(
		&game.ID,
		&game.Status,
		&game.TurnState,
		&game.CurrentTurnIndex,
		&game.LastDiceRoll,
		&game.CreatedAt,
		&game.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Game not found
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	return game, nil
}

// StartGame flips a waiting game to in_progress. The status guard keeps
// a second start from clobbering a running game even across instances.
func (s *GameStore) StartGame(ctx context.Context, gameID string, firstTurnIndex int) error {
	query := `
		UPDATE games
		SET status = 'in_progress', turn_state = 'roll_pending',
		    current_turn_index = $2, last_dice_roll = NULL, updated_at = now()
		WHERE id = $1 AND status = 'waiting'
	`

	tag, err := s.db.Exec(ctx, query, gameID, firstTurnIndex)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrAlreadyStarted
	}
	return nil
}

// SetDiceRoll records a roll. Guarded on turn_state so a racing roll
// from another instance cannot overwrite a pending one.
func (s *GameStore) SetDiceRoll(ctx context.Context, gameID string, roll int) error {
	query := `
		UPDATE games
		SET turn_state = 'move_pending', last_dice_roll = $2, updated_at = now()
		WHERE id = $1 AND status = 'in_progress' AND turn_state = 'roll_pending'
	`

	tag, err := s.db.Exec(ctx, query, gameID, roll)
	if err != nil {
		return fmt.Errorf("failed to set dice roll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrGameNotFound
	}
	return nil
}

// ApplyMove commits piece position, turn advance and roll reset in one
// transaction. Any failure rolls the whole unit back.
func (s *GameStore) ApplyMove(ctx context.Context, gameID, pieceID string, newPosition, nextTurnIndex int) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin move transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE pieces SET position = $2 WHERE id = $1
	`, pieceID, newPosition)
	if err != nil {
		return fmt.Errorf("failed to update piece position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrPieceNotFound
	}

	tag, err = tx.Exec(ctx, `
		UPDATE games
		SET current_turn_index = $2, turn_state = 'roll_pending',
		    last_dice_roll = NULL, updated_at = now()
		WHERE id = $1 AND status = 'in_progress' AND turn_state = 'move_pending'
	`, gameID, nextTurnIndex)
	if err != nil {
		return fmt.Errorf("failed to advance turn: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrGameNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}
	return nil
}
