package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludoroyale/ludo-services/internal/gamesvc/models"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/service"
)

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

// CreatePlayer inserts a player for a game that is still waiting. The
// CTE locks the game row and enforces status='waiting', so a join that
// races with a start cannot add a player to a running game.
func (s *PlayerStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	const query = `
WITH locked_game AS (
  SELECT id
  FROM games
  WHERE id = $2
    AND status = 'waiting'
  FOR UPDATE
)
INSERT INTO players (id, game_id, player_name, turn_order)
SELECT $1, lg.id, $3, $4
FROM locked_game lg
RETURNING created_at;
`
	err := s.db.QueryRow(ctx, query,
		player.ID, player.GameID, player.Name, player.TurnOrder,
	).Scan(&player.CreatedAt)
	if err != nil {
		// zero rows means the game isn't waiting (or doesn't exist)
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrNotJoinable
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "unique_game_turn_order" {
			return fmt.Errorf("turn order %d is already taken for game %s: %w", player.TurnOrder, player.GameID, err)
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (s *PlayerStore) GetPlayerByID(ctx context.Context, playerID string) (*models.Player, error) {
	query := `
		SELECT id, game_id, player_name, turn_order, created_at
		FROM players
		WHERE id = $1
	`

	player := &models.Player{}
	err := s.db.QueryRow(ctx, query, playerID).Scan(
		&player.ID,
		&player.GameID,
		&player.Name,
		&player.TurnOrder,
		&player.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Player not found
		}
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	return player, nil
}

func (s *PlayerStore) GetPlayersByGameID(ctx context.Context, gameID string) ([]*models.Player, error) {
	query := `
		SELECT id, game_id, player_name, turn_order, created_at
		FROM players
		WHERE game_id = $1
		ORDER BY turn_order
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var p models.Player
		err := rows.Scan(
			&p.ID,
			&p.GameID,
			&p.Name,
			&p.TurnOrder,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		players = append(players, &p)
	}

	return players, rows.Err()
}

func (s *PlayerStore) CountPlayersByGameID(ctx context.Context, gameID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM players WHERE game_id = $1`, gameID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}
