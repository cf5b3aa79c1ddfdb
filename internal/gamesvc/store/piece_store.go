package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ludoroyale/ludo-services/internal/gamesvc/models"
)

type PieceStore struct {
	db *pgxpool.Pool
}

func NewPieceStore(db *pgxpool.Pool) *PieceStore {
	return &PieceStore{db: db}
}

// CreatePieces inserts a player's pieces in one batch.
func (s *PieceStore) CreatePieces(ctx context.Context, pieces []*models.Piece) error {
	batch := &pgx.Batch{}
	for _, p := range pieces {
		batch.Queue(
			`INSERT INTO pieces (id, owner_player_id, position) VALUES ($1, $2, $3)`,
			p.ID, p.OwnerPlayerID, p.Position,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range pieces {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to create pieces: %w", err)
		}
	}
	return nil
}

func (s *PieceStore) GetPieceByID(ctx context.Context, pieceID string) (*models.Piece, error) {
	query := `
		SELECT id, owner_player_id, position, created_at
		FROM pieces
		WHERE id = $1
	`

	piece := &models.Piece{}
	err := s.db.QueryRow(ctx, query, pieceID).Scan(
		&piece.ID,
		&piece.OwnerPlayerID,
		&piece.Position,
		&piece.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Piece not found
		}
		return nil, fmt.Errorf("failed to get piece by ID: %w", err)
	}

	return piece, nil
}

func (s *PieceStore) GetPiecesByOwnerID(ctx context.Context, ownerPlayerID string) ([]*models.Piece, error) {
	query := `
		SELECT id, owner_player_id, position, created_at
		FROM pieces
		WHERE owner_player_id = $1
		ORDER BY created_at
	`

	return s.queryPieces(ctx, query, ownerPlayerID)
}

// GetPiecesByGameID returns every piece on a game's board, across all
// players. Feeds the capture extension point.
func (s *PieceStore) GetPiecesByGameID(ctx context.Context, gameID string) ([]*models.Piece, error) {
	query := `
		SELECT pc.id, pc.owner_player_id, pc.position, pc.created_at
		FROM pieces pc
		JOIN players pl ON pl.id = pc.owner_player_id
		WHERE pl.game_id = $1
		ORDER BY pl.turn_order, pc.created_at
	`

	return s.queryPieces(ctx, query, gameID)
}

func (s *PieceStore) queryPieces(ctx context.Context, query string, arg any) ([]*models.Piece, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pieces []*models.Piece
	for rows.Next() {
		var p models.Piece
		err := rows.Scan(
			&p.ID,
			&p.OwnerPlayerID,
			&p.Position,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, &p)
	}

	return pieces, rows.Err()
}
