package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id                 UUID PRIMARY KEY,
	status             TEXT NOT NULL DEFAULT 'waiting',
	turn_state         TEXT NOT NULL DEFAULT '',
	current_turn_index INT  NOT NULL DEFAULT 0,
	last_dice_roll     INT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT dice_roll_range CHECK (last_dice_roll IS NULL OR last_dice_roll BETWEEN 1 AND 6)
);

CREATE TABLE IF NOT EXISTS players (
	id          UUID PRIMARY KEY,
	game_id     UUID NOT NULL REFERENCES games(id),
	player_name TEXT NOT NULL,
	turn_order  INT  NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT unique_game_turn_order UNIQUE (game_id, turn_order)
);

CREATE TABLE IF NOT EXISTS pieces (
	id              UUID PRIMARY KEY,
	owner_player_id UUID NOT NULL REFERENCES players(id),
	position        INT  NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT position_not_negative CHECK (position >= 0)
);

CREATE INDEX IF NOT EXISTS idx_players_game_id ON players(game_id);
CREATE INDEX IF NOT EXISTS idx_pieces_owner ON pieces(owner_player_id);
`

// EnsureSchema creates the game tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
