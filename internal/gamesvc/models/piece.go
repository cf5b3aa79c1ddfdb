package models

import "time"

type Piece struct {
	ID            string    `json:"piece_id"`        // Primary key (uuid)
	OwnerPlayerID string    `json:"owner_player_id"` // FK to players(id)
	Position      int       `json:"position"`        // 0 = at home, positive = track offset
	CreatedAt     time.Time `json:"created_at"`
}

// AtHome reports whether the piece has not yet entered the track.
func (p *Piece) AtHome() bool {
	return p.Position == 0
}
