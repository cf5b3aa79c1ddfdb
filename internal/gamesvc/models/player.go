package models

import "time"

type Player struct {
	ID        string    `json:"player_id"`   // Primary key (uuid)
	GameID    string    `json:"game_id"`     // FK to games(id)
	Name      string    `json:"player_name"` // display name
	TurnOrder int       `json:"turn_order"`  // 1-based, dense per game, assigned at join
	CreatedAt time.Time `json:"created_at"`
}
