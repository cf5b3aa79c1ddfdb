package models

import (
	"database/sql"
	"time"
)

// Game status values
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
)

// Turn sub-state while a game is in progress. ROLL_PENDING means the
// current player still owes a dice roll, MOVE_PENDING means a roll was
// made and exactly one move is owed before the turn advances.
const (
	TurnRollPending = "roll_pending"
	TurnMovePending = "move_pending"
)

type Game struct {
	ID               string        `json:"game_id"`            // Primary key (uuid)
	Status           string        `json:"status"`             // 'waiting', 'in_progress'
	TurnState        string        `json:"turn_state"`         // 'roll_pending', 'move_pending' (meaningful while in_progress)
	CurrentTurnIndex int           `json:"current_turn_index"` // 1-based seat of the player to act
	LastDiceRoll     sql.NullInt64 `json:"-"`                  // set only while turn_state = 'move_pending'
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// DiceRoll returns the pending roll, or 0 when no move is owed.
func (g *Game) DiceRoll() int {
	if !g.LastDiceRoll.Valid {
		return 0
	}
	return int(g.LastDiceRoll.Int64)
}
