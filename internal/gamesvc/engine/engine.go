// Package engine holds the pure turn and movement rules for a Ludo game.
// Functions here operate on a hydrated snapshot of game state and never
// touch storage; the turn service is responsible for loading a consistent
// snapshot and committing the outcome.
package engine

import "github.com/ludoroyale/ludo-services/internal/gamesvc/models"

// ValidateTurnOwner checks that the game is running and the player holds
// the current turn.
func ValidateTurnOwner(game *models.Game, player *models.Player) error {
	if game.Status != models.StatusInProgress {
		return ErrGameNotInProgress
	}
	if player.TurnOrder != game.CurrentTurnIndex {
		return ErrNotYourTurn
	}
	return nil
}

// ValidateRoll checks that player may roll the dice right now. Rolling is
// only legal while the game owes the current player a roll; once a roll
// was made, a move must follow before the next roll.
func ValidateRoll(game *models.Game, player *models.Player) error {
	if err := ValidateTurnOwner(game, player); err != nil {
		return err
	}
	if game.TurnState == models.TurnMovePending {
		return ErrMovePending
	}
	return nil
}

// ComputeMove validates that piece may be moved by the pending roll and
// returns its destination. A piece at home may only enter on a six and
// enters at track position 1 before the roll is applied.
func ComputeMove(game *models.Game, player *models.Player, piece *models.Piece) (int, error) {
	if err := ValidateTurnOwner(game, player); err != nil {
		return 0, err
	}
	if game.TurnState != models.TurnMovePending || !game.LastDiceRoll.Valid {
		return 0, ErrNoRollYet
	}
	if piece.OwnerPlayerID != player.ID {
		return 0, ErrPieceNotOwned
	}

	roll := game.DiceRoll()
	if piece.AtHome() && roll != RollToEnter {
		return 0, ErrMustRollSixToEnter
	}

	// Positions are unbounded: there is no wraparound or home stretch
	// until win detection exists.
	effectiveStart := piece.Position
	if piece.AtHome() {
		effectiveStart = 1
	}
	return effectiveStart + roll, nil
}

// AdvanceTurn returns the seat that acts after the current one, wrapping
// back to 1 after the last player.
func AdvanceTurn(currentTurnIndex, playerCount int) int {
	return (currentTurnIndex % playerCount) + 1
}
