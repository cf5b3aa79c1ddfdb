package engine

import "errors"

// Rule errors. These are terminal for the request that triggered them and
// never mutate game state.
var (
	ErrGameNotInProgress  = errors.New("game is not in progress")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrMovePending        = errors.New("a roll was already made, move a piece first")
	ErrNoRollYet          = errors.New("roll the dice before moving")
	ErrPieceNotOwned      = errors.New("piece does not belong to player")
	ErrMustRollSixToEnter = errors.New("a six is required to move a piece out of home")
)
