package service

import "errors"

const (
	MaxPlayers      = 30
	MinPlayers      = 2
	PiecesPerPlayer = 4
)

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrPieceNotFound  = errors.New("piece not found")

	ErrNotJoinable    = errors.New("game not found or has already started")
	ErrGameFull       = errors.New("game is full")
	ErrTooFewPlayers  = errors.New("cannot start a game with fewer than 2 players")
	ErrAlreadyStarted = errors.New("game has already started")

	// ErrLockBusy means the per-game lock could not be acquired in time.
	// Retryable by the caller.
	ErrLockBusy = errors.New("game is busy, retry shortly")
)
