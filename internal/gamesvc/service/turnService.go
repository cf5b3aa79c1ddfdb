package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ludoroyale/ludo-services/internal/comm"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/engine"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/history"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/models"
)

// CaptureHook is called before a move commits, with the destination and
// every piece belonging to other players. Reserved for a future capture
// rule; no hook is installed today and nothing evaluates opponents.
type CaptureHook func(destination int, opponentPieces []*models.Piece)

// TurnService coordinates one roll or move operation: it serializes
// access per game, hydrates a consistent snapshot, delegates rule
// evaluation to the engine and commits the outcome atomically.
type TurnService struct {
	games   GameStore
	players PlayerStore
	pieces  PieceStore
	dice    engine.Dice
	locks   *GameLocks

	events      EventPublisher
	history     HistoryRecorder
	captureHook CaptureHook
}

func NewTurnService(games GameStore, players PlayerStore, pieces PieceStore, dice engine.Dice, locks *GameLocks) *TurnService {
	return &TurnService{games: games, players: players, pieces: pieces, dice: dice, locks: locks}
}

// SetEventPublisher enables game event publishing. Nil is allowed.
func (s *TurnService) SetEventPublisher(events EventPublisher) {
	s.events = events
}

// SetHistoryRecorder enables the turn audit trail. Nil is allowed.
func (s *TurnService) SetHistoryRecorder(h HistoryRecorder) {
	s.history = h
}

// SetCaptureHook installs the pre-commit capture extension point.
func (s *TurnService) SetCaptureHook(hook CaptureHook) {
	s.captureHook = hook
}

// RollDice rolls for the player holding the current turn. The roll is
// persisted but the turn does not advance; a move must follow.
func (s *TurnService) RollDice(ctx context.Context, gameID, playerID string) (int, error) {
	release, err := s.locks.Acquire(ctx, gameID)
	if err != nil {
		return 0, err
	}
	defer release()

	game, player, err := s.hydrate(ctx, gameID, playerID)
	if err != nil {
		return 0, err
	}

	if err := engine.ValidateRoll(game, player); err != nil {
		return 0, err
	}

	roll := s.dice.Roll()
	if err := s.games.SetDiceRoll(ctx, gameID, roll); err != nil {
		return 0, err
	}

	log.Infof("game %s: player %s rolled %d", gameID, playerID, roll)
	s.record(ctx, history.Entry{
		GameID:    gameID,
		PlayerID:  playerID,
		Action:    history.ActionRoll,
		DiceRoll:  roll,
		TurnIndex: game.CurrentTurnIndex,
	})
	s.publish(comm.GameEvent{
		Type:      comm.EventDiceRolled,
		GameID:    gameID,
		PlayerID:  playerID,
		DiceRoll:  roll,
		TurnIndex: game.CurrentTurnIndex,
		Timestamp: time.Now().Unix(),
	})
	return roll, nil
}

// MoveResult is the outcome of a committed move.
type MoveResult struct {
	NewPosition   int `json:"new_position"`
	NextTurnIndex int `json:"next_turn_index"`
}

// MovePiece applies the pending roll to one of the player's pieces. The
// piece position, the advanced turn and the cleared roll commit as a
// single unit; on any failure no partial write remains visible.
func (s *TurnService) MovePiece(ctx context.Context, gameID, playerID, pieceID string) (*MoveResult, error) {
	release, err := s.locks.Acquire(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer release()

	game, player, err := s.hydrate(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	piece, err := s.pieces.GetPieceByID(ctx, pieceID)
	if err != nil {
		return nil, err
	}
	if piece == nil {
		return nil, ErrPieceNotFound
	}

	newPosition, err := engine.ComputeMove(game, player, piece)
	if err != nil {
		return nil, err
	}

	count, err := s.players.CountPlayersByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	nextTurnIndex := engine.AdvanceTurn(game.CurrentTurnIndex, count)

	if s.captureHook != nil {
		all, err := s.pieces.GetPiecesByGameID(ctx, gameID)
		if err != nil {
			return nil, err
		}
		var opponents []*models.Piece
		for _, p := range all {
			if p.OwnerPlayerID != playerID {
				opponents = append(opponents, p)
			}
		}
		s.captureHook(newPosition, opponents)
	}

	if err := s.games.ApplyMove(ctx, gameID, pieceID, newPosition, nextTurnIndex); err != nil {
		return nil, err
	}

	log.Infof("game %s: player %s moved piece %s to %d, next turn %d",
		gameID, playerID, pieceID, newPosition, nextTurnIndex)
	s.record(ctx, history.Entry{
		GameID:      gameID,
		PlayerID:    playerID,
		Action:      history.ActionMove,
		PieceID:     pieceID,
		DiceRoll:    game.DiceRoll(),
		NewPosition: newPosition,
		TurnIndex:   game.CurrentTurnIndex,
	})
	s.publish(comm.GameEvent{
		Type:        comm.EventPieceMoved,
		GameID:      gameID,
		PlayerID:    playerID,
		PieceID:     pieceID,
		NewPosition: newPosition,
		TurnIndex:   nextTurnIndex,
		Timestamp:   time.Now().Unix(),
	})
	return &MoveResult{NewPosition: newPosition, NextTurnIndex: nextTurnIndex}, nil
}

// hydrate loads the game and the acting player, checking the player
// belongs to the game.
func (s *TurnService) hydrate(ctx context.Context, gameID, playerID string) (*models.Game, *models.Player, error) {
	game, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if game == nil {
		return nil, nil, ErrGameNotFound
	}

	player, err := s.players.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	if player == nil || player.GameID != gameID {
		return nil, nil, ErrPlayerNotFound
	}
	return game, player, nil
}

func (s *TurnService) record(ctx context.Context, entry history.Entry) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, entry); err != nil {
		log.Errorf("failed to record history for game %s: %v", entry.GameID, err)
	}
}

func (s *TurnService) publish(event comm.GameEvent) {
	if s.events != nil {
		s.events.PublishGameEvent(event)
	}
}
