package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ludoroyale/ludo-services/internal/comm"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/models"
)

// LobbyService handles game creation, joining and start gating.
type LobbyService struct {
	games   GameStore
	players PlayerStore
	pieces  PieceStore
	locks   *GameLocks
	events  EventPublisher
}

func NewLobbyService(games GameStore, players PlayerStore, pieces PieceStore, locks *GameLocks) *LobbyService {
	return &LobbyService{games: games, players: players, pieces: pieces, locks: locks}
}

// SetEventPublisher enables game event publishing. Nil is allowed.
func (s *LobbyService) SetEventPublisher(events EventPublisher) {
	s.events = events
}

func (s *LobbyService) CreateGame(ctx context.Context) (*models.Game, error) {
	game := &models.Game{
		ID:     uuid.New().String(),
		Status: models.StatusWaiting,
	}
	if err := s.games.CreateGame(ctx, game); err != nil {
		return nil, err
	}
	log.Infof("game %s created", game.ID)
	return game, nil
}

// JoinGame adds a named player to a waiting game and provisions their
// four pieces at home. Turn order is assigned densely in join order.
func (s *LobbyService) JoinGame(ctx context.Context, gameID, playerName string) (*models.Player, error) {
	release, err := s.locks.Acquire(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer release()

	game, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil || game.Status != models.StatusWaiting {
		return nil, ErrNotJoinable
	}

	count, err := s.players.CountPlayersByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if count >= MaxPlayers {
		return nil, ErrGameFull
	}

	player := &models.Player{
		ID:        uuid.New().String(),
		GameID:    gameID,
		Name:      playerName,
		TurnOrder: count + 1,
	}
	if err := s.players.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	pieces := make([]*models.Piece, 0, PiecesPerPlayer)
	for i := 0; i < PiecesPerPlayer; i++ {
		pieces = append(pieces, &models.Piece{
			ID:            uuid.New().String(),
			OwnerPlayerID: player.ID,
			Position:      0,
		})
	}
	if err := s.pieces.CreatePieces(ctx, pieces); err != nil {
		// Partial join leaves an orphaned player row with no pieces; the
		// game remains playable for everyone else.
		return nil, err
	}

	log.Infof("player %s (%s) joined game %s as seat %d", player.ID, playerName, gameID, player.TurnOrder)
	s.publish(comm.GameEvent{
		Type:       comm.EventPlayerJoined,
		GameID:     gameID,
		PlayerID:   player.ID,
		PlayerName: playerName,
		TurnIndex:  player.TurnOrder,
		Timestamp:  time.Now().Unix(),
	})
	return player, nil
}

// StartGame transitions a waiting game with enough players to
// in_progress, handing the first turn to seat 1. Re-starting a running
// game is rejected.
func (s *LobbyService) StartGame(ctx context.Context, gameID string) (*models.Game, error) {
	release, err := s.locks.Acquire(ctx, gameID)
	if err != nil {
		return nil, err
	}
	defer release()

	game, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != models.StatusWaiting {
		return nil, ErrAlreadyStarted
	}

	count, err := s.players.CountPlayersByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if count < MinPlayers {
		return nil, ErrTooFewPlayers
	}

	if err := s.games.StartGame(ctx, gameID, 1); err != nil {
		return nil, err
	}

	game.Status = models.StatusInProgress
	game.TurnState = models.TurnRollPending
	game.CurrentTurnIndex = 1

	log.Infof("game %s started with %d players", gameID, count)
	s.publish(comm.GameEvent{
		Type:      comm.EventGameStarted,
		GameID:    gameID,
		TurnIndex: 1,
		Timestamp: time.Now().Unix(),
	})
	return game, nil
}

// GetState hydrates the full game view: the game row plus its players in
// turn order, each carrying their pieces.
func (s *LobbyService) GetState(ctx context.Context, gameID string) (*GameView, error) {
	game, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}

	players, err := s.players.GetPlayersByGameID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	view := &GameView{
		GameID:           game.ID,
		Status:           game.Status,
		TurnState:        game.TurnState,
		CurrentTurnIndex: game.CurrentTurnIndex,
		Players:          []*PlayerView{},
	}
	if game.LastDiceRoll.Valid {
		roll := int(game.LastDiceRoll.Int64)
		view.LastDiceRoll = &roll
	}

	for _, p := range players {
		pieces, err := s.pieces.GetPiecesByOwnerID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		pv := &PlayerView{
			PlayerID:  p.ID,
			Name:      p.Name,
			TurnOrder: p.TurnOrder,
			Pieces:    []*PieceView{},
		}
		for _, pc := range pieces {
			pv.Pieces = append(pv.Pieces, &PieceView{PieceID: pc.ID, Position: pc.Position})
		}
		view.Players = append(view.Players, pv)
	}
	return view, nil
}

func (s *LobbyService) publish(event comm.GameEvent) {
	if s.events != nil {
		s.events.PublishGameEvent(event)
	}
}

// GameView is the state payload returned to clients.
type GameView struct {
	GameID           string        `json:"game_id"`
	Status           string        `json:"status"`
	TurnState        string        `json:"turn_state,omitempty"`
	CurrentTurnIndex int           `json:"current_turn_index"`
	LastDiceRoll     *int          `json:"last_dice_roll"`
	Players          []*PlayerView `json:"players"`
}

type PlayerView struct {
	PlayerID  string       `json:"player_id"`
	Name      string       `json:"player_name"`
	TurnOrder int          `json:"turn_order"`
	Pieces    []*PieceView `json:"pieces"`
}

type PieceView struct {
	PieceID  string `json:"piece_id"`
	Position int    `json:"position"`
}
