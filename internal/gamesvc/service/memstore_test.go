package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ludoroyale/ludo-services/internal/gamesvc/models"
)

// memStore is an in-memory implementation of the repository interfaces
// used by the service tests. ApplyMove is atomic under the mutex, and
// failApplyMove simulates a storage failure before any write lands.
type memStore struct {
	mu         sync.Mutex
	games      map[string]*models.Game
	players    map[string]*models.Player
	pieces     map[string]*models.Piece
	pieceOrder []string

	failApplyMove bool
}

func newMemStore() *memStore {
	return &memStore{
		games:   make(map[string]*models.Game),
		players: make(map[string]*models.Player),
		pieces:  make(map[string]*models.Piece),
	}
}

func copyGame(g *models.Game) *models.Game {
	c := *g
	return &c
}

func (m *memStore) CreateGame(ctx context.Context, game *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[game.ID] = copyGame(game)
	return nil
}

func (m *memStore) GetGameByID(ctx context.Context, gameID string) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return nil, nil
	}
	return copyGame(g), nil
}

func (m *memStore) StartGame(ctx context.Context, gameID string, firstTurnIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok || g.Status != models.StatusWaiting {
		return ErrAlreadyStarted
	}
	g.Status = models.StatusInProgress
	g.TurnState = models.TurnRollPending
	g.CurrentTurnIndex = firstTurnIndex
	return nil
}

func (m *memStore) SetDiceRoll(ctx context.Context, gameID string, roll int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok || g.Status != models.StatusInProgress || g.TurnState != models.TurnRollPending {
		return ErrGameNotFound
	}
	g.TurnState = models.TurnMovePending
	g.LastDiceRoll.Int64 = int64(roll)
	g.LastDiceRoll.Valid = true
	return nil
}

func (m *memStore) ApplyMove(ctx context.Context, gameID, pieceID string, newPosition, nextTurnIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failApplyMove {
		return errors.New("storage unavailable")
	}
	g, ok := m.games[gameID]
	if !ok || g.TurnState != models.TurnMovePending {
		return ErrGameNotFound
	}
	p, ok := m.pieces[pieceID]
	if !ok {
		return ErrPieceNotFound
	}
	p.Position = newPosition
	g.CurrentTurnIndex = nextTurnIndex
	g.TurnState = models.TurnRollPending
	g.LastDiceRoll.Valid = false
	g.LastDiceRoll.Int64 = 0
	return nil
}

func (m *memStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[player.GameID]
	if !ok || g.Status != models.StatusWaiting {
		return ErrNotJoinable
	}
	c := *player
	m.players[player.ID] = &c
	return nil
}

func (m *memStore) GetPlayerByID(ctx context.Context, playerID string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[playerID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *memStore) GetPlayersByGameID(ctx context.Context, gameID string) ([]*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Player
	for _, p := range m.players {
		if p.GameID == gameID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TurnOrder < out[j].TurnOrder })
	return out, nil
}

func (m *memStore) CountPlayersByGameID(ctx context.Context, gameID string) (int, error) {
	players, _ := m.GetPlayersByGameID(ctx, gameID)
	return len(players), nil
}

func (m *memStore) CreatePieces(ctx context.Context, pieces []*models.Piece) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pieces {
		c := *p
		m.pieces[p.ID] = &c
		m.pieceOrder = append(m.pieceOrder, p.ID)
	}
	return nil
}

func (m *memStore) GetPieceByID(ctx context.Context, pieceID string) (*models.Piece, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pieces[pieceID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *memStore) GetPiecesByOwnerID(ctx context.Context, ownerPlayerID string) ([]*models.Piece, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Piece
	for _, id := range m.pieceOrder {
		if p := m.pieces[id]; p.OwnerPlayerID == ownerPlayerID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memStore) GetPiecesByGameID(ctx context.Context, gameID string) ([]*models.Piece, error) {
	m.mu.Lock()
	owners := make(map[string]bool)
	for _, p := range m.players {
		if p.GameID == gameID {
			owners[p.ID] = true
		}
	}
	var out []*models.Piece
	for _, id := range m.pieceOrder {
		if p := m.pieces[id]; owners[p.OwnerPlayerID] {
			c := *p
			out = append(out, &c)
		}
	}
	m.mu.Unlock()
	return out, nil
}

// fakeDice plays back a scripted sequence of rolls.
type fakeDice struct {
	rolls []int
	i     int
}

func (d *fakeDice) Roll() int {
	if d.i >= len(d.rolls) {
		return 1
	}
	roll := d.rolls[d.i]
	d.i++
	return roll
}
