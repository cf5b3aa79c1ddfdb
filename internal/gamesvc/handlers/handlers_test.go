package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"

	"github.com/ludoroyale/ludo-services/internal/gamesvc/models"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/service"
)

// testStore is a minimal in-memory repository backing the HTTP tests.
type testStore struct {
	mu      sync.Mutex
	games   map[string]*models.Game
	players map[string]*models.Player
	pieces  map[string]*models.Piece
	order   []string
}

func newTestStore() *testStore {
	return &testStore{
		games:   make(map[string]*models.Game),
		players: make(map[string]*models.Player),
		pieces:  make(map[string]*models.Piece),
	}
}

func (m *testStore) CreateGame(ctx context.Context, g *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *g
	m.games[g.ID] = &c
	return nil
}

func (m *testStore) GetGameByID(ctx context.Context, id string) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (m *testStore) StartGame(ctx context.Context, id string, firstTurnIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok || g.Status != models.StatusWaiting {
		return service.ErrAlreadyStarted
	}
	g.Status = models.StatusInProgress
	g.TurnState = models.TurnRollPending
	g.CurrentTurnIndex = firstTurnIndex
	return nil
}

func (m *testStore) SetDiceRoll(ctx context.Context, id string, roll int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok || g.TurnState != models.TurnRollPending {
		return service.ErrGameNotFound
	}
	g.TurnState = models.TurnMovePending
	g.LastDiceRoll.Int64 = int64(roll)
	g.LastDiceRoll.Valid = true
	return nil
}

func (m *testStore) ApplyMove(ctx context.Context, gameID, pieceID string, newPosition, nextTurnIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return service.ErrGameNotFound
	}
	p, ok := m.pieces[pieceID]
	if !ok {
		return service.ErrPieceNotFound
	}
	p.Position = newPosition
	g.CurrentTurnIndex = nextTurnIndex
	g.TurnState = models.TurnRollPending
	g.LastDiceRoll.Valid = false
	return nil
}

func (m *testStore) CreatePlayer(ctx context.Context, p *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[p.GameID]
	if !ok || g.Status != models.StatusWaiting {
		return service.ErrNotJoinable
	}
	c := *p
	m.players[p.ID] = &c
	return nil
}

func (m *testStore) GetPlayerByID(ctx context.Context, id string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *testStore) GetPlayersByGameID(ctx context.Context, gameID string) ([]*models.Player, error) {
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

func (m *testStore) CountPlayersByGameID(ctx context.Context, gameID string) (int, error) {
	players, _ := m.GetPlayersByGameID(ctx, gameID)
	return len(players), nil
}

func (m *testStore) CreatePieces(ctx context.Context, pieces []*models.Piece) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pieces {
		c := *p
		m.pieces[p.ID] = &c
		m.order = append(m.order, p.ID)
	}
	return nil
}

func (m *testStore) GetPieceByID(ctx context.Context, id string) (*models.Piece, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pieces[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (m *testStore) GetPiecesByOwnerID(ctx context.Context, ownerID string) ([]*models.Piece, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Piece
	for _, id := range m.order {
		if p := m.pieces[id]; p.OwnerPlayerID == ownerID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *testStore) GetPiecesByGameID(ctx context.Context, gameID string) ([]*models.Piece, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Piece
	for _, id := range m.order {
		p := m.pieces[id]
		owner, ok := m.players[p.OwnerPlayerID]
		if ok && owner.GameID == gameID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

type scriptedDice struct {
	rolls []int
	i     int
}

func (d *scriptedDice) Roll() int {
	if d.i >= len(d.rolls) {
		return 1
	}
	roll := d.rolls[d.i]
	d.i++
	return roll
}

func newTestServer(t *testing.T, rolls ...int) (*chi.Mux, *testStore) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	store := newTestStore()
	locks := service.NewGameLocks(time.Second)
	lobby := service.NewLobbyService(store, store, store, locks)
	turns := service.NewTurnService(store, store, store, &scriptedDice{rolls: rolls}, locks)

	h := NewHandler(lobby, turns, nil)
	h.InitAuth()

	r := chi.NewRouter()
	h.SetRoutes(r)
	return r, store
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var rsp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rsp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, rsp.Data
}

func createGame(t *testing.T, r http.Handler) string {
	t.Helper()
	rec, data := doJSON(t, r, http.MethodPost, "/v1/games", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game: status %d", rec.Code)
	}
	gameID, _ := data["game_id"].(string)
	if gameID == "" {
		t.Fatal("create game: missing game_id")
	}
	return gameID
}

func joinGame(t *testing.T, r http.Handler, gameID, name string) string {
	t.Helper()
	rec, data := doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/join",
		map[string]string{"player_name": name})
	if rec.Code != http.StatusOK {
		t.Fatalf("join %s: status %d", name, rec.Code)
	}
	playerID, _ := data["player_id"].(string)
	if playerID == "" {
		t.Fatalf("join %s: missing player_id", name)
	}
	return playerID
}

func firstPieceOf(t *testing.T, store *testStore, playerID string) string {
	t.Helper()
	pieces, err := store.GetPiecesByOwnerID(context.Background(), playerID)
	if err != nil || len(pieces) == 0 {
		t.Fatalf("no pieces for %s", playerID)
	}
	return pieces[0].ID
}

func TestFullGameFlow(t *testing.T) {
	r, store := newTestServer(t, 6)

	gameID := createGame(t, r)
	aliceID := joinGame(t, r, gameID, "Alice")
	joinGame(t, r, gameID, "Bob")

	rec, _ := doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: status %d", rec.Code)
	}

	rec, data := doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/roll-dice",
		map[string]string{"player_id": aliceID})
	if rec.Code != http.StatusOK {
		t.Fatalf("roll: status %d body %s", rec.Code, rec.Body.String())
	}
	if roll := data["dice_roll"].(float64); roll != 6 {
		t.Fatalf("expected scripted roll 6, got %v", roll)
	}

	pieceID := firstPieceOf(t, store, aliceID)
	rec, data = doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/move-piece",
		map[string]string{"player_id": aliceID, "piece_id": pieceID})
	if rec.Code != http.StatusOK {
		t.Fatalf("move: status %d body %s", rec.Code, rec.Body.String())
	}
	if pos := data["new_position"].(float64); pos != 7 {
		t.Errorf("expected new position 7, got %v", pos)
	}
	if next := data["next_turn_index"].(float64); next != 2 {
		t.Errorf("expected next turn 2, got %v", next)
	}

	// state reflects the committed move
	rec, state := doJSON(t, r, http.MethodGet, "/v1/games/"+gameID+"/state", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("state: status %d", rec.Code)
	}
	if state["current_turn_index"].(float64) != 2 {
		t.Errorf("state: expected turn 2, got %v", state["current_turn_index"])
	}
	if state["last_dice_roll"] != nil {
		t.Errorf("state: expected cleared roll, got %v", state["last_dice_roll"])
	}
}

func TestEntryRuleOverHTTP(t *testing.T) {
	r, store := newTestServer(t, 3)

	gameID := createGame(t, r)
	aliceID := joinGame(t, r, gameID, "Alice")
	joinGame(t, r, gameID, "Bob")
	doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/start", nil)

	doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/roll-dice",
		map[string]string{"player_id": aliceID})

	pieceID := firstPieceOf(t, store, aliceID)
	rec, _ := doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/move-piece",
		map[string]string{"player_id": aliceID, "piece_id": pieceID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for entry on a 3, got %d", rec.Code)
	}
}

func TestRollOutOfTurnOverHTTP(t *testing.T) {
	r, _ := newTestServer(t, 4)

	gameID := createGame(t, r)
	joinGame(t, r, gameID, "Alice")
	bobID := joinGame(t, r, gameID, "Bob")
	doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/start", nil)

	rec, _ := doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/roll-dice",
		map[string]string{"player_id": bobID})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for roll out of turn, got %d", rec.Code)
	}
}

func TestLobbyErrorsOverHTTP(t *testing.T) {
	r, _ := newTestServer(t)

	// unknown game
	rec, _ := doJSON(t, r, http.MethodGet, "/v1/games/missing/state", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("state of missing game: expected 404, got %d", rec.Code)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/v1/games/missing/join",
		map[string]string{"player_name": "Alice"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("join missing game: expected 404, got %d", rec.Code)
	}

	// too few players
	gameID := createGame(t, r)
	joinGame(t, r, gameID, "Alice")
	rec, _ = doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/start", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("start with 1 player: expected 400, got %d", rec.Code)
	}

	// double start
	joinGame(t, r, gameID, "Bob")
	doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/start", nil)
	rec, _ = doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/start", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("double start: expected 409, got %d", rec.Code)
	}
}

func TestGameFullOverHTTP(t *testing.T) {
	r, _ := newTestServer(t)

	gameID := createGame(t, r)
	for i := 0; i < service.MaxPlayers; i++ {
		joinGame(t, r, gameID, fmt.Sprintf("player-%d", i+1))
	}

	rec, _ := doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/join",
		map[string]string{"player_name": "one-too-many"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for full game, got %d", rec.Code)
	}
}

func TestBadRequestBodies(t *testing.T) {
	r, _ := newTestServer(t)
	gameID := createGame(t, r)

	rec, _ := doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/join", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("join without name: expected 400, got %d", rec.Code)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/roll-dice", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("roll without player: expected 400, got %d", rec.Code)
	}

	rec, _ = doJSON(t, r, http.MethodPost, "/v1/games/"+gameID+"/move-piece",
		map[string]string{"player_id": "p"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("move without piece: expected 400, got %d", rec.Code)
	}
}
