package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/ludoroyale/ludo-services/internal/gamesvc/engine"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/history"
	"github.com/ludoroyale/ludo-services/internal/gamesvc/service"
)

const historyLimit = 50

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	lobby     *service.LobbyService
	turns     *service.TurnService
	history   HistoryReader
}

// HistoryReader serves the turn audit trail. Optional; nil disables the
// history route payload.
type HistoryReader interface {
	ListByGame(ctx context.Context, gameID string, limit int64) ([]history.Entry, error)
}

func NewHandler(lobby *service.LobbyService, turns *service.TurnService, hist HistoryReader) *Handler {
	return &Handler{lobby: lobby, turns: turns, history: hist}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.lobby.CreateGame(r.Context())
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "New game created!",
		Code:    http.StatusCreated,
		Data:    map[string]string{"game_id": game.ID},
	})
}

func (h *Handler) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var req struct {
		PlayerName string `json:"player_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerName == "" {
		h.CreateResponse(w, Response{
			Message: "player_name is required",
			Code:    http.StatusBadRequest,
			Error:   "invalid request body",
		})
		return
	}

	player, err := h.lobby.JoinGame(r.Context(), gameID, req.PlayerName)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: req.PlayerName + " has joined the game!",
		Code:    http.StatusOK,
		Data: map[string]interface{}{
			"player_id":  player.ID,
			"turn_order": player.TurnOrder,
		},
	})
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	game, err := h.lobby.StartGame(r.Context(), gameID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "The game has started!",
		Code:    http.StatusOK,
		Data: map[string]interface{}{
			"status":             game.Status,
			"current_turn_index": game.CurrentTurnIndex,
		},
	})
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	view, err := h.lobby.GetState(r.Context(), gameID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "game state",
		Code:    http.StatusOK,
		Data:    view,
	})
}

func (h *Handler) RollDice(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var req struct {
		PlayerID string `json:"player_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		h.CreateResponse(w, Response{
			Message: "player_id is required",
			Code:    http.StatusBadRequest,
			Error:   "invalid request body",
		})
		return
	}

	roll, err := h.turns.RollDice(r.Context(), gameID, req.PlayerID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "dice rolled",
		Code:    http.StatusOK,
		Data:    map[string]int{"dice_roll": roll},
	})
}

func (h *Handler) MovePiece(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	var req struct {
		PlayerID string `json:"player_id"`
		PieceID  string `json:"piece_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" || req.PieceID == "" {
		h.CreateResponse(w, Response{
			Message: "player_id and piece_id are required",
			Code:    http.StatusBadRequest,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.turns.MovePiece(r.Context(), gameID, req.PlayerID, req.PieceID)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "piece moved",
		Code:    http.StatusOK,
		Data:    result,
	})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")

	if h.history == nil {
		h.CreateResponse(w, Response{
			Message: "history is not enabled",
			Code:    http.StatusNotFound,
			Error:   "history store unavailable",
		})
		return
	}

	entries, err := h.history.ListByGame(r.Context(), gameID, historyLimit)
	if err != nil {
		h.errorResponse(w, err)
		return
	}

	h.CreateResponse(w, Response{
		Message: "turn history",
		Code:    http.StatusOK,
		Data:    entries,
	})
}

// errorResponse maps the rule/store error taxonomy onto HTTP statuses.
func (h *Handler) errorResponse(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrPieceNotFound),
		errors.Is(err, service.ErrNotJoinable),
		errors.Is(err, engine.ErrGameNotInProgress),
		errors.Is(err, engine.ErrPieceNotOwned):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrTooFewPlayers),
		errors.Is(err, engine.ErrNoRollYet),
		errors.Is(err, engine.ErrMustRollSixToEnter):
		code = http.StatusBadRequest
	case errors.Is(err, engine.ErrNotYourTurn):
		code = http.StatusForbidden
	case errors.Is(err, service.ErrAlreadyStarted),
		errors.Is(err, engine.ErrMovePending),
		errors.Is(err, service.ErrLockBusy):
		code = http.StatusConflict
	default:
		log.Errorf("internal error: %v", err)
	}

	h.CreateResponse(w, Response{
		Message: err.Error(),
		Code:    code,
		Error:   err.Error(),
	})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "game service is running at port " + os.Getenv("GAME_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}
