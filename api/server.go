package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/santorini/game/board"
	"github.com/wricardo/santorini/game/engine"
	"github.com/wricardo/santorini/game/service"
	"github.com/wricardo/santorini/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Turn operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetTableState).Methods("GET")
	api.HandleFunc("/sessions/{id}/select", s.handleSelect).Methods("POST")
	api.HandleFunc("/sessions/{id}/action", s.handleAction).Methods("POST")
	api.HandleFunc("/sessions/{id}/end-turn", s.handleEndTurn).Methods("POST")
	api.HandleFunc("/sessions/{id}/god-power", s.handleGodPower).Methods("POST")
	api.HandleFunc("/sessions/{id}/helpful-token", s.handleHelpfulToken).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidConfig), errors.Is(err, engine.ErrUnknownGod),
		errors.Is(err, engine.ErrNotEnoughGround):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGameFaulted), errors.Is(err, board.ErrInvariantViolation):
		return http.StatusInternalServerError
	case errors.Is(err, engine.ErrWrongPhase), errors.Is(err, engine.ErrNoWorkerThere),
		errors.Is(err, engine.ErrNotYourWorker), errors.Is(err, engine.ErrWorkerLocked),
		errors.Is(err, engine.ErrNoPendingOffer), errors.Is(err, engine.ErrNoHelpfulToken),
		errors.Is(err, engine.ErrNoHelpfulBuild), errors.Is(err, engine.ErrUnknownAction),
		errors.Is(err, engine.ErrIllegalAction), errors.Is(err, engine.ErrGameOver),
		errors.Is(err, engine.ErrUnknownPlayer), errors.Is(err, engine.ErrPlayerEliminated):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.ConfigID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil && session.Table != nil {
		s.hub.BroadcastToSession(session.ID, session.Table)
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default)
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if configID := query.Get("config"); configID != "" {
		filtered := make([]*service.SessionInfo, 0, len(sessions))
		for _, session := range sessions {
			if session.ConfigName == configID {
				filtered = append(filtered, session)
			}
		}
		sessions = filtered
	}
	total := len(sessions)

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Turn Handlers

func (s *Server) handleGetTableState(w http.ResponseWriter, r *http.Request) {
	table, err := s.service.GetTableState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, table)
}

type coordinateRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func decodeCoordinate(r *http.Request) (board.Coordinate, error) {
	var req coordinateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return board.Coordinate{}, errors.New("invalid request body")
	}
	if req.Row == nil || req.Col == nil {
		return board.Coordinate{}, errors.New("row and col are required")
	}
	return board.At(*req.Row, *req.Col), nil
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	at, err := decodeCoordinate(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sessionID := mux.Vars(r)["id"]
	result, err := s.service.SelectWorker(r.Context(), sessionID, at)
	s.respondTurn(w, "select", sessionID, result, err)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	at, err := decodeCoordinate(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sessionID := mux.Vars(r)["id"]
	result, err := s.service.ChooseAt(r.Context(), sessionID, at)
	s.respondTurn(w, "action", sessionID, result, err)
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	result, err := s.service.EndTurn(r.Context(), sessionID)
	s.respondTurn(w, "end-turn", sessionID, result, err)
}

func (s *Server) handleGodPower(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accept *bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Accept == nil {
		respondError(w, http.StatusBadRequest, "accept is required")
		return
	}
	sessionID := mux.Vars(r)["id"]
	result, err := s.service.RespondGodPower(r.Context(), sessionID, *req.Accept)
	s.respondTurn(w, "god-power", sessionID, result, err)
}

func (s *Server) handleHelpfulToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Use *bool `json:"use"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Use == nil {
		respondError(w, http.StatusBadRequest, "use is required")
		return
	}
	sessionID := mux.Vars(r)["id"]
	result, err := s.service.DeclareHelpfulToken(r.Context(), sessionID, *req.Use)
	s.respondTurn(w, "helpful-token", sessionID, result, err)
}

// respondTurn logs and publishes a turn result. A rejected action is still a
// 200: the table is unchanged and the reason tells the player why.
func (s *Server) respondTurn(w http.ResponseWriter, op, sessionID string, result *service.TurnResult, err error) {
	if err != nil {
		log.Printf("[TURN] session=%s op=%s error=%v", sessionID, op, err)
		respondServiceError(w, err)
		return
	}

	phase := engine.Phase("")
	if result.Table != nil && result.Table.GameState != nil {
		phase = result.Table.Phase
	}
	if result.Applied {
		log.Printf("[TURN] session=%s op=%s applied phase=%s events=%d", sessionID, op, phase, len(result.Events))
	} else {
		log.Printf("[TURN] session=%s op=%s rejected=%q", sessionID, op, result.Reason)
	}

	if s.hub != nil && (result.Applied || len(result.Events) > 0) {
		s.hub.Publish(result)
	}

	respondJSON(w, http.StatusOK, result)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		name = strings.TrimSuffix(name, ext)
	}

	config, err := s.service.LoadConfig(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var gameConfig engine.GameConfig

	if err := json.NewDecoder(r.Body).Decode(&gameConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if gameConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), gameConfig.Name, &gameConfig); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": gameConfig.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, session.ID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
