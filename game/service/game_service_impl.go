package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/santorini/game/board"
	"github.com/wricardo/santorini/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a preset display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new table from a preset, or the default preset
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s' (available: %v)", ErrConfigNotFound, configName, configIDs)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Printf("Created session %s (%s, %dx%d, %d players)",
		sess.ID, config.Name, config.Rows, config.Cols, len(config.Players))

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Table:          tableState(sess),
		GameConfig:     sess.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	log.Printf("Deleted session %s", sessionID)
	return nil
}

// GetTableState returns the current snapshot of a table
func (s *gameServiceImpl) GetTableState(ctx context.Context, sessionID string) (*TableState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return tableState(sess), nil
}

// SelectWorker picks the worker standing on at for the current player
func (s *gameServiceImpl) SelectWorker(ctx context.Context, sessionID string, at board.Coordinate) (*TurnResult, error) {
	return s.play(ctx, sessionID, func(e *engine.GameEngine) (*engine.Result, error) {
		return e.SelectWorker(at)
	})
}

// ChooseAt applies the offered action that targets at
func (s *gameServiceImpl) ChooseAt(ctx context.Context, sessionID string, at board.Coordinate) (*TurnResult, error) {
	return s.play(ctx, sessionID, func(e *engine.GameEngine) (*engine.Result, error) {
		return e.ChooseAt(at)
	})
}

// EndTurn takes the skip option of an active god power
func (s *gameServiceImpl) EndTurn(ctx context.Context, sessionID string) (*TurnResult, error) {
	return s.play(ctx, sessionID, func(e *engine.GameEngine) (*engine.Result, error) {
		return e.ChooseEndTurn()
	})
}

// RespondGodPower answers a pending god power offer
func (s *gameServiceImpl) RespondGodPower(ctx context.Context, sessionID string, accept bool) (*TurnResult, error) {
	return s.play(ctx, sessionID, func(e *engine.GameEngine) (*engine.Result, error) {
		return e.RespondGodPower(accept)
	})
}

// DeclareHelpfulToken spends (or explicitly declines) a helpful token
func (s *gameServiceImpl) DeclareHelpfulToken(ctx context.Context, sessionID string, use bool) (*TurnResult, error) {
	return s.play(ctx, sessionID, func(e *engine.GameEngine) (*engine.Result, error) {
		return e.DeclareHelpfulToken(use)
	})
}

// SweepClocks delivers expired clocks to every session. Sessions without an
// expiry are left untouched and produce no result.
func (s *gameServiceImpl) SweepClocks(ctx context.Context) ([]*TurnResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*TurnResult
	for _, sess := range s.sessions.List() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		sess.mu.Lock()
		out := &TurnResult{SessionID: sess.ID}
		expired, err := deliverExpiry(sess, out)
		if expired {
			out.Table = tableState(sess)
			results = append(results, out)
		}
		sess.mu.Unlock()
		if err != nil {
			return results, fmt.Errorf("session %s: %w", sess.ID, err)
		}
	}
	return results, nil
}

// ListConfigs returns all available table presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific table preset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a table preset
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Table:          tableState(sess),
		GameConfig:     sess.Config,
	}
}

// play runs one engine call under the session lock. A clock that ran out
// since the last call is delivered first and the requested operation is
// dropped, since the turn it was meant for is over.
func (s *gameServiceImpl) play(ctx context.Context, sessionID string, op func(*engine.GameEngine) (*engine.Result, error)) (*TurnResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	out := &TurnResult{SessionID: sess.ID}
	expired, err := deliverExpiry(sess, out)
	if err != nil {
		return nil, err
	}
	if expired {
		out.Reason = "turn clock ran out before the action"
		out.Table = tableState(sess)
		return out, nil
	}

	res, err := op(sess.Engine)
	if err != nil {
		if errors.Is(err, engine.ErrGameFaulted) {
			log.Printf("Session %s halted: %v", sess.ID, err)
		}
		return nil, err
	}

	out.Applied = res.Applied
	out.Reason = res.Reason
	out.Events = append(out.Events, convertEvents(res.Events)...)
	syncClock(sess)
	logOutcome(sess, res)
	out.Table = tableState(sess)
	return out, nil
}

// deliverExpiry eliminates the player whose time bank ran out, if any
func deliverExpiry(sess *Session, out *TurnResult) (bool, error) {
	if sess.Clock == nil || sess.Engine.IsGameOver() {
		return false, nil
	}
	id, ok := sess.Clock.Expired()
	if !ok {
		return false, nil
	}

	res, err := sess.Engine.ExpireClock(id)
	sess.Clock.Remove(id)
	if err != nil {
		return true, err
	}
	log.Printf("Session %s: player %d ran out of time", sess.ID, id)
	out.Events = append(out.Events, convertEvents(res.Events)...)
	syncClock(sess)
	logOutcome(sess, res)
	return true, nil
}

// syncClock points the clock at whoever has to act now
func syncClock(sess *Session) {
	c := sess.Clock
	if c == nil {
		return
	}
	for _, p := range sess.Engine.Players() {
		if p.IsEliminated() {
			c.Remove(p.ID)
		}
	}
	if sess.Engine.IsGameOver() || sess.Engine.Fault() != nil {
		c.Stop()
		return
	}
	c.Start(sess.Engine.CurrentPlayer().ID)
}

func logOutcome(sess *Session, res *engine.Result) {
	for _, ev := range res.Events {
		switch ev.Type {
		case engine.EventEliminated, engine.EventVictory:
			log.Printf("Session %s: %s", sess.ID, ev.Message)
		}
	}
}

func tableState(sess *Session) *TableState {
	t := &TableState{
		SessionID: sess.ID,
		GameState: sess.Engine.Snapshot(),
	}
	c := sess.Clock
	if c == nil || !c.Enabled() {
		return t
	}
	active, running := c.Active()
	for _, p := range sess.Engine.Players() {
		t.Clocks = append(t.Clocks, PlayerClock{
			Player:           p.ID,
			RemainingSeconds: c.Remaining(p.ID).Seconds(),
			Running:          running && active == p.ID,
		})
	}
	return t
}

func convertEvents(events []engine.Event) []GameEvent {
	now := time.Now()
	out := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, GameEvent{
			Type:      string(ev.Type),
			Player:    ev.Player,
			Message:   ev.Message,
			Timestamp: now,
			Position:  ev.Position,
		})
	}
	return out
}
