package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/santorini/game/board"
	"github.com/wricardo/santorini/game/clock"
	"github.com/wricardo/santorini/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turn operations. Each one delivers a pending clock expiry first.
	SelectWorker(ctx context.Context, sessionID string, at board.Coordinate) (*TurnResult, error)
	ChooseAt(ctx context.Context, sessionID string, at board.Coordinate) (*TurnResult, error)
	EndTurn(ctx context.Context, sessionID string) (*TurnResult, error)
	RespondGodPower(ctx context.Context, sessionID string, accept bool) (*TurnResult, error)
	DeclareHelpfulToken(ctx context.Context, sessionID string, use bool) (*TurnResult, error)

	// SweepClocks delivers every expired turn clock across all sessions
	SweepClocks(ctx context.Context) ([]*TurnResult, error)

	// Table State
	GetTableState(ctx context.Context, sessionID string) (*TableState, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles table preset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents one table. The engine and clock are only touched while
// the session lock is held.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	Clock          *clock.Clock
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}
