package service

import (
	"time"

	"github.com/wricardo/santorini/game/board"
	"github.com/wricardo/santorini/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Table          *TableState        `json:"table"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PlayerClock is the time bank of one player
type PlayerClock struct {
	Player           board.PlayerID `json:"player"`
	RemainingSeconds float64        `json:"remaining_seconds"`
	Running          bool           `json:"running"`
}

// TableState is the engine snapshot plus what only the host knows
type TableState struct {
	SessionID string `json:"session_id"`
	*engine.GameState
	Clocks []PlayerClock `json:"clocks,omitempty"`
}

// GameEvent represents an event that occurred during play
type GameEvent struct {
	Type      string            `json:"type"`
	Player    board.PlayerID    `json:"player"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Position  *board.Coordinate `json:"position,omitempty"`
}

// TurnResult contains the outcome of a turn operation. A rejected action is
// reported with Applied false and the reason.
type TurnResult struct {
	SessionID string      `json:"session_id"`
	Applied   bool        `json:"applied"`
	Reason    string      `json:"reason,omitempty"`
	Events    []GameEvent `json:"events,omitempty"`
	Table     *TableState `json:"table"`
}

// Won reports whether the result ended the game
func (r *TurnResult) Won() bool {
	return r.Table != nil && r.Table.GameState != nil && r.Table.Winner != nil
}

// ConfigInfo provides information about a table preset
type ConfigInfo struct {
	Filename    string   `json:"filename"`
	ConfigID    string   `json:"config_id"` // The identifier to use for session creation
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	Players     int      `json:"players"`
	Gods        []string `json:"gods,omitempty"`
}
