package engine

import (
	"errors"

	"github.com/wricardo/santorini/game/board"
)

// Phase is a step of the per-turn state machine
type Phase string

const (
	PhasePlace    Phase = "place"
	PhaseSelect   Phase = "select"
	PhaseMove     Phase = "move"
	PhaseGodOffer Phase = "god_offer"
	PhaseBuild    Phase = "build"
	PhaseGameOver Phase = "game_over"

	// Validation constants
	MinPlayers       = 2
	MaxPlayers       = 3
	WorkersPerPlayer = 2
	MaxHelpfulTokens = 5
	MaxTimeBank      = 3600
	WinningHeight    = 3
)

// PlacementMode selects how workers reach the board at game start
type PlacementMode string

const (
	PlacementRandom PlacementMode = "random"
	PlacementManual PlacementMode = "manual"
)

var (
	ErrInvalidConfig    = errors.New("invalid game configuration")
	ErrNotEnoughGround  = errors.New("not enough open ground to place all workers")
	ErrUnknownGod       = errors.New("unknown god")
	ErrWrongPhase       = errors.New("not allowed in the current phase")
	ErrNoWorkerThere    = errors.New("no worker on that space")
	ErrNotYourWorker    = errors.New("worker belongs to another player")
	ErrWorkerLocked     = errors.New("god power requires the same worker")
	ErrNoPendingOffer   = errors.New("no god power is waiting for an answer")
	ErrNoHelpfulToken   = errors.New("no helpful token available")
	ErrNoHelpfulBuild   = errors.New("partner worker has no legal build")
	ErrUnknownAction    = errors.New("action is not on offer")
	ErrIllegalAction    = errors.New("action is not legal")
	ErrGameOver         = errors.New("game is over")
	ErrGameFaulted      = errors.New("game halted after an invariant violation")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrPlayerEliminated = errors.New("player already eliminated")
)

// PlayerConfig describes one seat at the table
type PlayerConfig struct {
	Name string `json:"name" yaml:"name"`
	God  string `json:"god,omitempty" yaml:"god,omitempty"`
}

// GameConfig represents a table preset loaded from JSON or YAML
type GameConfig struct {
	Name            string         `json:"name" yaml:"name"`
	Description     string         `json:"description" yaml:"description"`
	Rows            int            `json:"rows" yaml:"rows"`
	Cols            int            `json:"cols" yaml:"cols"`
	Players         []PlayerConfig `json:"players" yaml:"players"`
	HelpfulTokens   int            `json:"helpful_tokens" yaml:"helpful_tokens"`
	Placement       PlacementMode  `json:"placement,omitempty" yaml:"placement,omitempty"`
	Seed            int64          `json:"seed,omitempty" yaml:"seed,omitempty"`
	TimeBankSeconds int            `json:"time_bank_seconds,omitempty" yaml:"time_bank_seconds,omitempty"`
}

// EventType classifies what happened during a call into the engine
type EventType string

const (
	EventPlaced       EventType = "placed"
	EventSelected     EventType = "selected"
	EventMoved        EventType = "moved"
	EventBuilt        EventType = "built"
	EventGodOffered   EventType = "god_offered"
	EventGodActivated EventType = "god_activated"
	EventGodDeclined  EventType = "god_declined"
	EventGodSkipped   EventType = "god_not_applicable"
	EventHelpfulToken EventType = "helpful_token"
	EventTurnEnded    EventType = "turn_ended"
	EventEliminated   EventType = "eliminated"
	EventVictory      EventType = "victory"
)

// Event is one observable consequence of a call into the engine
type Event struct {
	Type     EventType         `json:"type"`
	Player   board.PlayerID    `json:"player"`
	Message  string            `json:"message"`
	Position *board.Coordinate `json:"position,omitempty"`
}

// Result reports the outcome of a call into the engine. An invalid action is
// returned with Applied false and the reason, never as an error.
type Result struct {
	Applied bool    `json:"applied"`
	Action  Action  `json:"-"`
	Reason  string  `json:"reason,omitempty"`
	Phase   Phase   `json:"phase"`
	Events  []Event `json:"events,omitempty"`
	Winner  *Player `json:"-"`
}

func (r *Result) add(t EventType, p board.PlayerID, msg string, pos *board.Coordinate) {
	r.Events = append(r.Events, Event{Type: t, Player: p, Message: msg, Position: pos})
}
