package engine

import "github.com/wricardo/santorini/game/board"

// WorkerView is a worker as seen by a presentation layer
type WorkerView struct {
	ID       board.WorkerID    `json:"id"`
	Sex      string            `json:"sex"`
	Position *board.Coordinate `json:"position,omitempty"`
}

// PlayerView is a player as seen by a presentation layer
type PlayerView struct {
	ID                board.PlayerID `json:"id"`
	Name              string         `json:"name"`
	God               string         `json:"god,omitempty"`
	HelpfulTokens     int            `json:"helpful_tokens"`
	Eliminated        bool           `json:"eliminated"`
	EliminationReason string         `json:"elimination_reason,omitempty"`
	Workers           []WorkerView   `json:"workers"`
}

// ActionView is a candidate action with its validity
type ActionView struct {
	Kind   ActionKind        `json:"kind"`
	Worker board.WorkerID    `json:"worker"`
	Target *board.Coordinate `json:"target,omitempty"`
	Valid  bool              `json:"valid"`
	Reason string            `json:"reason"`
	Win    bool              `json:"win,omitempty"`
	Prompt string            `json:"prompt"`
}

// OfferView describes a pending god power
type OfferView struct {
	God         string         `json:"god"`
	Description string         `json:"description"`
	Worker      board.WorkerID `json:"worker"`
	Checkpoint  string         `json:"checkpoint"`
}

// GameState is a read-only snapshot of the table
type GameState struct {
	Phase         Phase           `json:"phase"`
	CurrentPlayer board.PlayerID  `json:"current_player"`
	Players       []PlayerView    `json:"players"`
	Rows          int             `json:"rows"`
	Cols          int             `json:"cols"`
	Board         []string        `json:"board"`
	Heights       [][]int         `json:"heights"`
	Selected      *board.WorkerID `json:"selected,omitempty"`
	Locked        *board.WorkerID `json:"locked,omitempty"`
	GodActive     bool            `json:"god_active"`
	Helpful       bool            `json:"helpful"`
	Offer         *OfferView      `json:"offer,omitempty"`
	Actions       []ActionView    `json:"actions"`
	Winner        *board.PlayerID `json:"winner,omitempty"`
	Fault         string          `json:"fault,omitempty"`
}

// NewActionView converts an action for display
func NewActionView(a Action) ActionView {
	v := ActionView{
		Kind:   a.Kind(),
		Worker: a.Worker().ID,
		Valid:  a.Valid(),
		Reason: a.Reason(),
		Win:    a.IsWinCondition(),
		Prompt: a.Prompt(),
	}
	if t, ok := a.Target(); ok {
		v.Target = &t
	}
	return v
}

// Snapshot captures the current table state
func (e *GameEngine) Snapshot() *GameState {
	s := &GameState{
		Phase:         e.turn.Phase,
		CurrentPlayer: e.CurrentPlayer().ID,
		Rows:          e.board.Rows(),
		Cols:          e.board.Cols(),
		Board:         e.board.Render(),
		Heights:       e.board.Heights(),
		GodActive:     e.turn.GodActive,
		Helpful:       e.turn.Helpful,
		Actions:       make([]ActionView, 0, len(e.turn.actions)),
	}

	for _, p := range e.players {
		pv := PlayerView{
			ID:                p.ID,
			Name:              p.Name,
			God:               p.GodName(),
			HelpfulTokens:     p.HelpfulTokens,
			Eliminated:        p.eliminated,
			EliminationReason: p.outReason,
		}
		for _, w := range p.Workers {
			wv := WorkerView{ID: w.ID, Sex: w.Sex.String()}
			if at, ok := w.Coordinate(); ok {
				wv.Position = &at
			}
			pv.Workers = append(pv.Workers, wv)
		}
		s.Players = append(s.Players, pv)
	}

	if w := e.turn.Selected; w != nil {
		id := w.ID
		s.Selected = &id
	}
	if w := e.turn.Locked; w != nil {
		id := w.ID
		s.Locked = &id
	}
	if o := e.turn.Offer; o != nil {
		s.Offer = &OfferView{
			God:         o.God.Name(),
			Description: o.God.Description(),
			Worker:      o.Worker.ID,
			Checkpoint:  o.Checkpoint.String(),
		}
	}
	for _, a := range e.turn.actions {
		s.Actions = append(s.Actions, NewActionView(a))
	}
	if e.winner != nil {
		id := e.winner.ID
		s.Winner = &id
	}
	if e.fault != nil {
		s.Fault = e.fault.Error()
	}
	return s
}
