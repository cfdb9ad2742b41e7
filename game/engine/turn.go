package engine

import "github.com/wricardo/santorini/game/board"

// Checkpoint is a point in a worker-turn where a god condition is evaluated
type Checkpoint int

const (
	CheckpointSelect Checkpoint = iota
	CheckpointMoved
	CheckpointBuilt
)

var checkpointNames = map[Checkpoint]string{
	CheckpointSelect: "select",
	CheckpointMoved:  "moved",
	CheckpointBuilt:  "built",
}

func (c Checkpoint) String() string {
	if name, ok := checkpointNames[c]; ok {
		return name
	}
	return "unknown"
}

// GodOffer is an optional power waiting for the player's answer
type GodOffer struct {
	God        God
	Worker     *Worker
	Checkpoint Checkpoint
}

// TurnState is the per-turn state machine value. A fresh one is created at
// the start of every worker-turn.
type TurnState struct {
	Phase     Phase
	Selected  *Worker
	Locked    *Worker
	GodActive bool
	Offer     *GodOffer
	Helpful   bool

	// prompted latches a god offer per worker for the rest of the turn
	prompted map[board.WorkerID]bool
	actions  []Action
}

func newTurnState(phase Phase) TurnState {
	return TurnState{Phase: phase, prompted: make(map[board.WorkerID]bool)}
}

// Prompted reports whether w already had its god condition checked this turn
func (t *TurnState) Prompted(w *Worker) bool {
	return w != nil && t.prompted[w.ID]
}

func (t *TurnState) latch(w *Worker) {
	t.prompted[w.ID] = true
}

// Committed reports whether the selected worker already acted this turn,
// after which the selection cannot change
func (t *TurnState) Committed() bool {
	if t.Selected == nil {
		return false
	}
	return len(t.Selected.history.actions) > 0
}

var phaseTransitions = map[Phase][]Phase{
	PhasePlace:    {PhasePlace, PhaseSelect, PhaseGameOver},
	PhaseSelect:   {PhaseSelect, PhaseMove, PhaseGodOffer, PhaseGameOver},
	PhaseMove:     {PhaseSelect, PhaseMove, PhaseGodOffer, PhaseBuild, PhaseGameOver},
	PhaseGodOffer: {PhaseSelect, PhaseMove, PhaseBuild, PhaseGameOver},
	PhaseBuild:    {PhaseSelect, PhaseBuild, PhaseGodOffer, PhaseGameOver},
	PhaseGameOver: {},
}

// CanTransition reports whether the state machine allows from -> to
func CanTransition(from, to Phase) bool {
	for _, p := range phaseTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Transitions returns the phases reachable from p
func Transitions(p Phase) []Phase {
	out := make([]Phase, len(phaseTransitions[p]))
	copy(out, phaseTransitions[p])
	return out
}
