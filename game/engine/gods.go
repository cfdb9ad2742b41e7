package engine

import (
	"fmt"

	"github.com/wricardo/santorini/game/board"
)

// Artemis: the worker may move one additional time, but not back to the
// space it started from.
type Artemis struct{}

func (Artemis) Name() string { return "Artemis" }

func (Artemis) Description() string {
	return "Your worker may move one additional time, but not back to its initial space."
}

func (Artemis) Phase() Phase              { return PhaseMove }
func (Artemis) Optional() bool            { return true }
func (Artemis) RestrictToOneWorker() bool { return true }

func (Artemis) Condition(w *Worker, log TurnLog) bool {
	return log.HasMoved() && log.MoveCount() < 2 && !log.HasBuilt()
}

func (Artemis) Actions(w *Worker, log TurnLog) []Action {
	var origin *board.Coordinate
	if last := log.LastMove(); last != nil {
		origin = &last.From
	}

	moves := w.MoveActions()
	for _, m := range moves {
		if origin != nil && m.To == *origin {
			m.setInvalid("cannot move back to the space the worker started from")
		}
	}
	return append(asActions(moves), NewEndTurnAction(w))
}

// Demeter: the worker may build one additional time, but not on the same space.
type Demeter struct{}

func (Demeter) Name() string { return "Demeter" }

func (Demeter) Description() string {
	return "Your worker may build one additional time, but not on the same space."
}

func (Demeter) Phase() Phase              { return PhaseBuild }
func (Demeter) Optional() bool            { return true }
func (Demeter) RestrictToOneWorker() bool { return true }

func (Demeter) Condition(w *Worker, log TurnLog) bool {
	return log.HasBuilt() && log.BuildCount() < 2
}

func (Demeter) Actions(w *Worker, log TurnLog) []Action {
	last := log.LastBuild()
	if last == nil {
		return nil
	}

	builds := w.BuildActionsAround(last.Origin)
	for _, b := range builds {
		if b.At == last.At {
			b.setInvalid("cannot build twice on the same space")
		}
	}
	return append(asActions(builds), NewEndTurnAction(w))
}

// Zeus: the worker may build a tower block under itself.
type Zeus struct{}

func (Zeus) Name() string { return "Zeus" }

func (Zeus) Description() string {
	return "Your worker may build a block under itself."
}

func (Zeus) Phase() Phase              { return PhaseBuild }
func (Zeus) Optional() bool            { return true }
func (Zeus) RestrictToOneWorker() bool { return true }

func (Zeus) Condition(w *Worker, log TurnLog) bool {
	at, ok := w.Coordinate()
	if !ok || !log.HasMoved() || log.HasBuilt() {
		return false
	}
	return w.board.SpaceAt(at).Height() < board.MaxTowerLevel
}

func (Zeus) Actions(w *Worker, log TurnLog) []Action {
	at, ok := w.Coordinate()
	if !ok {
		return nil
	}

	actions := asActions(w.BuildActions())
	under := &BuildAction{
		outcome: outcome{worker: w},
		Piece:   board.NewTower(w.board.SpaceAt(at).Height() + 1),
		At:      at,
		Origin:  at,
	}
	if !w.board.SpaceAt(at).Top().Buildable() {
		under.setInvalid(fmt.Sprintf("cannot build on top of %s", w.board.SpaceAt(at).Top().Name()))
	}
	return append(actions, under)
}

// Apollo: the worker may move into an opponent worker's space, forcing that
// worker into the space just vacated.
type Apollo struct{}

func (Apollo) Name() string { return "Apollo" }

func (Apollo) Description() string {
	return "Your worker may move into an opponent worker's space by swapping places with it."
}

func (Apollo) Phase() Phase              { return PhaseMove }
func (Apollo) Optional() bool            { return true }
func (Apollo) RestrictToOneWorker() bool { return true }

func (Apollo) Condition(w *Worker, log TurnLog) bool {
	if log.HasMoved() {
		return false
	}
	for _, m := range apolloMoves(w) {
		if m.Displaced != nil && m.Valid() {
			return true
		}
	}
	return false
}

func (Apollo) Actions(w *Worker, log TurnLog) []Action {
	return asActions(apolloMoves(w))
}

// apolloMoves re-evaluates moves onto opponent workers as swaps
func apolloMoves(w *Worker) []*MoveAction {
	moves := w.MoveActions()
	for i, m := range moves {
		other, ok := w.board.WorkerAt(m.To)
		if !ok || other.Owner == w.owner.ID {
			continue
		}

		swap := &MoveAction{
			outcome:    outcome{worker: w},
			From:       m.From,
			To:         m.To,
			HeightDiff: m.HeightDiff,
			Height:     m.Height,
			Displaced:  &other,
		}
		if swap.Height >= WinningHeight {
			swap.setWinCondition()
		}
		if swap.HeightDiff >= 2 {
			swap.setInvalid("cannot ascend more than one level")
		}
		if top := w.board.SpaceAt(m.To).Top(); !top.Traversable() {
			swap.setInvalid(fmt.Sprintf("cannot move onto %s", top.Name()))
		}
		moves[i] = swap
	}
	return moves
}

// Pan: the worker also wins by moving down two or more levels.
type Pan struct{}

func (Pan) Name() string { return "Pan" }

func (Pan) Description() string {
	return "You also win if your worker moves down two or more levels."
}

func (Pan) Phase() Phase              { return PhaseMove }
func (Pan) Optional() bool            { return false }
func (Pan) RestrictToOneWorker() bool { return false }

func (Pan) Condition(w *Worker, log TurnLog) bool {
	return !log.HasMoved()
}

func (Pan) Actions(w *Worker, log TurnLog) []Action {
	moves := w.MoveActions()
	for _, m := range moves {
		if m.HeightDiff <= -2 {
			m.setWinCondition()
		}
	}
	return asActions(moves)
}
