package engine

import (
	"fmt"
	"strings"

	"github.com/wricardo/santorini/game/board"
)

// ActionKind names an action variant
type ActionKind string

const (
	KindMove        ActionKind = "move"
	KindBuild       ActionKind = "build"
	KindPlaceWorker ActionKind = "place_worker"
	KindEndTurn     ActionKind = "end_turn"
)

const validReason = "This action is valid"

// Action is one of *MoveAction, *BuildAction, *PlaceWorkerAction or
// *EndTurnAction. Validity is decided when the action is generated.
type Action interface {
	Kind() ActionKind
	Worker() *Worker
	// Target is the space the action points at; EndTurn has none
	Target() (board.Coordinate, bool)
	Valid() bool
	Reason() string
	IsWinCondition() bool
	IsEndTurn() bool
	Prompt() string

	base() *outcome
}

type outcome struct {
	worker  *Worker
	reasons []string
	win     bool
	endTurn bool
}

func (o *outcome) Worker() *Worker       { return o.worker }
func (o *outcome) Valid() bool           { return len(o.reasons) == 0 }
func (o *outcome) IsWinCondition() bool  { return o.win }
func (o *outcome) IsEndTurn() bool       { return o.endTurn }
func (o *outcome) base() *outcome        { return o }
func (o *outcome) setWinCondition()      { o.win = true }
func (o *outcome) setEndTurn()           { o.endTurn = true }
func (o *outcome) setInvalid(why string) { o.reasons = append(o.reasons, why) }

// Reason explains why the action is invalid, or confirms it is valid
func (o *outcome) Reason() string {
	if o.Valid() {
		return validReason
	}
	return strings.Join(o.reasons, "; ")
}

func (o *outcome) suffix() string {
	if o.Valid() {
		return ""
	}
	return " (Invalid)"
}

// MoveAction moves a worker to an adjacent space. Displaced is set when the
// move swaps places with another worker.
type MoveAction struct {
	outcome
	From       board.Coordinate
	To         board.Coordinate
	HeightDiff int
	Height     int
	Displaced  *board.Piece
}

func (m *MoveAction) Kind() ActionKind { return KindMove }

func (m *MoveAction) Target() (board.Coordinate, bool) { return m.To, true }

func (m *MoveAction) Prompt() string {
	return fmt.Sprintf("Move worker from %s to %s.%s", m.From, m.To, m.suffix())
}

// BuildAction stacks Piece on At. Origin is the space whose neighbourhood
// the build was generated from.
type BuildAction struct {
	outcome
	Piece  board.Piece
	At     board.Coordinate
	Origin board.Coordinate
}

func (b *BuildAction) Kind() ActionKind { return KindBuild }

func (b *BuildAction) Target() (board.Coordinate, bool) { return b.At, true }

func (b *BuildAction) Prompt() string {
	return fmt.Sprintf("Build %s at %s.%s", b.Piece.Name(), b.At, b.suffix())
}

// PlaceWorkerAction puts an unplaced worker on the board
type PlaceWorkerAction struct {
	outcome
	At board.Coordinate
}

func (p *PlaceWorkerAction) Kind() ActionKind { return KindPlaceWorker }

func (p *PlaceWorkerAction) Target() (board.Coordinate, bool) { return p.At, true }

func (p *PlaceWorkerAction) Prompt() string {
	return fmt.Sprintf("Place worker of player %d at %s%s", p.worker.Owner().ID+1, p.At, p.suffix())
}

// EndTurnAction finishes the current override or turn without touching the board
type EndTurnAction struct {
	outcome
}

// NewEndTurnAction returns the skip option offered alongside god actions
func NewEndTurnAction(w *Worker) *EndTurnAction {
	return &EndTurnAction{outcome: outcome{worker: w}}
}

func (e *EndTurnAction) Kind() ActionKind { return KindEndTurn }

func (e *EndTurnAction) Target() (board.Coordinate, bool) { return board.Coordinate{}, false }

func (e *EndTurnAction) Prompt() string { return "End turn now" }

// Apply performs a valid action against the board and records it in the
// acting worker's history. Board errors wrap board.ErrInvariantViolation.
func Apply(a Action, b *board.Board) error {
	if !a.Valid() {
		return fmt.Errorf("%w: %s", ErrIllegalAction, a.Reason())
	}
	w := a.Worker()

	switch act := a.(type) {
	case *MoveAction:
		if act.Displaced != nil {
			if other, ok := b.WorkerAt(act.To); !ok || other.ID != act.Displaced.ID {
				return fmt.Errorf("%w: worker %d is not at %s", board.ErrInvariantViolation, act.Displaced.ID, act.To)
			}
			if err := b.SwapWorkers(w.ID, act.Displaced.ID); err != nil {
				return err
			}
		} else if err := b.MoveWorker(w.ID, act.From, act.To); err != nil {
			return err
		}
	case *BuildAction:
		if err := b.BuildPiece(act.Piece, act.At); err != nil {
			return err
		}
	case *PlaceWorkerAction:
		if err := b.PlaceWorker(w.ID, act.At); err != nil {
			return err
		}
		if w.Sex == board.Female {
			act.setEndTurn()
		}
	case *EndTurnAction:
		act.setEndTurn()
	default:
		return fmt.Errorf("%w: unknown action %T", board.ErrInvariantViolation, a)
	}

	w.history.record(a)
	return nil
}

// countValid counts valid actions, ignoring the end-turn skip option
func countValid[A Action](actions []A) int {
	n := 0
	for _, a := range actions {
		if a.Kind() != KindEndTurn && a.Valid() {
			n++
		}
	}
	return n
}

func asActions[A Action](in []A) []Action {
	out := make([]Action, len(in))
	for i, a := range in {
		out[i] = a
	}
	return out
}
