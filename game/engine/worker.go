package engine

import (
	"fmt"

	"github.com/wricardo/santorini/game/board"
)

// Worker is a player's piece. Its position is read from the board's worker
// arena; the worker keeps only its per-turn history.
type Worker struct {
	ID  board.WorkerID
	Sex board.Sex

	owner   *Player
	board   *board.Board
	history History
}

func newWorker(id board.WorkerID, owner *Player, sex board.Sex, b *board.Board) (*Worker, error) {
	w := &Worker{ID: id, Sex: sex, owner: owner, board: b}
	if err := b.RegisterWorker(w.Piece()); err != nil {
		return nil, err
	}
	return w, nil
}

// Owner returns the player the worker belongs to
func (w *Worker) Owner() *Player { return w.owner }

// Piece returns the board piece representing the worker
func (w *Worker) Piece() board.Piece {
	return board.NewWorker(w.ID, w.owner.ID, w.Sex)
}

// Coordinate returns where the worker stands; false if not yet placed
func (w *Worker) Coordinate() (board.Coordinate, bool) {
	return w.board.PositionOf(w.ID)
}

// IsPlaced reports whether the worker is on the board
func (w *Worker) IsPlaced() bool {
	_, ok := w.Coordinate()
	return ok
}

// History returns the read-only log of this turn's actions
func (w *Worker) History() TurnLog { return &w.history }

// Partner returns the other worker of the owner's pair
func (w *Worker) Partner() *Worker {
	return w.owner.Workers[w.Sex.Partner()]
}

// MoveActions evaluates a move to each of the eight neighbours. Invalid
// moves are kept, with their reason.
func (w *Worker) MoveActions() []*MoveAction {
	at, ok := w.Coordinate()
	if !ok {
		return nil
	}
	start := w.board.SpaceAt(at)

	var actions []*MoveAction
	for _, n := range at.Adjacent8() {
		actions = append(actions, w.moveTo(start, w.board.SpaceAt(n)))
	}
	return actions
}

func (w *Worker) moveTo(start, end *board.Space) *MoveAction {
	move := &MoveAction{
		outcome:    outcome{worker: w},
		From:       start.Coordinate,
		To:         end.Coordinate,
		HeightDiff: end.Height() - start.Height(),
		Height:     end.Height(),
	}

	if move.Height >= WinningHeight {
		move.setWinCondition()
	}

	if move.HeightDiff >= 2 {
		move.setInvalid("cannot ascend more than one level")
	}
	if other, ok := end.Worker(); ok && !other.Traversable() {
		move.setInvalid("space is occupied by another worker")
	}
	if top := end.Top(); !top.Traversable() {
		move.setInvalid(fmt.Sprintf("cannot move onto %s", top.Name()))
	}

	return move
}

// BuildActions evaluates a build on each of the worker's eight neighbours
func (w *Worker) BuildActions() []*BuildAction {
	at, ok := w.Coordinate()
	if !ok {
		return nil
	}
	return w.BuildActionsAround(at)
}

// HelpfulBuildActions evaluates builds around the partner worker instead
func (w *Worker) HelpfulBuildActions() []*BuildAction {
	partner := w.Partner()
	if partner == nil {
		return nil
	}
	at, ok := partner.Coordinate()
	if !ok {
		return nil
	}
	return w.BuildActionsAround(at)
}

// BuildActionsAround evaluates builds on the eight neighbours of center
func (w *Worker) BuildActionsAround(center board.Coordinate) []*BuildAction {
	var actions []*BuildAction
	for _, n := range center.Adjacent8() {
		actions = append(actions, w.buildAt(center, w.board.SpaceAt(n)))
	}
	return actions
}

func (w *Worker) buildAt(origin board.Coordinate, target *board.Space) *BuildAction {
	height := target.Height()
	piece := board.NewTower(height + 1)
	if height == board.MaxTowerLevel {
		piece = board.NewDome()
	}

	build := &BuildAction{
		outcome: outcome{worker: w},
		Piece:   piece,
		At:      target.Coordinate,
		Origin:  origin,
	}

	if height > board.MaxTowerLevel {
		build.setInvalid("cannot build on dome")
		return build
	}

	if other, ok := target.Worker(); ok && !other.Buildable() {
		build.setInvalid("cannot build on top of a worker")
	}
	if top := target.Top(); !top.Buildable() {
		build.setInvalid(fmt.Sprintf("cannot build on top of %s", top.Name()))
	}

	return build
}

// PlaceActions evaluates placing this worker on every playable space
func (w *Worker) PlaceActions() []*PlaceWorkerAction {
	var actions []*PlaceWorkerAction
	for row := 0; row < w.board.Rows(); row++ {
		for col := 0; col < w.board.Cols(); col++ {
			space := w.board.SpaceAt(board.At(row, col))
			place := &PlaceWorkerAction{outcome: outcome{worker: w}, At: space.Coordinate}
			if space.HasWorker() {
				place.setInvalid("space is occupied by another worker")
			} else if !space.Top().Traversable() {
				place.setInvalid(fmt.Sprintf("cannot place on %s", space.Top().Name()))
			}
			actions = append(actions, place)
		}
	}
	return actions
}
