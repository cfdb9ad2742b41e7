package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// padding is the width of the ocean border around the playable area
	padding = 1

	MinSize = 2
	MaxSize = 12
)

var (
	// ErrInvariantViolation marks an internal state the legality checks
	// should have made impossible. It is never recovered from.
	ErrInvariantViolation = errors.New("invariant violation")
	ErrInvalidDimensions  = errors.New("invalid board dimensions")
)

type slot struct {
	piece  Piece
	at     Coordinate
	placed bool
}

// Board is a rows x cols playable grid surrounded by an ocean border.
// Worker positions live in the board's worker arena and nowhere else.
type Board struct {
	rows, cols int
	spaces     [][]*Space
	workers    map[WorkerID]*slot
}

// New creates an empty board of the given playable size
func New(rows, cols int) (*Board, error) {
	if rows < MinSize || rows > MaxSize || cols < MinSize || cols > MaxSize {
		return nil, fmt.Errorf("%w: %dx%d, each side must be between %d and %d",
			ErrInvalidDimensions, rows, cols, MinSize, MaxSize)
	}

	b := &Board{
		rows:    rows,
		cols:    cols,
		workers: make(map[WorkerID]*slot),
	}

	b.spaces = make([][]*Space, rows+2*padding)
	for i := range b.spaces {
		b.spaces[i] = make([]*Space, cols+2*padding)
	}

	for i := range b.spaces {
		for j := range b.spaces[i] {
			coord := Coordinate{Row: i - padding, Col: j - padding}
			if b.Contains(coord) {
				b.spaces[i][j] = newSpace(coord, NewGround(), b)
			} else {
				b.spaces[i][j] = newSpace(coord, NewOcean(), b)
			}
		}
	}

	// Perimeter detection looks across the border, so every cell must exist first.
	b.markPerimeter()

	return b, nil
}

func (b *Board) markPerimeter() {
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			space := b.SpaceAt(At(row, col))
			for _, n := range space.Coordinate.Adjacent4() {
				if b.SpaceAt(n).Base().Kind == Ocean {
					space.perimeter = true
					break
				}
			}
		}
	}
}

// Rows returns the number of playable rows
func (b *Board) Rows() int { return b.rows }

// Cols returns the number of playable columns
func (b *Board) Cols() int { return b.cols }

// Contains reports whether c lies in the playable area
func (b *Board) Contains(c Coordinate) bool {
	return c.Row >= 0 && c.Row < b.rows && c.Col >= 0 && c.Col < b.cols
}

// SpaceAt resolves a coordinate. Anything beyond the stored border comes
// back as a fresh ocean space so edge queries never fail.
func (b *Board) SpaceAt(c Coordinate) *Space {
	i, j := c.Row+padding, c.Col+padding
	if i < 0 || i >= len(b.spaces) || j < 0 || j >= len(b.spaces[0]) {
		return newSpace(c, NewOcean(), nil)
	}
	return b.spaces[i][j]
}

// RegisterWorker adds an unplaced worker to the arena
func (b *Board) RegisterWorker(p Piece) error {
	if p.Kind != Worker {
		return fmt.Errorf("%w: %s is not a worker", ErrInvariantViolation, p.Name())
	}
	if _, exists := b.workers[p.ID]; exists {
		return fmt.Errorf("%w: worker %d already registered", ErrInvariantViolation, p.ID)
	}
	b.workers[p.ID] = &slot{piece: p}
	return nil
}

// Worker returns the registered worker piece with the given id
func (b *Board) Worker(id WorkerID) (Piece, bool) {
	s, ok := b.workers[id]
	if !ok {
		return Piece{}, false
	}
	return s.piece, true
}

// PositionOf returns where a worker stands; false if it is not yet placed
func (b *Board) PositionOf(id WorkerID) (Coordinate, bool) {
	s, ok := b.workers[id]
	if !ok || !s.placed {
		return Coordinate{}, false
	}
	return s.at, true
}

// WorkerAt looks up the worker standing on c
func (b *Board) WorkerAt(c Coordinate) (Piece, bool) {
	for _, s := range b.workers {
		if s.placed && s.at == c {
			return s.piece, true
		}
	}
	return Piece{}, false
}

// Workers returns every registered worker ordered by id
func (b *Board) Workers() []Piece {
	out := make([]Piece, 0, len(b.workers))
	for _, s := range b.workers {
		out = append(out, s.piece)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PlaceWorker puts an unplaced worker onto the board
func (b *Board) PlaceWorker(id WorkerID, at Coordinate) error {
	s, ok := b.workers[id]
	if !ok {
		return fmt.Errorf("%w: worker %d not registered", ErrInvariantViolation, id)
	}
	if s.placed {
		return fmt.Errorf("%w: worker %d already placed at %s", ErrInvariantViolation, id, s.at)
	}
	if !b.Contains(at) || !b.SpaceAt(at).Traversable() {
		return fmt.Errorf("%w: cannot place worker %d on %s", ErrInvariantViolation, id, at)
	}
	s.at = at
	s.placed = true
	return nil
}

// MoveWorker relocates a worker; from must hold exactly that worker
func (b *Board) MoveWorker(id WorkerID, from, to Coordinate) error {
	w, ok := b.WorkerAt(from)
	if !ok || w.ID != id {
		return fmt.Errorf("%w: worker %d is not at %s", ErrInvariantViolation, id, from)
	}
	if !b.SpaceAt(to).Traversable() {
		return fmt.Errorf("%w: %s is not traversable", ErrInvariantViolation, to)
	}
	b.workers[id].at = to
	return nil
}

// SwapWorkers exchanges the positions of two placed workers
func (b *Board) SwapWorkers(a, c WorkerID) error {
	sa, okA := b.workers[a]
	sc, okC := b.workers[c]
	if !okA || !okC || !sa.placed || !sc.placed {
		return fmt.Errorf("%w: cannot swap workers %d and %d", ErrInvariantViolation, a, c)
	}
	sa.at, sc.at = sc.at, sa.at
	return nil
}

// RemoveWorker takes a placed worker off the board. The worker stays
// registered so its id is never reused.
func (b *Board) RemoveWorker(id WorkerID) error {
	s, ok := b.workers[id]
	if !ok {
		return fmt.Errorf("%w: worker %d not registered", ErrInvariantViolation, id)
	}
	s.placed = false
	s.at = Coordinate{}
	return nil
}

// BuildPiece stacks a piece onto the space at c
func (b *Board) BuildPiece(p Piece, at Coordinate) error {
	if !b.Contains(at) {
		return fmt.Errorf("%w: cannot build outside the board at %s", ErrInvariantViolation, at)
	}
	return b.SpaceAt(at).push(p)
}

// OpenGround lists unoccupied spaces with nothing built on them, row-major
func (b *Board) OpenGround() []Coordinate {
	var out []Coordinate
	for row := 0; row < b.rows; row++ {
		for col := 0; col < b.cols; col++ {
			s := b.SpaceAt(At(row, col))
			if s.Top().Kind == Ground && !s.HasWorker() {
				out = append(out, s.Coordinate)
			}
		}
	}
	return out
}

// Heights returns the building height of each playable space
func (b *Board) Heights() [][]int {
	out := make([][]int, b.rows)
	for row := range out {
		out[row] = make([]int, b.cols)
		for col := range out[row] {
			out[row][col] = b.SpaceAt(At(row, col)).Height()
		}
	}
	return out
}

// Render returns one string of display symbols per playable row
func (b *Board) Render() []string {
	out := make([]string, b.rows)
	for row := 0; row < b.rows; row++ {
		var sb strings.Builder
		for col := 0; col < b.cols; col++ {
			sb.WriteRune(b.SpaceAt(At(row, col)).Symbol())
		}
		out[row] = sb.String()
	}
	return out
}
