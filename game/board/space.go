package board

import "fmt"

// Space is one cell of the board. It owns its terrain stack; whether a
// worker stands on it is answered by the board's worker arena.
type Space struct {
	Coordinate Coordinate

	pieces    []Piece
	perimeter bool
	board     *Board // nil for synthetic out-of-range spaces
}

func newSpace(coord Coordinate, base Piece, b *Board) *Space {
	return &Space{
		Coordinate: coord,
		pieces:     []Piece{base},
		board:      b,
	}
}

// Height is the number of pieces stacked above the base
func (s *Space) Height() int {
	return len(s.pieces) - 1
}

// Top returns the uppermost terrain piece
func (s *Space) Top() Piece {
	return s.pieces[len(s.pieces)-1]
}

// Base returns the permanent bottom piece (Ground or Ocean)
func (s *Space) Base() Piece {
	return s.pieces[0]
}

// Pieces returns a copy of the terrain stack, bottom first
func (s *Space) Pieces() []Piece {
	out := make([]Piece, len(s.pieces))
	copy(out, s.pieces)
	return out
}

// Worker returns the worker standing here, if any
func (s *Space) Worker() (Piece, bool) {
	if s.board == nil {
		return Piece{}, false
	}
	return s.board.WorkerAt(s.Coordinate)
}

// HasWorker reports whether a worker stands here
func (s *Space) HasWorker() bool {
	_, ok := s.Worker()
	return ok
}

// Traversable reports whether a worker could step onto the space right now
func (s *Space) Traversable() bool {
	if w, ok := s.Worker(); ok && !w.Traversable() {
		return false
	}
	return s.Top().Traversable()
}

// Buildable reports whether the top piece accepts another piece
func (s *Space) Buildable() bool {
	return s.Top().Buildable()
}

// IsPerimeter reports whether the space touches the ocean border orthogonally
func (s *Space) IsPerimeter() bool {
	return s.perimeter
}

// Symbol shows the worker if present, otherwise the top piece
func (s *Space) Symbol() rune {
	if w, ok := s.Worker(); ok {
		return w.Symbol()
	}
	return s.Top().Symbol()
}

func (s *Space) push(p Piece) error {
	if !s.Top().Buildable() {
		return fmt.Errorf("%w: cannot stack %s on %s at %s",
			ErrInvariantViolation, p.Name(), s.Top().Name(), s.Coordinate)
	}
	s.pieces = append(s.pieces, p)
	return nil
}
