package engine

// TurnLog is the read-only view of a worker's actions this turn that god
// powers consult
type TurnLog interface {
	Actions() []Action
	HasMoved() bool
	MoveCount() int
	LastMove() *MoveAction
	HasBuilt() bool
	BuildCount() int
	LastBuild() *BuildAction
}

// History is the append-only log of one worker's actions this turn. It is
// cleared when the owning player's turn ends.
type History struct {
	actions []Action
	moves   []*MoveAction
	builds  []*BuildAction
}

func (h *History) record(a Action) {
	h.actions = append(h.actions, a)
	switch act := a.(type) {
	case *MoveAction:
		h.moves = append(h.moves, act)
	case *BuildAction:
		h.builds = append(h.builds, act)
	}
}

func (h *History) reset() {
	h.actions = nil
	h.moves = nil
	h.builds = nil
}

// Actions returns a copy of every recorded action in order
func (h *History) Actions() []Action {
	out := make([]Action, len(h.actions))
	copy(out, h.actions)
	return out
}

// HasMoved reports whether the worker moved this turn
func (h *History) HasMoved() bool { return len(h.moves) > 0 }

// MoveCount returns the number of moves this turn
func (h *History) MoveCount() int { return len(h.moves) }

// LastMove returns the most recent move, or nil
func (h *History) LastMove() *MoveAction {
	if len(h.moves) == 0 {
		return nil
	}
	return h.moves[len(h.moves)-1]
}

// HasBuilt reports whether the worker built this turn
func (h *History) HasBuilt() bool { return len(h.builds) > 0 }

// BuildCount returns the number of builds this turn
func (h *History) BuildCount() int { return len(h.builds) }

// LastBuild returns the most recent build, or nil
func (h *History) LastBuild() *BuildAction {
	if len(h.builds) == 0 {
		return nil
	}
	return h.builds[len(h.builds)-1]
}
