package engine

import "github.com/wricardo/santorini/game/board"

// Player is a seat at the table with its god and worker pair. Workers are
// indexed by sex: Workers[board.Male], Workers[board.Female].
type Player struct {
	ID            board.PlayerID
	Name          string
	God           God
	Workers       [WorkersPerPlayer]*Worker
	HelpfulTokens int

	eliminated bool
	outReason  string
}

// Owns reports whether w belongs to the player
func (p *Player) Owns(w *Worker) bool {
	return w != nil && w.owner == p
}

// IsEliminated reports whether the player left the rotation
func (p *Player) IsEliminated() bool { return p.eliminated }

// EliminationReason explains why the player left the rotation
func (p *Player) EliminationReason() string { return p.outReason }

// GodName returns the god's name, or "" when the player has none
func (p *Player) GodName() string {
	if p.God == nil {
		return ""
	}
	return p.God.Name()
}

// nextUnplaced returns the first worker still off the board, male first
func (p *Player) nextUnplaced() *Worker {
	for _, w := range p.Workers {
		if !w.IsPlaced() {
			return w
		}
	}
	return nil
}
