// Package clock keeps a per-player time bank for turn-based play.
//
// The clock only measures; it never acts. Hosts poll Expired between calls
// into the engine and deliver the timeout themselves, so a running turn is
// never interrupted halfway.
package clock

import (
	"time"

	"github.com/wricardo/santorini/game/board"
)

// Clock charges elapsed time to the player whose turn is running. A clock
// with a zero bank is disabled and never expires. It is not safe for
// concurrent use.
type Clock struct {
	bank      time.Duration
	remaining map[board.PlayerID]time.Duration
	now       func() time.Time

	running   bool
	active    board.PlayerID
	startedAt time.Time
}

// New creates a clock giving each player the same bank. A nil now uses
// time.Now.
func New(bank time.Duration, players []board.PlayerID, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	c := &Clock{
		bank:      bank,
		remaining: make(map[board.PlayerID]time.Duration, len(players)),
		now:       now,
	}
	for _, p := range players {
		c.remaining[p] = bank
	}
	return c
}

// Enabled reports whether the clock has a time bank at all
func (c *Clock) Enabled() bool { return c.bank > 0 }

// Bank returns the starting time of every player
func (c *Clock) Bank() time.Duration { return c.bank }

// Start runs the clock for p, charging the previous player first. Starting
// the player already running is a no-op.
func (c *Clock) Start(p board.PlayerID) {
	if c.running && c.active == p {
		return
	}
	c.Stop()
	if _, ok := c.remaining[p]; !ok {
		return
	}
	c.running = true
	c.active = p
	c.startedAt = c.now()
}

// Stop charges the running player and halts the clock
func (c *Clock) Stop() {
	if !c.running {
		return
	}
	c.remaining[c.active] -= c.now().Sub(c.startedAt)
	c.running = false
}

// Remove drops a player that left the game
func (c *Clock) Remove(p board.PlayerID) {
	if c.running && c.active == p {
		c.running = false
	}
	delete(c.remaining, p)
}

// Remaining returns p's time left, counting the running turn
func (c *Clock) Remaining(p board.PlayerID) time.Duration {
	left, ok := c.remaining[p]
	if !ok {
		return 0
	}
	if c.running && c.active == p {
		left -= c.now().Sub(c.startedAt)
	}
	if left < 0 {
		return 0
	}
	return left
}

// Active returns the player whose time is running
func (c *Clock) Active() (board.PlayerID, bool) {
	return c.active, c.running
}

// Expired reports the running player once their bank is spent
func (c *Clock) Expired() (board.PlayerID, bool) {
	if !c.Enabled() || !c.running {
		return 0, false
	}
	if c.Remaining(c.active) > 0 {
		return 0, false
	}
	return c.active, true
}
