package clock

import (
	"testing"
	"time"

	"github.com/wricardo/santorini/game/board"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time          { return f.t }
func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestClock(bank time.Duration) (*Clock, *fakeTime) {
	ft := &fakeTime{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return New(bank, []board.PlayerID{0, 1, 2}, ft.now), ft
}

func TestClockChargesActivePlayer(t *testing.T) {
	c, ft := newTestClock(time.Minute)

	c.Start(0)
	ft.advance(20 * time.Second)
	if got := c.Remaining(0); got != 40*time.Second {
		t.Errorf("Expected 40s left for player 0, got %v", got)
	}
	if got := c.Remaining(1); got != time.Minute {
		t.Errorf("Expected player 1 untouched, got %v", got)
	}

	c.Start(0)
	ft.advance(5 * time.Second)
	if got := c.Remaining(0); got != 35*time.Second {
		t.Errorf("Restarting the running player should not reset the turn, got %v", got)
	}

	c.Start(1)
	ft.advance(10 * time.Second)
	if got := c.Remaining(0); got != 35*time.Second {
		t.Errorf("Expected player 0 frozen at 35s, got %v", got)
	}
	if got := c.Remaining(1); got != 50*time.Second {
		t.Errorf("Expected 50s left for player 1, got %v", got)
	}
	if p, ok := c.Active(); !ok || p != 1 {
		t.Errorf("Expected player 1 active, got %d %v", p, ok)
	}

	c.Stop()
	ft.advance(time.Hour)
	if got := c.Remaining(1); got != 50*time.Second {
		t.Errorf("Stopped clock should not charge, got %v", got)
	}
}

func TestClockExpiry(t *testing.T) {
	c, ft := newTestClock(30 * time.Second)

	c.Start(2)
	ft.advance(29 * time.Second)
	if _, ok := c.Expired(); ok {
		t.Fatal("Expected time left")
	}
	ft.advance(2 * time.Second)
	p, ok := c.Expired()
	if !ok || p != 2 {
		t.Fatalf("Expected player 2 expired, got %d %v", p, ok)
	}
	if got := c.Remaining(2); got != 0 {
		t.Errorf("Expected remaining clamped to zero, got %v", got)
	}

	c.Remove(2)
	if _, ok := c.Expired(); ok {
		t.Error("Removed player should not expire again")
	}
}

func TestDisabledClock(t *testing.T) {
	c, ft := newTestClock(0)
	if c.Enabled() {
		t.Fatal("Expected a zero bank to disable the clock")
	}
	c.Start(0)
	ft.advance(time.Hour)
	if _, ok := c.Expired(); ok {
		t.Error("Disabled clock must never expire")
	}
}

func TestStartUnknownPlayer(t *testing.T) {
	c, _ := newTestClock(time.Minute)
	c.Start(9)
	if _, ok := c.Active(); ok {
		t.Error("Unknown player should not start the clock")
	}
}
