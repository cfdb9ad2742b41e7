package engine

import (
	"errors"
	"testing"

	"github.com/wricardo/santorini/game/board"
)

func TestLookupGod(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{"", "", nil},
		{"none", "", nil},
		{"Artemis", "Artemis", nil},
		{" demeter ", "Demeter", nil},
		{"ZEUS", "Zeus", nil},
		{"apollo", "Apollo", nil},
		{"pan", "Pan", nil},
		{"hermes", "", ErrUnknownGod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			god, err := LookupGod(tt.name)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.want == "" {
				if god != nil {
					t.Errorf("Expected no god, got %s", god.Name())
				}
				return
			}
			if god == nil || god.Name() != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, god)
			}
		})
	}

	if names := GodNames(); len(names) != 5 || names[0] != "apollo" {
		t.Errorf("Unexpected god names %v", names)
	}
}

func TestArtemisSecondMove(t *testing.T) {
	b, players := testTable(t, 5, 5, Artemis{}, nil)
	w := players[0].Workers[board.Male]
	start := board.At(2, 2)
	place(t, b, w, start)
	god := players[0].God

	if god.Condition(w, w.History()) {
		t.Fatal("Artemis should not apply before the first move")
	}

	first := moveTo(w.MoveActions(), board.At(2, 3))
	if err := Apply(first, b); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}
	if !god.Condition(w, w.History()) {
		t.Fatal("Artemis should apply after the first move")
	}

	actions := god.Actions(w, w.History())
	var back Action
	var others, endTurns int
	for _, a := range actions {
		if a.Kind() == KindEndTurn {
			endTurns++
			continue
		}
		if to, _ := a.Target(); to == start {
			back = a
			continue
		}
		others++
	}

	if back == nil || back.Valid() {
		t.Fatal("Expected moving back to the start space to be invalid")
	}
	if back.Reason() != "cannot move back to the space the worker started from" {
		t.Errorf("Unexpected reason %q", back.Reason())
	}
	if others != 7 {
		t.Errorf("Expected the other 7 neighbours to stay evaluable, got %d", others)
	}
	if endTurns != 1 {
		t.Errorf("Expected one end turn option, got %d", endTurns)
	}
	if got := countValid(actions); got != 7 {
		t.Errorf("Expected 7 valid second moves, got %d", got)
	}

	second := actions[0]
	if err := Apply(second, b); err != nil {
		t.Fatalf("Failed second move: %v", err)
	}
	if god.Condition(w, w.History()) {
		t.Error("Artemis should not allow a third move")
	}
}

func TestDemeterSecondBuild(t *testing.T) {
	b, players := testTable(t, 5, 5, Demeter{}, nil)
	w := players[0].Workers[board.Male]
	place(t, b, w, board.At(2, 2))
	god := players[0].God

	if god.Condition(w, w.History()) {
		t.Fatal("Demeter should not apply before building")
	}
	first := buildAt(w.BuildActions(), board.At(1, 1))
	if err := Apply(first, b); err != nil {
		t.Fatalf("Failed to build: %v", err)
	}
	if !god.Condition(w, w.History()) {
		t.Fatal("Demeter should apply after the first build")
	}

	actions := god.Actions(w, w.History())
	for _, a := range actions {
		at, ok := a.Target()
		if ok && at == board.At(1, 1) && a.Valid() {
			t.Error("Expected the same space to be refused")
		}
	}
	if got := countValid(actions); got != 7 {
		t.Errorf("Expected 7 valid second builds, got %d", got)
	}

	if err := Apply(buildAt(w.BuildActions(), board.At(3, 3)), b); err != nil {
		t.Fatalf("Failed second build: %v", err)
	}
	if god.Condition(w, w.History()) {
		t.Error("Demeter should not allow a third build")
	}
}

func TestZeusBuildsUnderItself(t *testing.T) {
	b, players := testTable(t, 5, 5, Zeus{}, nil)
	w := players[0].Workers[board.Male]
	place(t, b, w, board.At(2, 2))
	god := players[0].God

	if err := Apply(moveTo(w.MoveActions(), board.At(2, 3)), b); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}
	if !god.Condition(w, w.History()) {
		t.Fatal("Zeus should apply after moving")
	}

	actions := god.Actions(w, w.History())
	if len(actions) != 9 {
		t.Fatalf("Expected 8 neighbours plus the worker's own space, got %d", len(actions))
	}
	under := actions[len(actions)-1]
	if at, _ := under.Target(); at != board.At(2, 3) || !under.Valid() {
		t.Fatalf("Expected a valid build under the worker, got %s", under.Prompt())
	}
	if err := Apply(under, b); err != nil {
		t.Fatalf("Failed to build under the worker: %v", err)
	}
	if h := b.SpaceAt(board.At(2, 3)).Height(); h != 1 {
		t.Errorf("Expected the worker to stand at height 1, got %d", h)
	}
	if at, _ := w.Coordinate(); at != board.At(2, 3) {
		t.Errorf("Expected the worker to stay at (2,3), got %s", at)
	}

	raise(t, b, board.At(2, 3), 3)
	w.history.reset()
	if err := Apply(moveTo(w.MoveActions(), board.At(3, 3)), b); err != nil {
		t.Fatalf("Failed to step down: %v", err)
	}
	raise(t, b, board.At(3, 3), 3)
	if god.Condition(w, w.History()) {
		t.Error("Zeus should not apply on top of a third level tower")
	}
}

func TestApolloSwapsWithOpponent(t *testing.T) {
	b, players := testTable(t, 5, 5, Apollo{}, nil)
	w := players[0].Workers[board.Male]
	ally := players[0].Workers[board.Female]
	foe := players[1].Workers[board.Male]
	place(t, b, w, board.At(2, 2))
	place(t, b, ally, board.At(1, 1))
	god := players[0].God

	if god.Condition(w, w.History()) {
		t.Fatal("Apollo should not apply without an adjacent opponent")
	}
	place(t, b, foe, board.At(2, 3))
	if !god.Condition(w, w.History()) {
		t.Fatal("Apollo should apply next to an opponent")
	}

	var swap *MoveAction
	for _, a := range god.Actions(w, w.History()) {
		m := a.(*MoveAction)
		switch m.To {
		case board.At(2, 3):
			swap = m
		case board.At(1, 1):
			if m.Valid() {
				t.Error("Expected own worker to stay blocking")
			}
		}
	}
	if swap == nil || !swap.Valid() || swap.Displaced == nil || swap.Displaced.ID != foe.ID {
		t.Fatalf("Expected a valid swap with the opponent, got %+v", swap)
	}

	if err := Apply(swap, b); err != nil {
		t.Fatalf("Failed to swap: %v", err)
	}
	if at, _ := w.Coordinate(); at != board.At(2, 3) {
		t.Errorf("Expected worker at (2,3), got %s", at)
	}
	if at, _ := foe.Coordinate(); at != board.At(2, 2) {
		t.Errorf("Expected opponent pushed to (2,2), got %s", at)
	}
	if god.Condition(w, w.History()) {
		t.Error("Apollo should not apply after moving")
	}
}

func TestPanWinsByDescending(t *testing.T) {
	b, players := testTable(t, 5, 5, Pan{}, nil)
	w := players[0].Workers[board.Male]
	raise(t, b, board.At(2, 2), 2)
	raise(t, b, board.At(2, 1), 1)
	place(t, b, w, board.At(2, 2))
	god := players[0].God

	if god.Optional() {
		t.Fatal("Pan should be mandatory")
	}
	if !god.Condition(w, w.History()) {
		t.Fatal("Pan should apply before moving")
	}

	for _, a := range god.Actions(w, w.History()) {
		m := a.(*MoveAction)
		wantWin := m.HeightDiff <= -2
		if m.IsWinCondition() != wantWin {
			t.Errorf("Move to %s (diff %d): expected win=%v", m.To, m.HeightDiff, wantWin)
		}
	}
}
