package engine

import (
	"fmt"
	"sort"
	"strings"
)

// God is a per-player rule override. Implementations are stateless; they
// read the worker's turn log and the board but never mutate either.
type God interface {
	Name() string
	// Description is shown to the player when the power is offered
	Description() string
	// Phase is the phase the override's action set replaces
	Phase() Phase
	// Optional powers are offered; mandatory ones apply without asking
	Optional() bool
	// RestrictToOneWorker locks the turn to the worker that used the power
	RestrictToOneWorker() bool
	// Condition reports whether the override is currently available
	Condition(w *Worker, log TurnLog) bool
	// Actions returns the replacement action set for Phase
	Actions(w *Worker, log TurnLog) []Action
}

var godRegistry = map[string]func() God{
	"apollo":  func() God { return Apollo{} },
	"artemis": func() God { return Artemis{} },
	"demeter": func() God { return Demeter{} },
	"pan":     func() God { return Pan{} },
	"zeus":    func() God { return Zeus{} },
}

// LookupGod returns the god registered under name (case-insensitive).
// An empty name or "none" yields a nil God.
func LookupGod(name string) (God, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "none" {
		return nil, nil
	}
	ctor, ok := godRegistry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownGod, name, strings.Join(GodNames(), ", "))
	}
	return ctor(), nil
}

// GodNames lists the registered god keys in alphabetical order
func GodNames() []string {
	names := make([]string, 0, len(godRegistry))
	for name := range godRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
