// Package engine implements the Santorini turn rules on top of package board.
//
// A Worker generates candidate actions for its position: every neighbour is
// evaluated and returned with a validity flag and a reason, so callers can
// render legal and illegal options alike. Actions are applied with Apply,
// which mutates the board and records the action into the worker's History.
//
// GameEngine drives the per-turn state machine:
//
//	select -> move -> [god offer] -> build -> [god offer] -> next player
//
// A God may replace the action set of one phase when its condition holds.
// Optional powers are offered once per worker-turn; mandatory ones apply
// without asking.
//
// Usage:
//
//	game, err := engine.NewEngine(engine.DefaultGameConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := game.SelectWorker(board.At(2, 2))
//	for _, a := range game.LegalMoves() {
//		fmt.Println(a.Prompt())
//	}
//	res, err = game.ChooseAt(board.At(2, 3))
//
// Rule violations never surface as errors: an invalid choice comes back in a
// Result with Applied false and the reason. Errors are reserved for protocol
// misuse (wrong phase, unknown action) and for invariant violations, which
// halt the game for good.
package engine
