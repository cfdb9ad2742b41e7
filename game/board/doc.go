// Package board provides the playing surface of the Santorini game.
//
// The board package implements:
//   - Coordinates with 8- and 4-neighbourhood enumeration
//   - Pieces (ground, tower levels, dome, ocean, worker) and their rule flags
//   - Spaces holding a terrain stack on a permanent base
//   - The board grid with its one-cell ocean border and perimeter flags
//   - The worker arena, the single record of where each worker stands
//
// Board methods that mutate state return errors wrapping
// ErrInvariantViolation when asked to do something the rule engine should
// already have rejected; callers treat those as fatal.
//
// Usage:
//
//	b, err := board.New(5, 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	b.RegisterWorker(board.NewWorker(0, 0, board.Male))
//	b.PlaceWorker(0, board.At(2, 2))
//	b.BuildPiece(board.NewTower(1), board.At(1, 2))
package board
