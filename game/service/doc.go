// Package service provides the business logic layer for Santorini tables.
//
// The service package implements:
//   - Multi-session table management
//   - Preset lookup through a ConfigManager
//   - Serialized turn operations per session
//   - Turn clock delivery between engine calls
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages table preset loading and validation.
//
// Concurrency:
//
// Every engine call for a session runs under that session's lock, so two
// requests against the same table never interleave. Before each turn
// operation the session clock is checked; a player whose time bank ran out
// is eliminated first and the requested operation is dropped. SweepClocks
// does the same for idle tables and is meant to be driven by a ticker.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := gameService.SelectWorker(ctx, info.ID, board.At(2, 2))
package service
