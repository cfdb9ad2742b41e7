// Package api provides the HTTP REST API for Santorini tables.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              {"config_id": "gods_duel"} creates a table
//   - GET    /api/sessions              ?sort=created|accessed&order=asc|desc&limit=N&config=ID
//   - GET    /api/sessions/{id}
//   - DELETE /api/sessions/{id}
//
// Turns:
//   - GET  /api/sessions/{id}/state          table snapshot with legal actions
//   - POST /api/sessions/{id}/select         {"row": 0, "col": 1}
//   - POST /api/sessions/{id}/action         {"row": 1, "col": 1} place, move or build
//   - POST /api/sessions/{id}/end-turn       skip the rest of a god power
//   - POST /api/sessions/{id}/god-power      {"accept": true}
//   - POST /api/sessions/{id}/helpful-token  {"use": true}
//
// Presets:
//   - GET  /api/configs
//   - GET  /api/configs/{name}
//   - POST /api/configs
//
// Live updates: GET /ws?session={id}.
//
// A turn request the rules refuse is not an HTTP error. It answers 200 with
// "applied": false and the reason, and the table is unchanged. Protocol
// misuse (wrong phase, another player's worker, no pending offer) answers
// 409. Errors are JSON:
//
//	{"error": "no god power is waiting for an answer", "code": 409}
package api
