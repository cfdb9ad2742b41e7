// Package websocket pushes Santorini table updates to connected clients.
//
// A central Hub owns the client sets of every session. Clients attach with
// GET /ws?session=<id> and only receive; moves go through the REST API.
// After each applied operation the API publishes the TurnResult:
//
//	{"session_id": "ab12", "event": "eliminated", "data": {...}}
//	{"session_id": "ab12", "event": "victory", "data": {...}}
//	{"session_id": "ab12", "event": "state_update", "table": {...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	hub.Publish(result)
package websocket
