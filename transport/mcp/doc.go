// Package mcp exposes Santorini tables as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API, so agents, browsers and websocket watchers all see the same tables.
//
// Tools:
//   - create_session, list_sessions, list_configs
//   - table_state: board symbols, heights, players and legal actions
//   - select_worker, choose: the row/col driven turn
//   - god_power, helpful_token: answers to the optional decisions
//   - game_rules: rules, legend and the gods on offer
//
// The server runs over stdio (the mcp command) or behind the HTTP server's
// /mcp endpoint.
package mcp
