package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/santorini/game/engine"
	"github.com/wricardo/santorini/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Santorini",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Santorini - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Move one of your workers up onto a level 3 tower, or be the last player able to move.

TURN:
1. select_worker on one of your workers
2. choose a space to move to
3. choose a space to build on
Gods may offer a power along the way: answer with god_power.
At the start of a build you may spend a helpful token to build with your other worker.

AVAILABLE TOOLS:
- create_session, list_sessions, list_configs
- table_state: board, heights and every legal action
- select_worker, choose, god_power, helpful_token
- game_rules: full rules and board legend`),
	)

	c.registerTools()
}

func sessionArg() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a new table from a preset (default preset when omitted)"),
		mcp.WithString("config_id", mcp.Description("Preset to use, see list_configs")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List all active tables"),
	), c.handleListSessions)

	c.mcpServer.AddTool(mcp.NewTool("list_configs",
		mcp.WithDescription("List the table presets"),
	), c.handleListConfigs)

	// Turn operations
	c.mcpServer.AddTool(mcp.NewTool("table_state",
		mcp.WithDescription("Show the board, the players and the legal actions of the current phase"),
		sessionArg(),
	), c.handleTableState)

	c.mcpServer.AddTool(mcp.NewTool("select_worker",
		mcp.WithDescription("Select the worker standing on a space to take the turn with"),
		sessionArg(),
		mcp.WithNumber("row", mcp.Required(), mcp.Min(0), mcp.Description("Row of the worker")),
		mcp.WithNumber("col", mcp.Required(), mcp.Min(0), mcp.Description("Column of the worker")),
	), c.handleSelectWorker)

	c.mcpServer.AddTool(mcp.NewTool("choose",
		mcp.WithDescription("Place, move or build on a space, depending on the phase. Set end_turn to skip the rest of a god power instead."),
		sessionArg(),
		mcp.WithNumber("row", mcp.Min(0), mcp.Description("Target row")),
		mcp.WithNumber("col", mcp.Min(0), mcp.Description("Target column")),
		mcp.WithBoolean("end_turn", mcp.Description("Finish the god power early")),
		mcp.WithString("intent", mcp.Description("Brief explanation of the plan behind this action")),
	), c.handleChoose)

	c.mcpServer.AddTool(mcp.NewTool("god_power",
		mcp.WithDescription("Accept or decline the pending god power"),
		sessionArg(),
		mcp.WithBoolean("accept", mcp.Required(), mcp.Description("true to use the power")),
	), c.handleGodPower)

	c.mcpServer.AddTool(mcp.NewTool("helpful_token",
		mcp.WithDescription("At the start of a build, spend a helpful token to build with the other worker"),
		sessionArg(),
		mcp.WithBoolean("use", mcp.Required(), mcp.Description("true to spend a token")),
	), c.handleHelpfulToken)

	c.mcpServer.AddTool(mcp.NewTool("game_rules",
		mcp.WithDescription("Get the complete rules, the board legend and the gods"),
	), c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin and stdout until the input closes
func (c *Client) ServeStdio() error {
	if err := server.ServeStdio(c.mcpServer); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) turnCall(ctx context.Context, sessionID, op string, body interface{}) (*mcp.CallToolResult, error) {
	var result service.TurnResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/%s", sessionID, op), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTurnResult(&result)), nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]string{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(resp.Sessions) == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Active sessions (%d):\n", len(resp.Sessions))
	for _, session := range resp.Sessions {
		phase := "unknown"
		if session.Table != nil && session.Table.GameState != nil {
			phase = string(session.Table.Phase)
		}
		fmt.Fprintf(&sb, "- %s  preset=%s  phase=%s  last used %s\n",
			session.ID, session.ConfigName, phase, session.LastAccessedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString("Available presets:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&sb, "• %s (%s)\n  %s\n  Board: %dx%d, Players: %d",
			config.ConfigID, config.Name, config.Description, config.Rows, config.Cols, config.Players)
		if len(config.Gods) > 0 {
			fmt.Fprintf(&sb, ", Gods: %s", strings.Join(config.Gods, ", "))
		}
		sb.WriteString("\n\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleTableState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var table service.TableState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &table); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatTable(&table)), nil
}

type coordinateArgs struct {
	SessionID string `json:"session_id"`
	Row       *int   `json:"row"`
	Col       *int   `json:"col"`
	EndTurn   bool   `json:"end_turn"`
}

func (c *Client) handleSelectWorker(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args coordinateArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if args.SessionID == "" || args.Row == nil || args.Col == nil {
		return mcp.NewToolResultError("session_id, row and col are required"), nil
	}

	return c.turnCall(ctx, args.SessionID, "select", map[string]int{"row": *args.Row, "col": *args.Col})
}

func (c *Client) handleChoose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args coordinateArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	if args.SessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	if args.EndTurn {
		return c.turnCall(ctx, args.SessionID, "end-turn", nil)
	}
	if args.Row == nil || args.Col == nil {
		return mcp.NewToolResultError("row and col are required unless end_turn is set"), nil
	}
	return c.turnCall(ctx, args.SessionID, "action", map[string]int{"row": *args.Row, "col": *args.Col})
}

func (c *Client) handleGodPower(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	accept, err := request.RequireBool("accept")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.turnCall(ctx, sessionID, "god-power", map[string]bool{"accept": accept})
}

func (c *Client) handleHelpfulToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	use, err := request.RequireBool("use")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return c.turnCall(ctx, sessionID, "helpful-token", map[string]bool{"use": use})
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString(rules)
	sb.WriteString("\nGODS:\n")
	for _, name := range engine.GodNames() {
		god, err := engine.LookupGod(name)
		if err != nil || god == nil {
			continue
		}
		fmt.Fprintf(&sb, "• %s: %s\n", god.Name(), god.Description())
	}
	return mcp.NewToolResultText(sb.String()), nil
}

const rules = `Santorini - Rules

OBJECTIVE:
Win by moving one of your workers up onto a level 3 tower, or by being the
last player with a worker that can move.

SETUP:
Each player has two workers, a male (upper case letter) and a female (lower
case). Depending on the preset they are placed at random or one by one with
choose, male first.

TURN:
1. Select one of your workers.
2. Move it to an adjacent space (8 directions). It may climb at most one
   level, and may step down any number of levels. It cannot enter a space
   holding a worker or a dome.
3. Build on a space adjacent to where it now stands: ground becomes level 1,
   level 1 becomes 2, 2 becomes 3 and a level 3 tower gets a dome.

A player who cannot move with any worker, or who moved but cannot build, is
eliminated and their workers leave the board.

HELPFUL TOKEN:
At the start of a build you may spend a token to build around your other
worker instead.

GOD POWERS:
Some presets give players a god. When its condition holds the game offers the
power (phase god_offer) and you answer with god_power. Declining continues the
normal turn. An accepted power may be cut short with choose end_turn=true.

TURN CLOCK:
Timed presets give each player a time bank. It only runs during their turn;
a player whose bank runs out is eliminated.

BOARD LEGEND:
. ground   1 2 3 tower levels   D dome   O ocean (off limits)
A a  workers of player 0, B b player 1, C c player 2
`

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatTable(session.Table))
}

func formatTable(table *service.TableState) string {
	if table == nil || table.GameState == nil {
		return "No table state available"
	}
	state := table.GameState

	var sb strings.Builder
	fmt.Fprintf(&sb, "Phase: %s | Player to act: %d\n\n", state.Phase, state.CurrentPlayer)

	clocks := make(map[int]service.PlayerClock, len(table.Clocks))
	for _, clk := range table.Clocks {
		clocks[int(clk.Player)] = clk
	}
	for _, p := range state.Players {
		fmt.Fprintf(&sb, "Player %d %s", p.ID, p.Name)
		if p.God != "" {
			fmt.Fprintf(&sb, " [%s]", p.God)
		}
		fmt.Fprintf(&sb, " tokens=%d", p.HelpfulTokens)
		if clk, ok := clocks[int(p.ID)]; ok {
			fmt.Fprintf(&sb, " clock=%.0fs", clk.RemainingSeconds)
		}
		if p.Eliminated {
			fmt.Fprintf(&sb, " ELIMINATED (%s)", p.EliminationReason)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(formatGrid("Board", state.Board, state.Cols))
	heights := make([]string, len(state.Heights))
	for r, row := range state.Heights {
		var line strings.Builder
		for _, h := range row {
			line.WriteRune(rune('0' + h))
		}
		heights[r] = line.String()
	}
	sb.WriteString(formatGrid("Heights", heights, state.Cols))

	if state.Offer != nil {
		fmt.Fprintf(&sb, "God power offered: %s - %s\nAnswer with god_power.\n\n", state.Offer.God, state.Offer.Description)
	}

	if state.Winner != nil {
		fmt.Fprintf(&sb, "🎉 Player %d wins!\n", *state.Winner)
		return sb.String()
	}
	if state.Fault != "" {
		fmt.Fprintf(&sb, "Game halted: %s\n", state.Fault)
		return sb.String()
	}

	sb.WriteString(formatActions(state.Actions))
	return sb.String()
}

func formatGrid(title string, rows []string, cols int) string {
	var sb strings.Builder
	sb.WriteString(title + ":\n    ")
	for c := 0; c < cols; c++ {
		fmt.Fprintf(&sb, "%d", c%10)
	}
	sb.WriteString("\n")
	for r, row := range rows {
		fmt.Fprintf(&sb, "%2d  %s\n", r, row)
	}
	sb.WriteString("\n")
	return sb.String()
}

func formatActions(actions []engine.ActionView) string {
	var valid, invalid []string
	for _, a := range actions {
		line := a.Prompt
		if a.Target != nil {
			line = fmt.Sprintf("%s (%d,%d): %s", a.Kind, a.Target.Row, a.Target.Col, a.Prompt)
		}
		if a.Win {
			line += " [WINS]"
		}
		if a.Valid {
			valid = append(valid, line)
		} else {
			invalid = append(invalid, fmt.Sprintf("%s - %s", line, a.Reason))
		}
	}

	var sb strings.Builder
	if len(valid) == 0 && len(invalid) == 0 {
		return "No actions on offer.\n"
	}
	sb.WriteString("Legal actions:\n")
	for _, line := range valid {
		sb.WriteString("  " + line + "\n")
	}
	if len(invalid) > 0 {
		sb.WriteString("Not allowed:\n")
		for _, line := range invalid {
			sb.WriteString("  " + line + "\n")
		}
	}
	return sb.String()
}

func formatTurnResult(result *service.TurnResult) string {
	var sb strings.Builder
	if result.Applied {
		sb.WriteString("✓ Applied\n")
	} else {
		fmt.Fprintf(&sb, "✗ Not applied: %s\n", result.Reason)
	}
	for _, ev := range result.Events {
		fmt.Fprintf(&sb, "  [%s] %s\n", ev.Type, ev.Message)
	}
	sb.WriteString("\n")
	sb.WriteString(formatTable(result.Table))
	return sb.String()
}
