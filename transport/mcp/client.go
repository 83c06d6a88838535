package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/service"
	"github.com/wricardo/mcp-training/game2048/game/session"
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
		"2048",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`2048 - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the tiles to merge equal values and build a 2048 tile. You may keep
playing after 2048 for a higher score.

AVAILABLE TOOLS:
- create_session: Start a new game (optionally pick a grid size config)
- list_sessions: List active games
- board: Show the current board
- move: Slide tiles up/down/left/right
- continue_game: Answer the continue prompt after reaching 2048
- reset_game: Start over in the same session
- finish_game: End the game and record the score
- move_history: View past moves
- save_game / load_game / list_saves: Named checkpoints
- high_score: Best recorded final score
- list_configs: Available grid sizes
- game_instructions: Full rules
- describe_tile: Value of a single cell

NOTE: The 'intent' parameter on move serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, e.g. classic, large or tiny (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show the current board, score and status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right", "w", "a", "s", "d"},
					"description": "Direction to slide",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "continue_game",
		Description: "After reaching 2048, choose whether to keep playing",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"continue": map[string]interface{}{
					"type":        "boolean",
					"description": "true to keep playing, false to end the game",
				},
			},
			Required: []string{"session_id", "continue"},
		},
	}, c.handleContinue)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Start a fresh board in the same session (the current score is not recorded)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "finish_game",
		Description: "End the game now and record the final score",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleFinish)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Persistence
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_game",
		Description: "Save the board under a name; saving again with the same name overwrites it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Save name",
				},
			},
			Required: []string{"session_id", "name"},
		},
	}, c.handleSave)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "load_game",
		Description: "Restore a saved game into a new session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Save name",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleLoad)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_saves",
		Description: "List saved game names",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSaves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_score",
		Description: "Best final score recorded so far",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleHighScore)

	// Configuration and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available grid sizes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get the value of a single cell and whether it can merge with its neighbours",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, top to bottom)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, left to right)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeTile)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg accepts JSON numbers and numeric strings
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if configID := stringArg(args, "config_id"); configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", info.ID, info.ConfigName, formatBoard(info.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, Status: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.Score, s.Status, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	// intent is for the caller's own reasoning and is not sent
	body := map[string]string{"direction": stringArg(args, "direction")}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleContinue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	keepPlaying, ok := args["continue"].(bool)
	if !ok {
		return mcp.NewToolResultError("continue must be true or false"), nil
	}

	var result service.DecisionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/continue"), map[string]bool{"continue": keepPlaying}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(result.Message + "\n")
	if result.GameOver {
		fmt.Fprintf(&b, "Final score: %d (high score: %d)\n", result.FinalScore, result.HighScore)
	}
	b.WriteString("\n" + formatBoard(result.GameState))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var response struct {
		Message string        `json:"message"`
		State   *engine.State `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatBoard(response.State))), nil
}

func (c *Client) handleFinish(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var result service.FinishResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/finish"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Game over. Final score: %d\nHigh score: %d\n", result.FinalScore, result.HighScore)
	if result.NewHighScore {
		text += "New high score!\n"
	}
	return mcp.NewToolResultText(text + "\n" + formatBoard(result.GameState)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", strconv.Itoa(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", strconv.Itoa(limit))
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	var result service.SaveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/save"), map[string]string{"name": stringArg(args, "name")}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved %q (score %d, %dx%d)", result.Name, result.Score, result.Size, result.Size)), nil
}

func (c *Client) handleLoad(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringArg(arguments(request), "name")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/saves/"+url.PathEscape(name)+"/load", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Loaded %q into session %s\n\n%s", name, info.ID, formatBoard(info.GameState))), nil
}

func (c *Client) handleListSaves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int      `json:"count"`
		Saves []string `json:"saves"`
	}
	if err := c.apiCall(ctx, "GET", "/api/saves", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Count == 0 {
		return mcp.NewToolResultText("No saved games"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved games (%d):\n- %s", response.Count, strings.Join(response.Saves, "\n- "))), nil
}

func (c *Client) handleHighScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		HighScore int `json:"high_score"`
	}
	if err := c.apiCall(ctx, "GET", "/api/scores/high", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("High score: %d", response.HighScore)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d\n\n",
			config.Name, config.ConfigID, config.Description, config.GridSize, config.GridSize)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎮 2048 - Complete Instructions

GAME OBJECTIVE:
Merge tiles to create a tile with the value 2048. Every merge adds the new
tile's value to your score.

GAME MECHANICS:
• Moves: up, down, left, right (or w, a, s, d) slide every tile as far as it goes
• Merges: two equal tiles that collide become one tile of double value
• Each tile merges at most once per move; the pair nearest the wall merges first
  (row [2,2,2,0] moved left becomes [4,2,0,0])
• Spawn: after any move that changes the board, a new tile appears on a random
  empty cell: 2 with 90% probability, 4 with 10%
• Wasted move: a move that changes nothing does not spawn a tile

REACHING 2048:
• The game pauses and asks whether to continue
• continue_game with continue=true keeps playing for a higher score
• continue_game with continue=false ends the game

GAME OVER:
• The board is full and no two neighbouring tiles are equal
• finish_game ends the game early
• The final score is appended to the score ledger exactly once

STRATEGY TIPS:
• Keep your largest tile in a corner and build a descending chain along one edge
• Prefer two directions (for example left and down) and avoid the opposite of your anchor edge
• Avoid moves that leave single small tiles trapped between large ones
• Check describe_tile when unsure whether two cells can merge

SAVING:
• save_game stores the board and score under a name
• load_game restores it as a new session; the original session is unaffected
• reset_game starts over without recording the current score

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- Grid sizes come from configs (list_configs), classic is 4x4

Good luck reaching 2048! 🧩`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")

	row, rowOK := intArg(args, "row")
	col, colOK := intArg(args, "col")
	if !rowOK || !colOK {
		return mcp.NewToolResultError("row and col are required integers"), nil
	}

	var state engine.State
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/board"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if row < 0 || row >= state.Size || col < 0 || col >= state.Size {
		return mcp.NewToolResultError(fmt.Sprintf("Cell (%d, %d) is out of bounds. Grid size is %dx%d (0-%d for both row and col)",
			row, col, state.Size, state.Size, state.Size-1)), nil
	}

	return mcp.NewToolResultText(describeTile(&state, row, col)), nil
}

func describeTile(state *engine.State, row, col int) string {
	value := state.Grid[row][col]

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d, %d)\n", row, col)
	if value == 0 {
		b.WriteString("Value: empty\n")
	} else {
		fmt.Fprintf(&b, "Value: %d\n", value)
	}

	neighbours := []struct {
		name     string
		row, col int
	}{
		{"up", row - 1, col},
		{"down", row + 1, col},
		{"left", row, col - 1},
		{"right", row, col + 1},
	}

	b.WriteString("Neighbours:\n")
	for _, n := range neighbours {
		if n.row < 0 || n.row >= state.Size || n.col < 0 || n.col >= state.Size {
			fmt.Fprintf(&b, "  %-5s edge\n", n.name)
			continue
		}
		other := state.Grid[n.row][n.col]
		note := ""
		if value != 0 && other == value {
			note = " (can merge)"
		}
		fmt.Fprintf(&b, "  %-5s %s%s\n", n.name, cellLabel(other), note)
	}
	return b.String()
}

// Formatting helpers

func cellLabel(value int) string {
	if value == 0 {
		return "."
	}
	return strconv.Itoa(value)
}

func formatBoard(state *engine.State) string {
	if state == nil {
		return ""
	}

	width := len(strconv.Itoa(state.MaxTile))
	if width < 4 {
		width = 4
	}

	var b strings.Builder
	for _, row := range state.Grid {
		for j, value := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%*s", width, cellLabel(value))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Score: %d | Max tile: %d | Empty cells: %d\n", state.Score, state.MaxTile, state.EmptyCells)
	return b.String()
}

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nStatus: %s\nMoves: %d\n\n", info.ID, info.ConfigName, info.Status, info.Moves)
	b.WriteString(formatBoard(info.GameState))
	if info.Status == session.StatusAwaitingDecision {
		b.WriteString("\nYou reached 2048! Call continue_game to keep playing or stop.\n")
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	if result.Outcome.Changed {
		fmt.Fprintf(&b, "✓ Moved %s", result.Outcome.Direction)
		if result.Outcome.Merges > 0 {
			fmt.Fprintf(&b, " (+%d from %d merge(s))", result.Outcome.ScoreGained, result.Outcome.Merges)
		}
		if spawned := result.Outcome.Spawned; spawned != nil {
			fmt.Fprintf(&b, ", new %d at (%d, %d)", spawned.Value, spawned.Row, spawned.Col)
		}
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "✗ %s\n", result.Message)
	}

	switch result.Status {
	case session.StatusAwaitingDecision:
		b.WriteString("🎉 You reached 2048! Call continue_game to keep playing or stop.\n")
	case session.StatusOver:
		fmt.Fprintf(&b, "💀 %s (high score: %d)\n", result.Message, result.HighScore)
	}

	b.WriteString("\n" + formatBoard(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d moves)\n\n", history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		marker := " "
		if !move.Changed {
			marker = "-"
		}
		fmt.Fprintf(&b, "%s #%d %-5s +%d score=%d", marker, move.Turn, move.Direction, move.ScoreGained, move.ScoreAfter)
		if move.Spawned != nil {
			fmt.Fprintf(&b, " spawn=%d@(%d,%d)", move.Spawned.Value, move.Spawned.Row, move.Spawned.Col)
		}
		b.WriteString("\n")
	}

	if history.HasNext {
		b.WriteString("\n(more moves on the next page)\n")
	}
	return b.String()
}
