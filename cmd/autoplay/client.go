package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/game2048/game/service"
)

// Client plays one session at a time through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

// CreateSession starts a new game and makes it the current session
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// Resume makes id the current session and returns its details
func (c *Client) Resume(ctx context.Context, id string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, &info); err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// Move plays one direction on the current session
func (c *Client) Move(ctx context.Context, dir string) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("move"), map[string]string{"direction": dir}, &result); err != nil {
		return nil, fmt.Errorf("move %s: %w", dir, err)
	}
	return &result, nil
}

// Continue answers the decision after reaching 2048
func (c *Client) Continue(ctx context.Context, keepPlaying bool) (*service.DecisionResult, error) {
	var result service.DecisionResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("continue"), map[string]bool{"continue": keepPlaying}, &result); err != nil {
		return nil, fmt.Errorf("continue: %w", err)
	}
	return &result, nil
}

// Finish ends the current game and records its score
func (c *Client) Finish(ctx context.Context) (*service.FinishResult, error) {
	var result service.FinishResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("finish"), nil, &result); err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	return &result, nil
}

// Reset restarts the board of the current session
func (c *Client) Reset(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, c.sessionPath("reset"), nil, nil); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

func (c *Client) sessionPath(action string) string {
	return fmt.Sprintf("/api/sessions/%s/%s", url.PathEscape(c.sessionID), action)
}

// do sends a JSON request and decodes a JSON response. Non-2xx answers
// become errors carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
