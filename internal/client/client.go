// Package client is a Go client for the chess rules REST API.
package client

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

	"chess-rules/internal/core"
)

// ComputerMove asks the server to play for the computer side
const ComputerMove = "cccc"

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// HealthResponse mirrors GET /health
type HealthResponse struct {
	Status        string `json:"status"`
	Time          int64  `json:"time"`
	Storage       string `json:"storage"`
	ComputerGames int    `json:"computerGames"`
}

// APIError is a non-2xx reply carrying the server's error body
type APIError struct {
	Status int
	Body   core.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.Details != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, e.Body.Code, e.Body.Error, e.Body.Details)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Body.Code, e.Body.Error)
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// long-poll waits up to 25s server side
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.Body); err != nil {
			apiErr.Body.Error = strings.TrimSpace(string(respBody))
		}
		return resp.StatusCode, apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func gamePath(gameID string, parts ...string) string {
	p := "/api/v1/games/" + url.PathEscape(gameID)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	_, err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(ctx context.Context, req core.CreateGameRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	_, err := c.do(ctx, http.MethodPost, "/api/v1/games", req, &resp)
	return &resp, err
}

func (c *Client) ConfigurePlayers(ctx context.Context, gameID string, req core.ConfigurePlayersRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	_, err := c.do(ctx, http.MethodPut, gamePath(gameID, "players"), req, &resp)
	return &resp, err
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	_, err := c.do(ctx, http.MethodGet, gamePath(gameID), nil, &resp)
	return &resp, err
}

// WaitForChange long-polls until the game no longer has moveCount moves,
// its state changes, or the server-side wait expires
func (c *Client) WaitForChange(ctx context.Context, gameID string, moveCount int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := fmt.Sprintf("%s?wait=true&moveCount=%d", gamePath(gameID), moveCount)
	_, err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	_, err := c.do(ctx, http.MethodDelete, gamePath(gameID), nil, nil)
	return err
}

// MakeMove submits a move in the given notation ("coordinate" or "algebraic",
// empty for coordinate). The bool reports a 202, meaning the computer is thinking.
func (c *Client) MakeMove(ctx context.Context, gameID, move, notation string) (*core.GameResponse, bool, error) {
	var resp core.GameResponse
	status, err := c.do(ctx, http.MethodPost, gamePath(gameID, "moves"),
		core.MoveRequest{Move: move, Notation: notation}, &resp)
	return &resp, status == http.StatusAccepted, err
}

// PlayComputer starts a computer move and waits until it has been applied
func (c *Client) PlayComputer(ctx context.Context, gameID string) (*core.GameResponse, error) {
	resp, pending, err := c.MakeMove(ctx, gameID, ComputerMove, "")
	if err != nil || !pending {
		return resp, err
	}

	moves := len(resp.Moves)
	for resp.State == core.StatePending.String() {
		if resp, err = c.WaitForChange(ctx, gameID, moves); err != nil {
			return resp, err
		}
		if len(resp.Moves) != moves {
			break
		}
	}
	return resp, nil
}

func (c *Client) UndoMoves(ctx context.Context, gameID string, count int) (*core.GameResponse, error) {
	var resp core.GameResponse
	_, err := c.do(ctx, http.MethodPost, gamePath(gameID, "undo"), core.UndoRequest{Count: count}, &resp)
	return &resp, err
}

func (c *Client) GetBoard(ctx context.Context, gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	_, err := c.do(ctx, http.MethodGet, gamePath(gameID, "board"), nil, &resp)
	return &resp, err
}

func (c *Client) Preview(ctx context.Context, gameID, square string) (*core.PreviewResponse, error) {
	var resp core.PreviewResponse
	_, err := c.do(ctx, http.MethodGet, gamePath(gameID, "preview", square), nil, &resp)
	return &resp, err
}

func (c *Client) History(ctx context.Context, gameID string) (*core.HistoryResponse, error) {
	var resp core.HistoryResponse
	_, err := c.do(ctx, http.MethodGet, gamePath(gameID, "history"), nil, &resp)
	return &resp, err
}

func (c *Client) Archived(ctx context.Context, gameID string) (*core.SessionSummary, error) {
	var resp core.SessionSummary
	_, err := c.do(ctx, http.MethodGet, "/api/v1/archive/"+url.PathEscape(gameID), nil, &resp)
	return &resp, err
}
