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

	"trainvoc-room-service/internal/domain"
)

// Client talks to the room service JSON API. Failures the server reports with a
// known code come back as the matching domain error; everything else wraps
// domain.ErrNetworkFailure.
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		headers: make(map[string]string),
	}
}

func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// ListRooms returns room summaries; status may be empty or one of
// waiting, started, finished, available.
func (c *Client) ListRooms(ctx context.Context, status string) ([]domain.RoomSummary, error) {
	endpoint := "/rooms"
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var out []domain.RoomSummary
	err := c.do(ctx, http.MethodGet, endpoint, nil, &out)
	return out, err
}

func (c *Client) CreateRoom(ctx context.Context, host domain.PlayerInput, cfg domain.QuizConfig) (domain.LobbyData, error) {
	var out domain.LobbyData
	body := map[string]interface{}{"host": host, "config": cfg}
	err := c.do(ctx, http.MethodPost, "/rooms", body, &out)
	return out, err
}

func (c *Client) GetLobby(ctx context.Context, code, playerID string) (domain.LobbyData, error) {
	var out domain.LobbyData
	err := c.do(ctx, http.MethodGet, roomPath(code, "")+viewer(playerID), nil, &out)
	return out, err
}

func (c *Client) UpdateConfig(ctx context.Context, code, playerID string, cfg domain.QuizConfig) (domain.LobbyData, error) {
	var out domain.LobbyData
	body := map[string]interface{}{"playerId": playerID, "config": cfg}
	err := c.do(ctx, http.MethodPut, roomPath(code, "/config"), body, &out)
	return out, err
}

func (c *Client) JoinRoom(ctx context.Context, code string, player domain.PlayerInput) (domain.LobbyData, error) {
	var out domain.LobbyData
	err := c.do(ctx, http.MethodPost, roomPath(code, "/join"), player, &out)
	return out, err
}

func (c *Client) LeaveRoom(ctx context.Context, code, playerID string) error {
	return c.do(ctx, http.MethodPost, roomPath(code, "/leave"), map[string]string{"playerId": playerID}, nil)
}

func (c *Client) StartGame(ctx context.Context, code, playerID string) (domain.GameState, error) {
	var out domain.GameState
	err := c.do(ctx, http.MethodPost, roomPath(code, "/start"), map[string]string{"playerId": playerID}, &out)
	return out, err
}

func (c *Client) GetGame(ctx context.Context, code, playerID string) (domain.GameState, error) {
	var out domain.GameState
	err := c.do(ctx, http.MethodGet, roomPath(code, "/game")+viewer(playerID), nil, &out)
	return out, err
}

func (c *Client) SubmitAnswer(ctx context.Context, sub domain.AnswerSubmission) (domain.AnswerAck, error) {
	var out domain.AnswerAck
	body := map[string]interface{}{
		"playerId":            sub.PlayerID,
		"roomCode":            sub.RoomCode,
		"questionId":          sub.QuestionID,
		"selectedOptionIndex": sub.SelectedOptionIndex,
	}
	err := c.do(ctx, http.MethodPost, "/answers", body, &out)
	return out, err
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", domain.ErrNetworkFailure, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response body: %v", domain.ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(responseBody, &apiErr) == nil {
			if known, ok := domain.ErrorFromCode(apiErr.Error); ok {
				return fmt.Errorf("%w: %s", known, apiErr.Message)
			}
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrNetworkFailure, resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	if out == nil || len(responseBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrNetworkFailure, err)
	}
	return nil
}

func roomPath(code, suffix string) string {
	return "/rooms/" + url.PathEscape(code) + suffix
}

func viewer(playerID string) string {
	if playerID == "" {
		return ""
	}
	return "?playerId=" + url.QueryEscape(playerID)
}
