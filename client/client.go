// Package client is the Go counterpart of the web frontend's apiFetch
// wrapper: a thin REST client that captures the bearer token at signup or
// login and attaches it to every subsequent call.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lagat24/greentrace/models"
)

var (
	// ErrUnauthorized is returned on 401 responses.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrForbidden is returned on 403 responses (e.g. deleting a tree the
	// caller does not own).
	ErrForbidden = errors.New("not allowed")
)

// DuplicateError reports a 409 signup conflict with the offending field.
type DuplicateError struct {
	Field   string
	Message string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %s", e.Field, e.Message)
}

// Config configures the API client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the GreenTrace API. Safe for concurrent use.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

// New creates an API client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &Client{http: cli}
}

// SetToken replaces the stored bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Token returns the stored bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token := c.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// Signup registers a new account and stores the returned token.
func (c *Client) Signup(ctx context.Context, username, email, password string) (models.AuthResponse, error) {
	var out models.AuthResponse
	var apiErr models.ErrorResponse

	resp, err := c.request(ctx).
		SetBody(models.SignupRequest{Username: username, Email: email, Password: password}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/signup")
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("signup request: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return models.AuthResponse{}, err
	}

	c.SetToken(out.Token)
	return out, nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (models.AuthResponse, error) {
	var out models.AuthResponse
	var apiErr models.ErrorResponse

	resp, err := c.request(ctx).
		SetBody(models.LoginRequest{Email: email, Password: password}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/login")
	if err != nil {
		return models.AuthResponse{}, fmt.Errorf("login request: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return models.AuthResponse{}, err
	}

	c.SetToken(out.Token)
	return out, nil
}

// CreateTree submits a tree record.
func (c *Client) CreateTree(ctx context.Context, req models.CreateTreeRequest) error {
	var apiErr models.ErrorResponse

	resp, err := c.request(ctx).
		SetBody(req).
		SetError(&apiErr).
		Post("/trees")
	if err != nil {
		return fmt.Errorf("create tree request: %w", err)
	}
	return checkStatus(resp, apiErr)
}

// MyTrees lists the caller's trees, newest planting first.
func (c *Client) MyTrees(ctx context.Context) ([]models.Tree, error) {
	var out models.TreesResponse
	var apiErr models.ErrorResponse

	resp, err := c.request(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/trees/mine")
	if err != nil {
		return nil, fmt.Errorf("my trees request: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}
	return out.Trees, nil
}

// DeleteTree deletes a tree the caller owns.
func (c *Client) DeleteTree(ctx context.Context, id int) error {
	var apiErr models.ErrorResponse

	resp, err := c.request(ctx).
		SetError(&apiErr).
		Delete(fmt.Sprintf("/trees/%d", id))
	if err != nil {
		return fmt.Errorf("delete tree request: %w", err)
	}
	return checkStatus(resp, apiErr)
}

// Leaderboard fetches the remote ranking.
func (c *Client) Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	var out models.LeaderboardResponse
	var apiErr models.ErrorResponse

	resp, err := c.request(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get("/leaderboard")
	if err != nil {
		return nil, fmt.Errorf("leaderboard request: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}

func checkStatus(resp *resty.Response, apiErr models.ErrorResponse) error {
	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusConflict:
		return &DuplicateError{Field: apiErr.Field, Message: apiErr.Error}
	}

	if apiErr.Error != "" {
		return fmt.Errorf("api error (%d): %s", resp.StatusCode(), apiErr.Error)
	}
	return fmt.Errorf("api error: unexpected status %d", resp.StatusCode())
}
