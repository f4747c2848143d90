package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mkume/task-tracker/internal/dto"
	apierrors "github.com/mkume/task-tracker/internal/errors"
	"github.com/mkume/task-tracker/internal/models"
)

// Client is an HTTP client for the task tracker API. It carries the bearer
// token for authenticated calls; one request runs per user action.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a Client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken sets the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, if any.
func (c *Client) Token() string {
	return c.token
}

// Credentials carries a username/password pair for register and login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TaskPatch holds the optional fields of a task update. Nil fields are
// omitted from the request and left unchanged by the server.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// Register creates a new account and returns the profile plus a token.
func (c *Client) Register(ctx context.Context, creds Credentials) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/register", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and returns the profile plus a token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*dto.AuthResponse, error) {
	var resp dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/users/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile fetches the authenticated user's public profile.
func (c *Client) Profile(ctx context.Context) (*dto.UserDTO, error) {
	var resp dto.UserDTO
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile changes the username and/or password.
func (c *Client) UpdateProfile(ctx context.Context, username, password *string) (*dto.UserDTO, error) {
	body := map[string]*string{}
	if username != nil {
		body["username"] = username
	}
	if password != nil {
		body["password"] = password
	}

	var resp dto.UserDTO
	if err := c.do(ctx, http.MethodPut, "/api/users/profile", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTasks fetches tasks with optional status filter and sort token.
// status "all" or "" fetches every task in scope.
func (c *Client) ListTasks(ctx context.Context, status, sortBy string) ([]models.Task, error) {
	params := url.Values{}
	if status != "" && status != "all" {
		params.Set("status", status)
	}
	if sortBy != "" {
		params.Set("sortBy", sortBy)
	}

	path := "/api/tasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task. dueDate may be empty for no deadline.
func (c *Client) CreateTask(ctx context.Context, title, description, dueDate string) (*models.Task, error) {
	body := map[string]string{
		"title":       title,
		"description": description,
	}
	if dueDate != "" {
		body["dueDate"] = dueDate
	}

	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask merges the patch over the task with the given id.
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id, patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var apiErr apierrors.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
		return &apiErr
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
