// Package client provides the HTTP client for the bananagen API,
// used by the CLI.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/bananagen/bananagen/internal/api/v1/routes"
	"github.com/bananagen/bananagen/internal/db/models"
	"github.com/bananagen/bananagen/internal/gommo"
	"github.com/bananagen/bananagen/internal/types"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the API
	BaseURL string

	// Timeout is the request timeout
	Timeout time.Duration
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: routes.DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// APIClient talks to the bananagen HTTP API
type APIClient struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (*APIClient, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
	}, nil
}

// Generate submits a generation request and returns the created task
func (c *APIClient) Generate(ctx context.Context, req types.GenerateRequest) (*models.GenerationTask, error) {
	var task models.GenerationTask
	endpoint := routes.APIv1Prefix + "/generate"
	if err := c.executeRequest(ctx, http.MethodPost, endpoint, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches the current state of a task, triggering one
// reconciliation pass server-side
func (c *APIClient) GetTask(ctx context.Context, taskUUID string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	endpoint := fmt.Sprintf("%s/tasks/%s", routes.APIv1Prefix, taskUUID)
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// TaskList is the payload of the task list endpoint
type TaskList struct {
	Tasks      []models.GenerationTask  `json:"tasks"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// ListTasks fetches a user's tasks, newest first
func (c *APIClient) ListTasks(ctx context.Context, userID uint, page int) (*TaskList, error) {
	var list TaskList
	endpoint := fmt.Sprintf("%s/tasks?user_id=%d&page=%d", routes.APIv1Prefix, userID, page)
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListAccounts fetches all provider accounts
func (c *APIClient) ListAccounts(ctx context.Context) ([]models.ProviderAccount, error) {
	var accounts []models.ProviderAccount
	endpoint := routes.APIv1Prefix + "/accounts"
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount creates a new provider account
func (c *APIClient) CreateAccount(ctx context.Context, req types.CreateAccountRequest) (*models.ProviderAccount, error) {
	var account models.ProviderAccount
	endpoint := routes.APIv1Prefix + "/accounts"
	if err := c.executeRequest(ctx, http.MethodPost, endpoint, req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccountStatus activates or deactivates a provider account
func (c *APIClient) UpdateAccountStatus(ctx context.Context, id uint, status string) error {
	endpoint := fmt.Sprintf("%s/accounts/%d/status", routes.APIv1Prefix, id)
	return c.executeRequest(ctx, http.MethodPatch, endpoint, types.UpdateAccountStatusRequest{Status: status}, nil)
}

// ListModels fetches the provider's image model catalog
func (c *APIClient) ListModels(ctx context.Context) ([]gommo.Model, error) {
	var modelsList []gommo.Model
	endpoint := routes.APIv1Prefix + "/models"
	if err := c.executeRequest(ctx, http.MethodGet, endpoint, nil, &modelsList); err != nil {
		return nil, err
	}
	return modelsList, nil
}

// createAgent creates a new fiber Agent for the given method and endpoint
func (c *APIClient) createAgent(ctx context.Context, method, endpoint string, body interface{}) (*fiber.Agent, error) {
	fullURL := c.baseURL + endpoint

	var agent *fiber.Agent
	switch method {
	case http.MethodGet:
		agent = fiber.Get(fullURL)
	case http.MethodPost:
		agent = fiber.Post(fullURL)
	case http.MethodPatch:
		agent = fiber.Patch(fullURL)
	default:
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}

	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	} else {
		agent.Timeout(c.timeout)
	}

	agent.Set("Content-Type", "application/json")
	agent.Set("Accept", "application/json")

	if body != nil {
		agent.JSON(body)
	}

	return agent, nil
}

// executeRequest sends the request and decodes the slug envelope into v
func (c *APIClient) executeRequest(ctx context.Context, method, endpoint string, body, v interface{}) error {
	agent, err := c.createAgent(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	statusCode, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("error sending request: %w", errs[0])
	}

	var envelope struct {
		Slug  types.Slug      `json:"slug"`
		Error string          `json:"error"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	if statusCode < 200 || statusCode >= 300 {
		msg := envelope.Error
		if msg == "" {
			msg = string(respBody)
		}
		return &fiber.Error{Code: statusCode, Message: msg}
	}

	if v == nil || envelope.Data == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		return fmt.Errorf("error decoding response data: %w", err)
	}
	return nil
}
