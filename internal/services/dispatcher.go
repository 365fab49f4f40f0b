package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bananagen/bananagen/internal/db/models"
	"github.com/bananagen/bananagen/internal/db/repos"
	"github.com/bananagen/bananagen/internal/gommo"
	"github.com/bananagen/bananagen/internal/logger"
)

// Sentinel errors surfaced to the API layer
var (
	// ErrInsufficientCredits is returned by Submit when the user's balance
	// does not cover the generation cost
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrNoActiveAccounts is returned by ListModels when no provider
	// account is available to serve the call
	ErrNoActiveAccounts = errors.New("no active provider accounts")
)

// upstreamErrorMessage is the generic message stored on tasks that the
// provider reported as failed. Provider error details stay in the logs.
const upstreamErrorMessage = "Upstream provider error"

// meteredDispatchCost is the provider-side cost recorded for dispatches on
// pay-as-you-go accounts. Unlimited dispatches incur nothing.
const meteredDispatchCost = 100

// Gateway is the provider adapter the dispatcher calls. Account
// configuration travels with each call.
type Gateway interface {
	CreateImage(ctx context.Context, opts gommo.CallOptions, req gommo.CreateImageRequest) (*gommo.ImageInfo, error)
	CheckImage(ctx context.Context, opts gommo.CallOptions, idBase string) (*gommo.ImageInfo, error)
	ListModels(ctx context.Context, opts gommo.CallOptions) ([]gommo.Model, error)
}

var _ Gateway = (*gommo.Client)(nil)

// SubmitRequest holds the user-supplied parameters for a new generation
type SubmitRequest struct {
	Prompt string
	Model  string
	Width  int
	Height int
}

// Dispatcher orchestrates the task lifecycle: it creates tasks, allocates
// provider capacity, dispatches jobs upstream and reconciles their status.
// All collaborators are injected; there is no package-level instance.
type Dispatcher struct {
	tasks    *repos.TaskRepository
	accounts *repos.AccountRepository
	users    *repos.UserRepository
	gateway  Gateway

	// allocMu serializes the capacity check and the pending -> processing
	// transition, so two concurrent attempts cannot both claim the last
	// free slot on an unlimited account.
	allocMu sync.Mutex
}

// NewDispatcher creates a dispatcher with its injected collaborators
func NewDispatcher(tasks *repos.TaskRepository, accounts *repos.AccountRepository, users *repos.UserRepository, gateway Gateway) *Dispatcher {
	return &Dispatcher{
		tasks:    tasks,
		accounts: accounts,
		users:    users,
		gateway:  gateway,
	}
}

// Submit charges the user, creates one pending task and tries to dispatch
// it once. It never blocks on provider completion: when no capacity is
// available the task is returned still pending and later Reconcile calls
// pick it up.
//
// Credits are deducted up front; a task that later reaches failed is
// refunded during reconciliation.
func (d *Dispatcher) Submit(ctx context.Context, userID uint, req SubmitRequest) (*models.GenerationTask, error) {
	deducted, err := d.users.DeductCredits(ctx, userID, models.DefaultCostToUser)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct credits: %w", err)
	}
	if !deducted {
		return nil, ErrInsufficientCredits
	}

	task := &models.GenerationTask{
		UserID:     userID,
		Prompt:     req.Prompt,
		ModelName:  req.Model,
		Width:      req.Width,
		Height:     req.Height,
		CostToUser: models.DefaultCostToUser,
		Status:     models.TaskStatusPending,
	}
	if err := d.tasks.Create(ctx, task); err != nil {
		if refundErr := d.users.RefundCredits(ctx, userID, models.DefaultCostToUser); refundErr != nil {
			logger.Errorf("Failed to refund user %d after task creation error: %v", userID, refundErr)
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return d.Attempt(ctx, task.ID)
}

// Attempt tries to allocate a provider account for a pending task and
// dispatch it upstream. It is an idempotent re-entry point: a task that is
// no longer pending is returned unchanged, and a gateway failure leaves the
// task pending for a later retry instead of surfacing an error.
func (d *Dispatcher) Attempt(ctx context.Context, taskID uint) (*models.GenerationTask, error) {
	task, err := d.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskStatusPending {
		return task, nil
	}

	d.allocMu.Lock()
	defer d.allocMu.Unlock()

	accounts, err := d.accounts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	processing, err := d.tasks.CountProcessingByAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active tasks: %w", err)
	}

	account := SelectAccount(accounts, processing)
	if account == nil {
		logger.Debugf("No provider capacity for task %s, leaving pending", task.UUID)
		return task, nil
	}

	info, err := d.gateway.CreateImage(ctx, callOptions(account), gommo.CreateImageRequest{
		Model:  task.ModelName,
		Prompt: task.Prompt,
		Width:  task.Width,
		Height: task.Height,
	})
	if err != nil {
		logger.Warnf("Dispatch of task %s on account %q failed: %v", task.UUID, account.Name, err)
		if incErr := d.accounts.IncrementError(ctx, account.ID); incErr != nil {
			logger.Errorf("Failed to record error on account %d: %v", account.ID, incErr)
		}
		return task, nil
	}

	costIncurred := 0
	if account.Type == models.AccountTypePayAsYouGo {
		costIncurred = meteredDispatchCost
	}

	moved, err := d.tasks.MarkProcessing(ctx, task.ID, account.ID, info.IDBase, costIncurred)
	if err != nil {
		return nil, fmt.Errorf("failed to mark task processing: %w", err)
	}
	if moved {
		if incErr := d.accounts.IncrementUsage(ctx, account.ID); incErr != nil {
			logger.Errorf("Failed to record usage on account %d: %v", account.ID, incErr)
		}
		logger.Infof("Task %s dispatched to account %q as %s", task.UUID, account.Name, info.IDBase)
	}

	return d.tasks.GetByID(ctx, task.ID)
}

// Reconcile refreshes one task against the provider. Pending tasks get
// another dispatch attempt, processing tasks get a status check, terminal
// tasks are returned unchanged. Callers invoke it on a polling interval;
// gateway failures leave the task untouched until the next poll.
func (d *Dispatcher) Reconcile(ctx context.Context, taskUUID string) (*models.GenerationTask, error) {
	task, err := d.tasks.GetByUUID(ctx, taskUUID)
	if err != nil {
		return nil, err
	}

	switch task.Status {
	case models.TaskStatusPending:
		return d.Attempt(ctx, task.ID)
	case models.TaskStatusProcessing:
		return d.refresh(ctx, task)
	default:
		return task, nil
	}
}

// refresh asks the provider for the current status of a processing task
// and applies the resulting transition, if any.
func (d *Dispatcher) refresh(ctx context.Context, task *models.GenerationTask) (*models.GenerationTask, error) {
	if task.ProviderAccountID == nil || task.ProviderTaskID == nil {
		logger.Errorf("Processing task %s has no provider assignment", task.UUID)
		return task, nil
	}

	account, err := d.accounts.GetByID(ctx, *task.ProviderAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %d: %w", *task.ProviderAccountID, err)
	}

	info, err := d.gateway.CheckImage(ctx, callOptions(account), *task.ProviderTaskID)
	if err != nil {
		logger.Warnf("Status check for task %s failed: %v", task.UUID, err)
		return task, nil
	}

	switch {
	case info.Status == gommo.StatusSuccess && info.URL != "":
		moved, err := d.tasks.MarkCompleted(ctx, task.ID, info.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to mark task completed: %w", err)
		}
		if moved {
			logger.Infof("Task %s completed", task.UUID)
		}
	case info.Status == gommo.StatusError:
		moved, err := d.tasks.MarkFailed(ctx, task.ID, upstreamErrorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to mark task failed: %w", err)
		}
		if moved {
			logger.Warnf("Task %s failed upstream", task.UUID)
			if refundErr := d.users.RefundCredits(ctx, task.UserID, task.CostToUser); refundErr != nil {
				logger.Errorf("Failed to refund user %d for failed task %s: %v", task.UserID, task.UUID, refundErr)
			}
		}
	default:
		// Still in flight upstream, nothing to record.
		return task, nil
	}

	return d.tasks.GetByID(ctx, task.ID)
}

// ListModels proxies the provider's model catalog through the
// highest-priority active account.
func (d *Dispatcher) ListModels(ctx context.Context) ([]gommo.Model, error) {
	accounts, err := d.accounts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoActiveAccounts
	}
	return d.gateway.ListModels(ctx, callOptions(&accounts[0]))
}

// callOptions maps an account's credential and overrides onto one call
func callOptions(account *models.ProviderAccount) gommo.CallOptions {
	opts := gommo.CallOptions{APIKey: account.APIKey}
	if account.ProxyURL != nil {
		opts.ProxyURL = *account.ProxyURL
	}
	if account.UserAgent != nil {
		opts.UserAgent = *account.UserAgent
	}
	return opts
}
