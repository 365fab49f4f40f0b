// Package handlers provides HTTP request handling
package handlers

// Common error messages
const (
	ErrMsgInvalidReqBody = "Invalid request body"
)

// Task error messages
const (
	ErrMsgTaskIDRequired      = "Task id is required"
	ErrMsgTaskNotFound        = "Task not found"
	ErrMsgTaskListFailed      = "Failed to list tasks"
	ErrMsgTaskSubmitFailed    = "Failed to submit task"
	ErrMsgInsufficientCredits = "Insufficient credits"
	ErrMsgUserNotFound        = "User not found"
)

// Account error messages
const (
	ErrMsgAccountIDRequired   = "Account id is required"
	ErrMsgAccountNotFound     = "Account not found"
	ErrMsgAccountListFailed   = "Failed to list accounts"
	ErrMsgAccountCreateFailed = "Failed to create account"
	ErrMsgAccountStatusFailed = "Failed to update account status"
)

// Model error messages
const (
	ErrMsgNoActiveAccounts = "No active provider accounts"
	ErrMsgModelListFailed  = "Failed to list models"
)
