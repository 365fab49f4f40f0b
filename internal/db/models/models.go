// Package models defines the database models for the service.
package models

// Pagination defaults
const (
	// DefaultLimit is the default number of rows returned by list queries
	DefaultLimit = 50
	// MaxLimit is the maximum number of rows returned by list queries
	MaxLimit = 200
)

// ListOptions represents pagination options for list queries
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns list options with the default limit applied
func DefaultListOptions() *ListOptions {
	return &ListOptions{Limit: DefaultLimit}
}
