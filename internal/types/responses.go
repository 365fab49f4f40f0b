// Package types defines the request and response shapes of the API.
package types

// Slug is a machine-readable tag classifying an API response
type Slug string

// Response slugs
const (
	SuccessSlug           Slug = "success"
	InvalidInputSlug      Slug = "invalid-input"
	NotFoundSlug          Slug = "not-found"
	PaymentRequiredSlug   Slug = "payment-required"
	ServerErrorSlug       Slug = "server-error"
	ServiceUnavailableSlug Slug = "service-unavailable"
)

// SlugResponse is the envelope wrapping every API response body
type SlugResponse struct {
	Slug  Slug        `json:"slug"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// Success returns a SlugResponse carrying the given data
func Success(data interface{}) SlugResponse {
	return SlugResponse{
		Slug: SuccessSlug,
		Data: data,
	}
}

// ErrInvalidInput returns a SlugResponse for a malformed or invalid request
func ErrInvalidInput(msg string) SlugResponse {
	return SlugResponse{
		Slug:  InvalidInputSlug,
		Error: msg,
	}
}

// ErrNotFound returns a SlugResponse for a missing resource
func ErrNotFound(msg string) SlugResponse {
	return SlugResponse{
		Slug:  NotFoundSlug,
		Error: msg,
	}
}

// ErrPaymentRequired returns a SlugResponse for an insufficient balance
func ErrPaymentRequired(msg string) SlugResponse {
	return SlugResponse{
		Slug:  PaymentRequiredSlug,
		Error: msg,
	}
}

// ErrServer returns a SlugResponse for an internal failure
func ErrServer(msg string) SlugResponse {
	return SlugResponse{
		Slug:  ServerErrorSlug,
		Error: msg,
	}
}

// ErrServiceUnavailable returns a SlugResponse when no upstream capacity
// can serve the request
func ErrServiceUnavailable(msg string) SlugResponse {
	return SlugResponse{
		Slug:  ServiceUnavailableSlug,
		Error: msg,
	}
}

// PaginationResponse describes the page of a list response
type PaginationResponse struct {
	Total  int `json:"total"`
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
