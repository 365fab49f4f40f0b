// Package gommo provides the client for the Gommo image-generation API.
package gommo

import "fmt"

// Status is the canonical job status reported by the provider, after
// normalization of the provider's raw status strings.
type Status string

// Canonical status constants
const (
	// StatusPending indicates the job is queued upstream
	StatusPending Status = "PENDING"
	// StatusProcessing indicates the job is being generated upstream
	StatusProcessing Status = "PROCESSING"
	// StatusSuccess indicates the job finished and a result URL is available
	StatusSuccess Status = "SUCCESS"
	// StatusError indicates the provider reported a terminal error
	StatusError Status = "ERROR"
)

// Raw status strings used by the provider
const (
	rawStatusPendingActive     = "PENDING_ACTIVE"
	rawStatusPendingProcessing = "PENDING_PROCESSING"
	rawStatusSuccess           = "SUCCESS"
	rawStatusError             = "ERROR"
)

// normalizeStatus maps the provider's raw status onto the canonical set
func normalizeStatus(raw string) (Status, error) {
	switch raw {
	case rawStatusPendingActive:
		return StatusPending, nil
	case rawStatusPendingProcessing:
		return StatusProcessing, nil
	case rawStatusSuccess:
		return StatusSuccess, nil
	case rawStatusError:
		return StatusError, nil
	default:
		return "", fmt.Errorf("unknown provider status: %q", raw)
	}
}

// CreateImageRequest holds the parameters for a new generation job
type CreateImageRequest struct {
	Model          string
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Ratio          string
}

// ImageInfo is the canonical description of an upstream generation job
type ImageInfo struct {
	// IDBase is the provider's correlation ID for the job
	IDBase string
	Status Status
	// URL is the result location, set once Status is StatusSuccess
	URL    string
	Prompt string
}

// Model describes one generation model offered by the provider
type Model struct {
	IDBase string  `json:"id_base"`
	Name   string  `json:"name"`
	Server string  `json:"server"`
	Model  string  `json:"model"`
	Price  float64 `json:"price"`
	Type   string  `json:"type,omitempty"`
}

// CallOptions carries the per-call account configuration. Every call is
// made on behalf of one provider account; the client itself keeps no
// account state.
type CallOptions struct {
	// APIKey is the account's access token
	APIKey string
	// ProxyURL, when set, routes the call through the account's egress proxy
	ProxyURL string
	// UserAgent, when set, overrides the default browser user agent
	UserAgent string
}
