package types

// GenerateRequest is the body of POST /api/v1/generate
type GenerateRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=4000"`
	Model  string `json:"model,omitempty"`
	Width  int    `json:"width,omitempty" validate:"omitempty,min=64,max=4096"`
	Height int    `json:"height,omitempty" validate:"omitempty,min=64,max=4096"`
	UserID uint   `json:"user_id,omitempty"`
}

// CreateAccountRequest is the body of POST /api/v1/accounts
type CreateAccountRequest struct {
	Name             string  `json:"name" validate:"required"`
	APIKey           string  `json:"api_key" validate:"required"`
	Type             string  `json:"type" validate:"required,oneof=unlimited pay_as_you_go"`
	ProxyURL         *string `json:"proxy_url,omitempty" validate:"omitempty,url"`
	UserAgent        *string `json:"user_agent,omitempty"`
	ConcurrencyLimit int     `json:"concurrency_limit,omitempty" validate:"omitempty,min=1"`
	Priority         int     `json:"priority,omitempty" validate:"omitempty,min=0"`
}

// UpdateAccountStatusRequest is the body of PATCH /api/v1/accounts/:id/status
type UpdateAccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}
