package dto

// CreateAPIKeyRequest represents the request to mint a new API key
type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}
