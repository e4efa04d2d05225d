package completion

import (
	"context"
)

// Message is a single chat turn sent to the completion upstream.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Image is an inline image attached to the user turn of a vision request.
type Image struct {
	Base64    string
	MediaType string // image/png, image/jpeg, ...
}

// Request is the normalized input for one completion call.
type Request struct {
	Provider    string
	Model       string
	Messages    []Message
	Images      []Image
	MaxTokens   int
	Temperature float64
}

// Response is the normalized completion result.
type Response struct {
	Provider     string
	Model        string
	Content      string
	InputTokens  int
	OutputTokens int
}

// Provider abstracts one completion backend. Failures must be returned as
// classified *pipeline.UpstreamError values so the retry executor can decide
// whether to retry.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Name() string
}
