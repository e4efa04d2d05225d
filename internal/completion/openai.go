package completion

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	openai "github.com/sashabaranov/go-openai"

	"github.com/carevox/carevox/internal/pipeline"
)

type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for i, m := range req.Messages {
		// Images ride on the final user turn as multi-part content.
		if len(req.Images) > 0 && i == len(req.Messages)-1 && m.Role == "user" {
			parts := []openai.ChatMessagePart{{
				Type: openai.ChatMessagePartTypeText,
				Text: m.Content,
			}}
			for _, img := range req.Images {
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Base64),
					},
				})
			}
			msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, MultiContent: parts})
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	oReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: msgs,
	}
	if req.Temperature > 0 {
		oReq.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		oReq.MaxTokens = req.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, oReq)
	if err != nil {
		return nil, ClassifyOpenAIError(fmt.Errorf("openai completion: %w", err))
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &Response{
		Provider:     "openai",
		Model:        resp.Model,
		Content:      content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// ClassifyOpenAIError maps go-openai SDK errors to classified upstream errors
// carrying the HTTP status code and any retry-after hint in the message.
func ClassifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		ue := pipeline.NewUpstreamError(apiErr.HTTPStatusCode, err)
		ue.RetryAfter = parseRetryAfterHint(apiErr.Message)
		return ue
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return pipeline.NewUpstreamError(reqErr.HTTPStatusCode, err)
	}
	return err
}

var retryAfterHint = regexp.MustCompile(`(?i)(?:try again|retry) (?:in|after) ([0-9]+(?:\.[0-9]+)?)\s*s`)

// parseRetryAfterHint extracts a wait duration in seconds from rate-limit
// error messages like "Please try again in 7.66s".
func parseRetryAfterHint(msg string) int {
	m := retryAfterHint.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	if secs > 0 && secs < 1 {
		return 1
	}
	return int(secs)
}
