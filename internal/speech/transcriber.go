package speech

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/carevox/carevox/internal/completion"
)

// Transcription is the normalized speech-to-text result.
type Transcription struct {
	Text     string
	Language string
	Duration float64
}

// Transcriber converts an uploaded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*Transcription, error)
	Name() string
}

// WhisperTranscriber transcribes audio through the OpenAI Whisper API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

func NewWhisperTranscriber(apiKey, model string) *WhisperTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{client: openai.NewClient(apiKey), model: model}
}

func (t *WhisperTranscriber) Name() string { return "openai-whisper" }

func (t *WhisperTranscriber) Transcribe(ctx context.Context, path string) (*Transcription, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, completion.ClassifyOpenAIError(fmt.Errorf("whisper transcription: %w", err))
	}

	return &Transcription{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}, nil
}
