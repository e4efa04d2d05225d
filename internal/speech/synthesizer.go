package speech

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// Synthesizer turns text into encoded audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
	Format() string
	Name() string
}

// OpenAISynthesizer produces MP3 audio via the OpenAI speech API.
type OpenAISynthesizer struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAISynthesizer(apiKey, model, voice string) *OpenAISynthesizer {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAISynthesizer{client: openai.NewClient(apiKey), model: model, voice: voice}
}

func (s *OpenAISynthesizer) Name() string   { return "openai-tts" }
func (s *OpenAISynthesizer) Format() string { return "mp3" }

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(s.model),
		Input: text,
		Voice: openai.SpeechVoice(s.voice),
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	return audio, nil
}
