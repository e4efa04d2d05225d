package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// LanguageStage detects the language of a completion result and translates it
// to the caller's requested language. It never fails the pipeline.
type LanguageStage interface {
	Process(ctx context.Context, text, targetLanguage string) (detected, final string)
}

// SpeechStage synthesizes audio for the final text. A nil result means
// synthesis failed or was skipped; either way the pipeline proceeds.
type SpeechStage interface {
	Synthesize(ctx context.Context, text, language string) (audio []byte, format string)
}

// Request states, for per-request structured logging.
const (
	StateInvoking       = "invoking"
	StatePostProcessing = "post_processing"
	StateResponding     = "responding"
	StateFailed         = "failed"
)

// Runner is the shared orchestration pipeline behind every feature endpoint:
// retry-wrapped upstream invocation, then language detection/translation,
// then speech synthesis.
type Runner struct {
	language LanguageStage
	speech   SpeechStage
	policy   RetryPolicy
}

func NewRunner(lang LanguageStage, speech SpeechStage, policy RetryPolicy) *Runner {
	return &Runner{language: lang, speech: speech, policy: policy}
}

// RunInput describes one pipeline invocation. Invoke performs a single
// upstream call and is retried under the runner's policy; each attempt is
// bounded by Timeout.
type RunInput struct {
	Invoke         func(ctx context.Context) (string, error)
	TargetLanguage string
	Timeout        time.Duration
	SkipSynthesis  bool
}

// Result is the normalized pipeline outcome.
type Result struct {
	Text             string
	DetectedLanguage string
	TranslatedText   string // empty when detection matched the target language
	Audio            []byte
	AudioFormat      string
}

// FinalText is the translated text when translation happened, the raw
// upstream text otherwise.
func (r *Result) FinalText() string {
	if r.TranslatedText != "" {
		return r.TranslatedText
	}
	return r.Text
}

func (p *Runner) Run(ctx context.Context, in RunInput) (*Result, error) {
	slog.Debug("pipeline state", "state", StateInvoking)

	var text string
	err := Retry(ctx, p.policy, func(ctx context.Context) error {
		callCtx := ctx
		if in.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, in.Timeout)
			defer cancel()
		}
		var callErr error
		text, callErr = in.Invoke(callCtx)
		return callErr
	})
	if err != nil {
		slog.Debug("pipeline state", "state", StateFailed)
		return nil, Classify(err)
	}

	slog.Debug("pipeline state", "state", StatePostProcessing)

	res := &Result{Text: text}
	detected, final := p.language.Process(ctx, text, in.TargetLanguage)
	res.DetectedLanguage = detected
	if final != text {
		res.TranslatedText = final
	}

	if !in.SkipSynthesis {
		res.Audio, res.AudioFormat = p.speech.Synthesize(ctx, res.FinalText(), in.TargetLanguage)
	}

	slog.Debug("pipeline state", "state", StateResponding)
	return res, nil
}
