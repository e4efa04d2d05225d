package language

import (
	"context"
	"log/slog"
	"strings"
)

// Stage is the language detection + translation step of the response
// pipeline. Translation failures degrade to the untranslated text; they never
// abort the request.
type Stage struct {
	detector   Detector
	translator Translator
}

func NewStage(detector Detector, translator Translator) *Stage {
	return &Stage{detector: detector, translator: translator}
}

func (s *Stage) Detect(text string) string {
	return s.detector.Detect(text)
}

// Process returns the detected language and the final text for the caller's
// requested language. When the detected language already matches the target,
// the input text is returned byte-for-byte and no external call is made.
func (s *Stage) Process(ctx context.Context, text, targetLanguage string) (string, string) {
	detected := s.detector.Detect(text)
	if targetLanguage == "" || sameLanguage(detected, targetLanguage) {
		return detected, text
	}

	translated, err := s.translator.Translate(ctx, text, detected, targetLanguage)
	if err != nil || strings.TrimSpace(translated) == "" {
		slog.Warn("translation failed, returning original text",
			"source", detected, "target", targetLanguage, "error", err)
		return detected, text
	}
	return detected, translated
}

// sameLanguage compares codes ignoring case and regional suffixes, so "en"
// matches "en-US".
func sameLanguage(a, b string) bool {
	norm := func(c string) string {
		c = strings.ToLower(c)
		if i := strings.IndexAny(c, "-_"); i > 0 {
			c = c[:i]
		}
		return c
	}
	return norm(a) == norm(b)
}
